package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/logger"
)

// Purpose selects the template of an OTP email.
type Purpose string

const (
	PurposeVerification Purpose = "verification"
	PurposeReset        Purpose = "reset"
)

// Mailer delivers OTP emails. Delivery failure must never fail the
// surrounding OTP issuance; callers log and move on.
type Mailer interface {
	SendOTP(to, code string, purpose Purpose) error
}

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// BrevoMailer sends transactional email through the Brevo HTTP API.
type BrevoMailer struct {
	apiKey      string
	senderName  string
	senderEmail string
	client      *http.Client
}

func NewBrevoMailer(apiKey, senderName, senderEmail string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		client:      http.DefaultClient,
	}
}

func (m *BrevoMailer) SendOTP(to, code string, purpose Purpose) error {
	subject := "Verify Your Email - TaskFlow"
	action := "verify your email address"
	if purpose == PurposeReset {
		subject = "Reset Your Password - TaskFlow"
		action = "reset your password"
	}

	html := fmt.Sprintf(
		`<p>Hello,</p>`+
			`<p>Use the following OTP code to %s:</p>`+
			`<h2 style="letter-spacing:8px">%s</h2>`+
			`<p>This code will expire in 10 minutes.</p>`+
			`<p>If you didn't request this, please ignore this email.</p>`,
		action, code,
	)

	body := brevoRequest{
		Sender:      brevoAddress{Name: m.senderName, Email: m.senderEmail},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, brevoEndpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}

// LogMailer is the no-API-key fallback: it only logs that a send would
// have happened. Used in development and tests.
type LogMailer struct{}

func (LogMailer) SendOTP(to, code string, purpose Purpose) error {
	logger.Log.Info("email delivery skipped, no mailer configured",
		zap.String("to", to),
		zap.String("purpose", string(purpose)),
	)
	return nil
}
