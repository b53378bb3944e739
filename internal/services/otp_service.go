package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

var (
	ErrNoOTP            = errors.New("no active code for this account")
	ErrOTPExpired       = errors.New("code has expired")
	ErrOTPMismatch      = errors.New("incorrect code")
	ErrOTPAlreadyActive = errors.New("a code was already sent and is still valid")
)

// OTPService issues and checks one-time codes stored on the user record.
// There is one independent code slot per purpose.
type OTPService struct {
	userRepo   repository.UserRepository
	mailer     mailer.Mailer
	production bool
}

// NewOTPService creates a new OTPService.
func NewOTPService(userRepo repository.UserRepository, m mailer.Mailer, production bool) *OTPService {
	return &OTPService{
		userRepo:   userRepo,
		mailer:     m,
		production: production,
	}
}

// Issue generates a fresh 6-digit code with a 10 minute expiry, persists
// it on the user under the purpose's slot, and attempts delivery. A
// delivery failure is logged but does not fail issuance.
func (s *OTPService) Issue(user *models.User, purpose mailer.Purpose) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	expiresAt := time.Now().Add(constants.OTPTTL)
	switch purpose {
	case mailer.PurposeReset:
		user.ResetOTPCode = &code
		user.ResetOTPExpiresAt = &expiresAt
	default:
		user.OTPCode = &code
		user.OTPExpiresAt = &expiresAt
	}

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mailer.SendOTP(user.Email, code, purpose); err != nil {
		logger.Log.Error("OTP email delivery failed",
			zap.String("email", user.Email),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		if !s.production {
			logger.Log.Info("development OTP fallback",
				zap.String("email", user.Email),
				zap.String("code", code),
			)
		}
	}

	return nil
}

// HasValidOTP reports whether an unexpired code exists for the purpose.
func (s *OTPService) HasValidOTP(user *models.User, purpose mailer.Purpose) bool {
	code, expiresAt := slot(user, purpose)
	return code != nil && expiresAt != nil && expiresAt.After(time.Now())
}

// Check validates a code against the stored slot without consuming it.
func (s *OTPService) Check(user *models.User, purpose mailer.Purpose, code string) error {
	stored, expiresAt := slot(user, purpose)
	if stored == nil || expiresAt == nil {
		return ErrNoOTP
	}
	if expiresAt.Before(time.Now()) {
		return ErrOTPExpired
	}
	if *stored != code {
		return ErrOTPMismatch
	}
	return nil
}

// Verify validates and consumes a code. A verification match flips
// IsVerified; a reset match only clears the slot, the caller sets the
// new password separately.
func (s *OTPService) Verify(user *models.User, purpose mailer.Purpose, code string) error {
	if err := s.Check(user, purpose, code); err != nil {
		return err
	}

	switch purpose {
	case mailer.PurposeReset:
		user.ResetOTPCode = nil
		user.ResetOTPExpiresAt = nil
	default:
		user.IsVerified = true
		user.OTPCode = nil
		user.OTPExpiresAt = nil
	}

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to clear code: %w", err)
	}

	return nil
}

func slot(user *models.User, purpose mailer.Purpose) (*string, *time.Time) {
	if purpose == mailer.PurposeReset {
		return user.ResetOTPCode, user.ResetOTPExpiresAt
	}
	return user.OTPCode, user.OTPExpiresAt
}

// generateCode draws a uniform 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
