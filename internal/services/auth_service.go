package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("invalid role")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration, login and the credential workflows.
type AuthService struct {
	userRepo repository.UserRepository
	otp      *OTPService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, otp *OTPService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otp:      otp,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// Register creates an unverified user and issues a verification code.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		Availability: true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.otp.Issue(user, mailer.PurposeVerification); err != nil {
		return nil, fmt.Errorf("failed to issue verification code: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the authenticated user. An
// unverified account is rejected after the password check so the error
// does not leak whether the password was right for someone else's email.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *AuthService) VerifyEmail(email, code string) (*models.User, error) {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.otp.Verify(user, mailer.PurposeVerification, code); err != nil {
		return nil, err
	}

	return user, nil
}

// ResendVerification issues a fresh verification code unless one is
// still active.
func (s *AuthService) ResendVerification(email string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if s.otp.HasValidOTP(user, mailer.PurposeVerification) {
		return ErrOTPAlreadyActive
	}

	return s.otp.Issue(user, mailer.PurposeVerification)
}

// ForgotPassword issues a password-reset code unless one is still active.
func (s *AuthService) ForgotPassword(email string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}
	if s.otp.HasValidOTP(user, mailer.PurposeReset) {
		return ErrOTPAlreadyActive
	}

	return s.otp.Issue(user, mailer.PurposeReset)
}

// VerifyResetOTP checks a reset code without consuming it, so the
// follow-up reset-password call can still use it.
func (s *AuthService) VerifyResetOTP(email, code string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}
	return s.otp.Check(user, mailer.PurposeReset, code)
}

// ResetPassword consumes a reset code and sets the new password.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}

	if err := s.otp.Verify(user, mailer.PurposeReset, code); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ChangePassword verifies the current password and sets the new one.
func (s *AuthService) ChangePassword(userID uint64, current, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *AuthService) findByEmail(email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
