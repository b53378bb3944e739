package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/models"
)

func TestAuthService_RegisterCreatesUnverifiedUser(t *testing.T) {
	db := openTestDB(t)
	svc, m := newTestAuthService(t, db)

	user, err := svc.Register(RegisterInput{
		Email:     "Alice@X.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)

	require.Equal(t, "alice@x.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.IsVerified)
	require.Len(t, m.sent, 1)
}

func TestAuthService_RegisterRejectsShortPassword(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	_, err := svc.Register(RegisterInput{Email: "a@x.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_RegisterRejectsUnknownRole(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	_, err := svc.Register(RegisterInput{
		Email:    "a@x.com",
		Password: "password123",
		Role:     models.Role("superuser"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_RegisterRejectsDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	_, err := svc.Register(RegisterInput{Email: "a@x.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "A@x.com", Password: "password123"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_LoginFlow(t *testing.T) {
	db := openTestDB(t)
	svc, m := newTestAuthService(t, db)

	_, err := svc.Register(RegisterInput{
		Email:     "alice@x.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)

	// login before verifying is rejected
	_, err = svc.Login("alice@x.com", "password123")
	require.ErrorIs(t, err, ErrEmailNotVerified)

	// wrong password never reveals verification state
	_, err = svc.Login("alice@x.com", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := svc.VerifyEmail("alice@x.com", m.lastCode(t))
	require.NoError(t, err)
	require.True(t, user.IsVerified)

	logged, err := svc.Login("alice@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)

	// email matching is case-insensitive end to end
	logged, err = svc.Login("  ALICE@X.COM ", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	_, err := svc.Login("nobody@x.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ResendVerificationGuards(t *testing.T) {
	db := openTestDB(t)
	svc, m := newTestAuthService(t, db)

	_, err := svc.Register(RegisterInput{Email: "bob@x.com", Password: "password123"})
	require.NoError(t, err)

	// the registration code is still active
	require.ErrorIs(t, svc.ResendVerification("bob@x.com"), ErrOTPAlreadyActive)

	// expire it and a resend goes through
	var user models.User
	require.NoError(t, db.Where("email = ?", "bob@x.com").First(&user).Error)
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&user).Update("otp_expires_at", expired).Error)

	require.NoError(t, svc.ResendVerification("bob@x.com"))
	require.Len(t, m.sent, 2)

	// once verified, resending makes no sense
	require.NoError(t, db.Model(&user).Update("is_verified", true).Error)
	require.ErrorIs(t, svc.ResendVerification("bob@x.com"), ErrAlreadyVerified)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	db := openTestDB(t)
	svc, m := newTestAuthService(t, db)

	createTestUser(t, db, "carol@x.com", models.RoleUser)

	require.NoError(t, svc.ForgotPassword("carol@x.com"))
	code := m.lastCode(t)

	// a second request while the code is active is refused
	require.ErrorIs(t, svc.ForgotPassword("carol@x.com"), ErrOTPAlreadyActive)

	// the pre-check does not consume the code
	require.NoError(t, svc.VerifyResetOTP("carol@x.com", code))
	require.NoError(t, svc.VerifyResetOTP("carol@x.com", code))

	require.NoError(t, svc.ResetPassword("carol@x.com", code, "newpassword1"))

	_, err := svc.Login("carol@x.com", "newpassword1")
	require.NoError(t, err)

	// the consumed code cannot reset again
	require.ErrorIs(t, svc.ResetPassword("carol@x.com", code, "anotherpass1"), ErrNoOTP)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	require.ErrorIs(t, svc.ForgotPassword("nobody@x.com"), ErrUserNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestAuthService(t, db)

	user := createTestUser(t, db, "dave@x.com", models.RoleUser)

	require.ErrorIs(t, svc.ChangePassword(user.ID, "wrongcurrent", "newpassword1"), ErrWrongPassword)
	require.ErrorIs(t, svc.ChangePassword(user.ID, "password123", "short"), ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(user.ID, "password123", "newpassword1"))

	_, err := svc.Login("dave@x.com", "newpassword1")
	require.NoError(t, err)
}
