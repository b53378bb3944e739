package constants

import "time"

const (
	// ContextKeyIdentity is the gin context key holding the
	// authenticated identity set by middleware.RequireAuth.
	ContextKeyIdentity = "identity"

	MinPasswordLength = 8

	// OTP codes are 6-digit numeric and live for 10 minutes.
	OTPLength = 6
	OTPTTL    = 10 * time.Minute

	// Access tokens and the browser cookies mirror each other's lifetime.
	TokenTTL          = 24 * time.Hour
	CookieMaxAge      = int(TokenTTL / time.Second)
	AccessTokenCookie = "access_token"
	UserRoleCookie    = "user_role"

	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100
)
