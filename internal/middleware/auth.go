package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/constants"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
)

// RequireAuth verifies the bearer token and stores the caller identity
// in the context for downstream handlers.
func RequireAuth(tokenSvc *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthenticated(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			apierrors.Unauthenticated(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		identity, err := tokenSvc.Verify(tokenParts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apierrors.TokenExpired(c)
			} else {
				apierrors.Unauthenticated(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the authenticated identity from the context.
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*auth.Identity)
	if !ok {
		return nil, false
	}
	return identity, true
}
