package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/ratelimit"
)

// RateLimit enforces a fixed-window limit per client IP. When the
// limiter backend is unreachable the request is let through: the OTP
// endpoints must keep working if redis is down.
func RateLimit(limiter *ratelimit.Limiter, rule ratelimit.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), rule, c.ClientIP())
		if err != nil {
			logger.Log.Warn("rate limiter unavailable, failing open",
				zap.String("rule", rule.Name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			apierrors.TooManyRequests(c, "", "Too many requests. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}
