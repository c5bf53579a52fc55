package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
)

// RateLimit limits requests per client IP using the provided limiter.
// Rejections use the same error payload shape as the rest of the API.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		limitCtx, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Rate limit lookup failed",
				slog.String("client_ip", ip), slog.String("error", err.Error()))
			appErr := apperrors.NewInternalServerError("Internal server error during rate limit check")
			c.AbortWithStatusJSON(appErr.Code, appErr)
			return
		}

		if limitCtx.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded",
				slog.String("client_ip", ip),
				slog.Int64("limit", limitCtx.Limit),
				slog.Int64("remaining", limitCtx.Remaining))
			appErr := apperrors.NewTooManyRequestsError("Too many requests. Please try again later.")
			c.AbortWithStatusJSON(appErr.Code, appErr)
			return
		}

		c.Next()
	}
}
