package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/auth"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and records the caller in the context.
// The user row is created on first sight so topic selections have somewhere to live.
func AuthMiddleware(validator auth.TokenValidatorInterface, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "no token provided")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			util.RespondUnauthorized(c, "authorization header must be a bearer token")
			return
		}

		identity, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.Log.Debug("Rejected bearer token",
				logger.WithRequestID(c.GetString(util.ContextRequestID)),
				zap.Error(err),
			)
			util.RespondUnauthorized(c, "invalid token")
			return
		}

		if users != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			_, err := users.Ensure(ctx, identity.UserID, identity.Username)
			cancel()
			if err != nil {
				logger.Log.Error("Failed to register user",
					logger.WithUserID(identity.UserID),
					zap.Error(err),
				)
				util.RespondInternalError(c, "failed to load user")
				return
			}
		}

		c.Set(util.ContextUserID, identity.UserID)
		c.Set(util.ContextUsername, identity.Username)

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(attribute.String("user.id", identity.UserID))
		}

		c.Next()
	}
}
