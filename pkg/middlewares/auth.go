package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"go.uber.org/zap"
)

const bearerPrefix = "bearer "

// CurrentUserResolver turns a bearer token into the stored credential record.
type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, traceId string, env pkg.Env, token string) (models.UserCredential, error)
}

// BearerAuth rejects requests without a valid bearer token and stores the caller under pkg.CurrentUser.
// Disabled users are rejected with 400.
func BearerAuth(logger *zap.Logger, resolver CurrentUserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetString(pkg.TraceId)

		header := c.GetHeader("Authorization")
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			abortWithError(c, logger, traceID, pkg.NewAppError(pkg.ErrUnauthorizedCode, pkg.ErrUnauthorizedCode.Message, pkg.ErrTokenInvalid))
			return
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])

		env, err := utils.GetEnv(c)
		if err != nil {
			abortWithError(c, logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid is-test header", err))
			return
		}

		user, err := resolver.ResolveCurrentUser(c.Request.Context(), traceID, env, token)
		if err != nil {
			abortWithError(c, logger, traceID, err)
			return
		}
		if user.Disabled {
			abortWithError(c, logger, traceID, pkg.NewAppError(pkg.ErrInactiveUserCode, pkg.ErrInactiveUserCode.Message, nil))
			return
		}
		c.Set(pkg.CurrentUser, user)
		c.Next()
	}
}

// RateLimit answers 429 once limiter refuses.
func RateLimit(logger *zap.Logger, limiter interface {
	Allow(ctx context.Context) bool
}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context()) {
			abortWithError(c, logger, c.GetString(pkg.TraceId),
				pkg.NewAppError(pkg.ErrRateLimitedCode, pkg.ErrRateLimitedCode.Message, pkg.ErrRateLimitExceeded))
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, logger *zap.Logger, traceID string, err error) {
	resp := pkg.ToErrorResponse(logger, traceID, err)
	if resp.Status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(resp.Status, resp)
}
