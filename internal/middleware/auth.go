package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/utils"
)

// TokenHeader carries the self-signed account token.
const TokenHeader = "X-Token"

// TokenAuthMiddleware resolves the calling account from an X-Token header.
// Every failure mode (missing, malformed, expired, unknown key) yields 403;
// identity failures are reported distinctly from business rejections, which
// the handlers map to 400.
func TokenAuthMiddleware(accountSvc portssvc.AccountSvcFacade, tokenMaxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString := c.GetHeader(TokenHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token required"})
			return
		}

		pubKey, err := utils.VerifyAccountToken(tokenString, tokenMaxAge)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				logger.Warn("Rejected expired token")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token expired"})
				return
			}
			logger.Warn("Rejected invalid token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		account, err := accountSvc.GetAccountByPubKey(c.Request.Context(), pubKey)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account doesn't exist"})
				return
			}
			logger.Error("Account lookup failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}

		enriched := logger.With(slog.String("account", account.Address))
		ctx := context.WithValue(c.Request.Context(), accountCtxKey, *account)
		ctx = context.WithValue(ctx, loggerCtxKey, enriched)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
