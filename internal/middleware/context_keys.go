package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

const accountCtxKey = contextKey("account")

// GetAccountFromContext retrieves the authenticated account resolved by the
// token middleware. The boolean reports whether one was set.
func GetAccountFromContext(c *gin.Context) (domain.Account, bool) {
	account, ok := c.Request.Context().Value(accountCtxKey).(domain.Account)
	return account, ok
}
