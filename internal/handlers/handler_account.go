package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers the public account-creation routes. The
// insecure variant hands out a server-generated key pair and is only mounted
// outside production.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, isProduction bool) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		if !isProduction {
			accounts.POST("/insecure", h.createInsecureAccount)
		}
	}
}

// registerBalanceRoutes registers the authenticated balance route.
func registerBalanceRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)
	rg.GET("/balance", h.getBalance)
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.CreateAccountFromProof(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected account creation proof", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Attempted to create duplicate account")
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
		} else {
			logger.Error("Failed to create account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	logger.Info("Account created", slog.String("account", account.Address))
	c.JSON(http.StatusCreated, dto.AccountResponse{Account: account.Address, PubKey: req.PubKey})
}

func (h *accountHandler) createInsecureAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.accountService.CreateInsecureAccount(c.Request.Context())
	if err != nil {
		logger.Error("Failed to create insecure account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	logger.Info("Insecure account created", slog.String("account", resp.Account))
	c.JSON(http.StatusCreated, resp)
}

func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, ok := middleware.GetAccountFromContext(c)
	if !ok {
		logger.Error("Account not found in context")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), account)
	if err != nil {
		logger.Error("Failed to get balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Account: account.Address, Balance: balance})
}
