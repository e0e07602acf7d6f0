package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/core/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
)

// transferHandler handles fund transfers between accounts. The sender is
// always the authenticated account; the receiver is addressed by its address.
type transferHandler struct {
	ledgerService   portssvc.LedgerSvcFacade
	currencyService portssvc.CurrencySvcFacade
	accountService  portssvc.AccountSvcFacade
}

func newTransferHandler(ls portssvc.LedgerSvcFacade, cs portssvc.CurrencySvcFacade, as portssvc.AccountSvcFacade) *transferHandler {
	return &transferHandler{ledgerService: ls, currencyService: cs, accountService: as}
}

// registerTransferRoutes registers the authenticated transfer routes.
func registerTransferRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, currencyService portssvc.CurrencySvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newTransferHandler(ledgerService, currencyService, accountService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("/:documentID", h.getTransfer)
	}
}

func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	sender, ok := middleware.GetAccountFromContext(c)
	if !ok {
		logger.Error("Account not found in context")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	currency, err := h.currencyService.GetCurrencyBySymbol(c.Request.Context(), req.Currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid currency"})
		} else {
			logger.Error("Failed to resolve currency", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transfer"})
		}
		return
	}

	receiver, err := h.accountService.GetAccountByAddress(c.Request.Context(), req.Receiver)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Receiver doesn't exist"})
		} else {
			logger.Error("Failed to resolve receiver", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transfer"})
		}
		return
	}

	logger = logger.With(slog.String("receiver", receiver.Address), slog.String("currency", currency.Symbol))

	doc, ops, err := h.ledgerService.CreateTransfer(c.Request.Context(), sender, *receiver, req.Amount, *currency)
	if err != nil {
		if errors.Is(err, services.ErrTransferRejected) {
			logger.Warn("Transfer rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transfer rejected"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to process transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transfer"})
		}
		return
	}

	logger.Info("Transfer committed", slog.Int64("document_id", doc.ID))
	c.JSON(http.StatusOK, dto.NewDocumentResponse(*doc, ops))
}

func (h *transferHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	documentID, err := strconv.ParseInt(c.Param("documentID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	doc, ops, err := h.ledgerService.GetDocumentWithOperations(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			logger.Error("Failed to get document", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewDocumentResponse(*doc, ops))
}
