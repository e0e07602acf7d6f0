package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

// CreateTransferRequest moves funds from the authenticated account to the
// receiver address. Amount must be strictly positive.
type CreateTransferRequest struct {
	Receiver string          `json:"receiver" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required,dec_gt_zero"`
}

// OperationResponse is one serialized ledger operation.
type OperationResponse struct {
	ID         int64           `json:"id"`
	AccountID  int64           `json:"accountID"`
	CurrencyID int64           `json:"currencyID"`
	Amount     decimal.Decimal `json:"amount"`
}

// DocumentResponse is the serialized document produced by a successful transfer.
type DocumentResponse struct {
	ID         int64               `json:"id"`
	Committed  bool                `json:"committed"`
	CreatedAt  time.Time           `json:"createdAt"`
	Operations []OperationResponse `json:"operations"`
}

// NewDocumentResponse builds a DocumentResponse from domain entities.
func NewDocumentResponse(doc domain.Document, ops []domain.Operation) DocumentResponse {
	resp := DocumentResponse{
		ID:         doc.ID,
		Committed:  doc.Committed,
		CreatedAt:  doc.CreatedAt,
		Operations: make([]OperationResponse, len(ops)),
	}
	for i, op := range ops {
		resp.Operations[i] = OperationResponse{
			ID:         op.ID,
			AccountID:  op.AccountID,
			CurrencyID: op.CurrencyID,
			Amount:     op.Amount,
		}
	}
	return resp
}
