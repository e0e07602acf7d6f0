package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

// LedgerSvcFacade is the consistency engine plus the transfer orchestrator.
type LedgerSvcFacade interface {
	// CreateTransfer builds a two-operation document (debit sender, credit
	// receiver), validates it and commits it. A business rejection surfaces
	// as services.ErrTransferRejected; storage failures surface as other
	// errors.
	CreateTransfer(ctx context.Context, sender, receiver domain.Account, amount decimal.Decimal, currency domain.Currency) (*domain.Document, []domain.Operation, error)
	// IsValid reports whether the document satisfies the currency balance law
	// and the account-type balance law (dirty then clean pass). Violations
	// yield (false, nil); only storage failures yield an error.
	IsValid(ctx context.Context, documentID int64) (bool, error)
	GetDocumentWithOperations(ctx context.Context, documentID int64) (*domain.Document, []domain.Operation, error)
}
