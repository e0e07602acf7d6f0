package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

// CurrencyTotal is the net amount of one document's operations in one currency.
type CurrencyTotal struct {
	Symbol string
	Total  decimal.Decimal
}

// AccountBalance is a projected (account, currency) balance used by the
// consistency checks.
type AccountBalance struct {
	AccountID int64
	Address   string
	Type      domain.AccountType
	Symbol    string
	Balance   decimal.Decimal
}

// LedgerQuerier is the ledger surface shared by the pooled store and an open
// write scope. Aggregations run inside a scope only see rows that scope can
// see; run against the pool they see everything other connections have
// persisted.
type LedgerQuerier interface {
	// CreateDocument inserts an empty, uncommitted document. No validation is
	// performed.
	CreateDocument(ctx context.Context) (*domain.Document, error)
	// AddOperation inserts a child operation. No validation is performed;
	// operations may be added in any order and validity is only assessed for
	// the document as a whole.
	AddOperation(ctx context.Context, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error)
	// DocumentCurrencyTotals sums the document's own operations per currency.
	DocumentCurrencyTotals(ctx context.Context, documentID int64) ([]CurrencyTotal, error)
	// DocumentAccountBalances returns the projected balance of every
	// (account, currency) pair the document touches. With includeDirty it
	// sums all persisted operations regardless of their document's committed
	// flag; without it only operations of committed documents plus the
	// document under test are counted.
	DocumentAccountBalances(ctx context.Context, documentID int64, includeDirty bool) ([]AccountBalance, error)
}

// LedgerTx is an open atomic write scope. Writes become visible to other
// connections only after Commit returns.
type LedgerTx interface {
	LedgerQuerier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// LedgerRepositoryFacade provides access to the append-only journal of
// documents and operations.
type LedgerRepositoryFacade interface {
	LedgerQuerier
	// Begin opens an isolated write scope.
	Begin(ctx context.Context) (LedgerTx, error)
	// MarkDocumentCommitted flips the committed flag. The caller must have
	// already confirmed validity; no re-check happens here.
	MarkDocumentCommitted(ctx context.Context, documentID int64) error
	// FindDocumentByID returns apperrors.ErrNotFound when absent.
	FindDocumentByID(ctx context.Context, documentID int64) (*domain.Document, error)
	FindOperationsByDocumentID(ctx context.Context, documentID int64) ([]domain.Operation, error)
}
