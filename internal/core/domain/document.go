package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document groups one or more operations into a single atomic ledger
// transaction. A document that never commits stays persisted but void; its
// operations remain visible to concurrent validations, deliberately.
type Document struct {
	ID        int64     `json:"id"`
	Committed bool      `json:"committed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Operation is a single signed amount applied to one account in one currency.
// Negative amounts are debits (funds leaving), positive amounts are credits.
// Operations are immutable once created and always belong to a document.
type Operation struct {
	ID         int64           `json:"id"`
	DocumentID int64           `json:"documentID"`
	AccountID  int64           `json:"accountID"`
	CurrencyID int64           `json:"currencyID"`
	Amount     decimal.Decimal `json:"amount"`
}
