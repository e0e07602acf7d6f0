package models

import "github.com/shopspring/decimal"

// Operation represents a row of the operations relation.
// Amount is NUMERIC(16,4); the sign encodes debit (negative) or credit (positive).
type Operation struct {
	ID         int64           `db:"id"`
	DocumentID int64           `db:"document_id"`
	AccountID  int64           `db:"account_id"`
	CurrencyID int64           `db:"currency_id"`
	Amount     decimal.Decimal `db:"amount"`
}
