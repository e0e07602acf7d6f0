package domain

import "github.com/shopspring/decimal"

// AccountType defines the balance-sign constraint applied to an account.
type AccountType string

const (
	// Active accounts must keep their balance at or above zero in every currency.
	Active AccountType = "active"
	// Passive accounts must keep their balance at or below zero in every currency.
	Passive AccountType = "passive"
	// Normal accounts carry no balance-sign constraint.
	Normal AccountType = "normal"
)

// Account represents a ledger account within the core domain.
type Account struct {
	ID      int64       `json:"id"`
	Address string      `json:"address"` // Public key hash with "0x" prefix, or a custom admin name
	PubKey  *string     `json:"pubKey"`  // PEM-encoded RSA public key; nil for administrative accounts
	Type    AccountType `json:"type"`
}

// AllowsBalance reports whether the given balance satisfies the account type's
// sign constraint.
func (t AccountType) AllowsBalance(balance decimal.Decimal) bool {
	switch t {
	case Active:
		return !balance.IsNegative()
	case Passive:
		return !balance.IsPositive()
	default:
		return true
	}
}
