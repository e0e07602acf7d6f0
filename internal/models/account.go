package models

// AccountType mirrors the account_type enum in the database.
type AccountType string

const (
	Active  AccountType = "active"
	Passive AccountType = "passive"
	Normal  AccountType = "normal"
)

// Account represents a row of the accounts relation.
type Account struct {
	ID      int64       `db:"id"`
	Address string      `db:"address"`
	PubKey  *string     `db:"pub_key"` // Nullable
	Type    AccountType `db:"type"`
}
