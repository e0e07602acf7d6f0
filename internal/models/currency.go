package models

// Currency represents a row of the currencies relation.
type Currency struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Symbol string `db:"symbol"`
}
