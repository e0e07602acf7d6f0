package domain

// Currency represents a supported currency in the domain.
// Currencies are immutable reference data once an operation refers to them.
type Currency struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`   // e.g., "US Dollar"
	Symbol string `json:"symbol"` // e.g., "USD"
}
