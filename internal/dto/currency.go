package dto

// CreateCurrencyRequest registers a new currency (administrative action).
type CreateCurrencyRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol" binding:"required"`
}

// CurrencyResponse is one serialized currency.
type CurrencyResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
