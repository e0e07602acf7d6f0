package mapping

import (
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	"github.com/yaaccu/yaaccu_app/internal/models"
)

// ToDomainCurrency converts a DB model currency to its domain representation.
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		ID:     m.ID,
		Name:   m.Name,
		Symbol: m.Symbol,
	}
}

// ToModelCurrency converts a domain currency to its DB model representation.
func ToModelCurrency(c domain.Currency) models.Currency {
	return models.Currency{
		ID:     c.ID,
		Name:   c.Name,
		Symbol: c.Symbol,
	}
}

// ToDomainCurrencySlice converts a slice of model currencies.
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	out := make([]domain.Currency, len(ms))
	for i, m := range ms {
		out[i] = ToDomainCurrency(m)
	}
	return out
}
