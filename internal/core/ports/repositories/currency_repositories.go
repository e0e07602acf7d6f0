package repositories

import (
	"context"

	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

// CurrencyRepositoryFacade provides access to the currency registry.
type CurrencyRepositoryFacade interface {
	// SaveCurrency inserts a new currency and returns it with its assigned ID.
	// Returns apperrors.ErrDuplicate when name or symbol already exists.
	SaveCurrency(ctx context.Context, currency domain.Currency) (*domain.Currency, error)
	// FindCurrencyBySymbol returns apperrors.ErrNotFound when absent.
	FindCurrencyBySymbol(ctx context.Context, symbol string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
