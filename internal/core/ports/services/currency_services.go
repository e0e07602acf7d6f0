package services

import (
	"context"

	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	"github.com/yaaccu/yaaccu_app/internal/dto"
)

// CurrencySvcFacade manages the currency registry.
type CurrencySvcFacade interface {
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error)
	GetCurrencyBySymbol(ctx context.Context, symbol string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
