package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
)

// currencyService manages the immutable currency registry.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error) {
	if req.Name == "" || req.Symbol == "" {
		return nil, fmt.Errorf("%w: currency name and symbol are required", apperrors.ErrValidation)
	}
	currency := domain.Currency{Name: req.Name, Symbol: req.Symbol}
	saved, err := s.currencyRepo.SaveCurrency(ctx, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save currency %s: %w", req.Symbol, err)
	}
	return saved, nil
}

func (s *currencyService) GetCurrencyBySymbol(ctx context.Context, symbol string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find currency %s: %w", symbol, err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
