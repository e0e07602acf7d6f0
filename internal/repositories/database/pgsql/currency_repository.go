package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
	"github.com/yaaccu/yaaccu_app/internal/models"
	"github.com/yaaccu/yaaccu_app/internal/utils/mapping"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// NewCurrencyRepository creates a new repository for currency reference data.
func NewCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

// SaveCurrency inserts a new currency. Currencies are immutable once an
// operation references them, so there is no upsert path.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) (*domain.Currency, error) {
	modelCurr := mapping.ToModelCurrency(currency)
	query := `
		INSERT INTO currencies (name, symbol)
		VALUES ($1, $2)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query, modelCurr.Name, modelCurr.Symbol).Scan(&modelCurr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("currency %s: %w", modelCurr.Symbol, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewAppError(500, "failed to insert currency "+modelCurr.Symbol, err)
	}

	domainCurr := mapping.ToDomainCurrency(modelCurr)
	return &domainCurr, nil
}

// FindCurrencyBySymbol retrieves a currency by its unique symbol.
func (r *PgxCurrencyRepository) FindCurrencyBySymbol(ctx context.Context, symbol string) (*domain.Currency, error) {
	query := `SELECT id, name, symbol FROM currencies WHERE symbol = $1;`
	var modelCurr models.Currency
	err := r.Pool.QueryRow(ctx, query, symbol).Scan(
		&modelCurr.ID,
		&modelCurr.Name,
		&modelCurr.Symbol,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find currency by symbol "+symbol, err)
	}

	domainCurr := mapping.ToDomainCurrency(modelCurr)
	return &domainCurr, nil
}

// ListCurrencies retrieves all currencies ordered by symbol.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT id, name, symbol FROM currencies ORDER BY symbol;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query currencies", err)
	}
	defer rows.Close()

	modelCurrencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		var currency models.Currency
		err := row.Scan(&currency.ID, &currency.Name, &currency.Symbol)
		return currency, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan currencies", err)
	}

	return mapping.ToDomainCurrencySlice(modelCurrencies), nil
}
