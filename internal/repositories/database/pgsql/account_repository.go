package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
	"github.com/yaaccu/yaaccu_app/internal/models"
	"github.com/yaaccu/yaaccu_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account. Accounts are never updated afterwards.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	modelAcc := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (address, pub_key, type)
		VALUES ($1, $2, $3)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query,
		modelAcc.Address,
		modelAcc.PubKey,
		modelAcc.Type,
	).Scan(&modelAcc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account %s: %w", modelAcc.Address, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewAppError(500, "failed to insert account "+modelAcc.Address, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountByAddress retrieves an account by its unique address.
func (r *PgxAccountRepository) FindAccountByAddress(ctx context.Context, address string) (*domain.Account, error) {
	return r.findAccount(ctx, `address = $1`, address)
}

// FindAccountByPubKey retrieves an account by its unique public key.
func (r *PgxAccountRepository) FindAccountByPubKey(ctx context.Context, pubKey string) (*domain.Account, error) {
	return r.findAccount(ctx, `pub_key = $1`, pubKey)
}

func (r *PgxAccountRepository) findAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT id, address, pub_key, type FROM accounts WHERE ` + where + `;`
	var modelAcc models.Account
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&modelAcc.ID,
		&modelAcc.Address,
		&modelAcc.PubKey,
		&modelAcc.Type,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account", err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// CommittedBalance sums the account's operations across committed documents.
func (r *PgxAccountRepository) CommittedBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(o.amount), 0)
		FROM operations o
		JOIN documents d ON d.id = o.document_id
		WHERE o.account_id = $1 AND d.committed;
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, fmt.Sprintf("failed to sum balance of account %d", accountID), err)
	}
	return balance, nil
}
