package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
)

// AccountRepositoryFacade provides access to the account store.
// Accounts are insert-only: there is no update or delete surface.
type AccountRepositoryFacade interface {
	// SaveAccount inserts a new account and returns it with its assigned ID.
	// Returns apperrors.ErrDuplicate when address or pub_key already exists.
	SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
	// FindAccountByAddress returns apperrors.ErrNotFound when absent.
	FindAccountByAddress(ctx context.Context, address string) (*domain.Account, error)
	// FindAccountByPubKey returns apperrors.ErrNotFound when absent.
	FindAccountByPubKey(ctx context.Context, pubKey string) (*domain.Account, error)
	// CommittedBalance sums the account's operations across committed
	// documents, coalesced to zero when there are none.
	CommittedBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}
