package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	"github.com/yaaccu/yaaccu_app/internal/dto"
)

// AccountSvcFacade covers the account-creation flow and account lookups.
type AccountSvcFacade interface {
	// CreateAccountFromProof verifies the self-signed proof of key possession
	// and creates an account whose address is derived from the public key.
	// Expired or invalid proofs surface as apperrors.ErrValidation.
	CreateAccountFromProof(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	// CreateInsecureAccount generates a key pair server-side and returns it
	// together with a ready token. Testing only.
	CreateInsecureAccount(ctx context.Context) (*dto.InsecureAccountResponse, error)
	GetAccountByPubKey(ctx context.Context, pubKey string) (*domain.Account, error)
	GetAccountByAddress(ctx context.Context, address string) (*domain.Account, error)
	// GetBalance sums the account's committed operations, zero when none.
	GetBalance(ctx context.Context, account domain.Account) (decimal.Decimal, error)
}
