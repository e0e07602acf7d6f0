package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
	"github.com/yaaccu/yaaccu_app/internal/utils"
)

// accountService implements the account-creation flow and lookups.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	proofMaxAge time.Duration // accepted age of a creation proof timestamp
	tokenTTL    time.Duration // lifetime of tokens minted by the insecure flow
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, proofMaxAge, tokenTTL time.Duration) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		proofMaxAge: proofMaxAge,
		tokenTTL:    tokenTTL,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccountFromProof verifies the signed proof of key possession and
// creates an account addressed by the public key hash. New accounts default
// to the active type: their balance can never drop below zero.
func (s *accountService) CreateAccountFromProof(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Timestamp < time.Now().Add(-s.proofMaxAge).Unix() {
		return nil, fmt.Errorf("%w: signature expired", apperrors.ErrValidation)
	}
	if err := utils.VerifyAccountProof(req.PubKey, req.Timestamp, req.Sign); err != nil {
		logger.Warn("Account creation proof failed verification", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: invalid signature", apperrors.ErrValidation)
	}

	pubKey := req.PubKey
	account := domain.Account{
		Address: utils.PubKeyToAddress(pubKey),
		PubKey:  &pubKey,
		Type:    domain.Active,
	}
	saved, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	logger.Info("Account created", slog.String("address", saved.Address))
	return saved, nil
}

// CreateInsecureAccount generates the key pair server-side and hands the
// private key back to the caller. Kept for testing setups where clients
// cannot generate RSA keys; never registered in production.
func (s *accountService) CreateInsecureAccount(ctx context.Context) (*dto.InsecureAccountResponse, error) {
	priv, privPEM, pubPEM, err := utils.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	account := domain.Account{
		Address: utils.PubKeyToAddress(pubPEM),
		PubKey:  &pubPEM,
		Type:    domain.Active,
	}
	saved, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	token, err := utils.MintAccountToken(priv, pubPEM, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.InsecureAccountResponse{
		Account:    saved.Address,
		PubKey:     pubPEM,
		PrivateKey: privPEM,
		Token:      token,
	}, nil
}

func (s *accountService) GetAccountByPubKey(ctx context.Context, pubKey string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByPubKey(ctx, pubKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account by public key: %w", err)
	}
	return account, nil
}

func (s *accountService) GetAccountByAddress(ctx context.Context, address string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find account by address %s: %w", address, err)
	}
	return account, nil
}

// GetBalance returns the net balance over the account's committed operations.
func (s *accountService) GetBalance(ctx context.Context, account domain.Account) (decimal.Decimal, error) {
	balance, err := s.accountRepo.CommittedBalance(ctx, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance of account %s: %w", account.Address, err)
	}
	return balance, nil
}
