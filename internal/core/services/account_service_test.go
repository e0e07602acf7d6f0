package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
	"github.com/yaaccu/yaaccu_app/internal/repositories/memory"
	"github.com/yaaccu/yaaccu_app/internal/utils"
)

func signedCreateRequest(t *testing.T, timestamp int64) dto.CreateAccountRequest {
	t.Helper()
	priv, _, pubPEM, err := utils.GenerateKeyPair()
	require.NoError(t, err)
	sign, err := utils.SignAccountProof(priv, pubPEM, timestamp)
	require.NoError(t, err)
	return dto.CreateAccountRequest{PubKey: pubPEM, Timestamp: timestamp, Sign: sign}
}

func TestCreateAccountFromProof_Success(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := services.NewAccountService(store, time.Hour, time.Hour)

	req := signedCreateRequest(t, time.Now().Unix())

	account, err := svc.CreateAccountFromProof(ctx, req)
	require.NoError(t, err)
	require.Equal(t, utils.PubKeyToAddress(req.PubKey), account.Address)
	require.NotNil(t, account.PubKey)
	require.Equal(t, req.PubKey, *account.PubKey)

	found, err := svc.GetAccountByAddress(ctx, account.Address)
	require.NoError(t, err)
	require.Equal(t, account.ID, found.ID)
}

func TestCreateAccountFromProof_ExpiredTimestamp(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	req := signedCreateRequest(t, time.Now().Add(-2*time.Hour).Unix())

	_, err := svc.CreateAccountFromProof(ctx, req)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateAccountFromProof_TamperedSignature(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	req := signedCreateRequest(t, time.Now().Unix())
	// Re-dating the request invalidates the signature over pub_key+timestamp.
	req.Timestamp = time.Now().Add(time.Minute).Unix()

	_, err := svc.CreateAccountFromProof(ctx, req)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateAccountFromProof_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	req := signedCreateRequest(t, time.Now().Unix())

	_, err := svc.CreateAccountFromProof(ctx, req)
	require.NoError(t, err)
	_, err = svc.CreateAccountFromProof(ctx, req)
	require.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestCreateInsecureAccount(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	resp, err := svc.CreateInsecureAccount(ctx)
	require.NoError(t, err)
	require.Equal(t, utils.PubKeyToAddress(resp.PubKey), resp.Account)
	require.NotEmpty(t, resp.PrivateKey)

	// The bundled token authenticates as the new account.
	pubKey, err := utils.VerifyAccountToken(resp.Token, time.Hour)
	require.NoError(t, err)
	require.Equal(t, resp.PubKey, pubKey)

	account, err := svc.GetAccountByPubKey(ctx, pubKey)
	require.NoError(t, err)
	require.Equal(t, resp.Account, account.Address)
}

func TestGetAccount_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	_, err := svc.GetAccountByAddress(ctx, "0xmissing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.GetAccountByPubKey(ctx, "missing-pem")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetBalance_FreshAccountIsZero(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAccountService(memory.NewStore(), time.Hour, time.Hour)

	resp, err := svc.CreateInsecureAccount(ctx)
	require.NoError(t, err)
	account, err := svc.GetAccountByAddress(ctx, resp.Account)
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, *account)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}
