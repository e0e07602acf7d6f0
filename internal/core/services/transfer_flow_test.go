package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/core/services"
	"github.com/yaaccu/yaaccu_app/internal/repositories/memory"
)

// ledgerFixture wires the ledger service to the in-memory store with a
// passive funding source and two user accounts.
type ledgerFixture struct {
	store  *memory.Store
	ledger portssvc.LedgerSvcFacade
	bank   domain.Account
	alice  domain.Account
	bob    domain.Account
	usd    domain.Currency
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	bank, err := store.SaveAccount(ctx, domain.Account{Address: "0xbank", Type: domain.Passive})
	require.NoError(t, err)
	alice, err := store.SaveAccount(ctx, domain.Account{Address: "0xalice", Type: domain.Active})
	require.NoError(t, err)
	bob, err := store.SaveAccount(ctx, domain.Account{Address: "0xbob", Type: domain.Active})
	require.NoError(t, err)
	usd, err := store.SaveCurrency(ctx, domain.Currency{Name: "US Dollar", Symbol: "USD"})
	require.NoError(t, err)

	return &ledgerFixture{
		store:  store,
		ledger: services.NewLedgerService(store),
		bank:   *bank,
		alice:  *alice,
		bob:    *bob,
		usd:    *usd,
	}
}

// fund emits new money: the passive bank account goes further negative, the
// target active account goes positive, and the document stays balanced.
func (f *ledgerFixture) fund(t *testing.T, target domain.Account, amount int64) {
	t.Helper()
	_, _, err := f.ledger.CreateTransfer(context.Background(), f.bank, target, decimal.NewFromInt(amount), f.usd)
	require.NoError(t, err)
}

func (f *ledgerFixture) committedBalance(t *testing.T, account domain.Account) decimal.Decimal {
	t.Helper()
	balance, err := f.store.CommittedBalance(context.Background(), account.ID)
	require.NoError(t, err)
	return balance
}

func TestTransferFlow_FundAndSpend(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.fund(t, f.alice, 100)

	doc, ops, err := f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(60), f.usd)
	require.NoError(t, err)
	require.True(t, doc.Committed)
	require.Len(t, ops, 2)
	require.True(t, ops[0].Amount.Equal(decimal.NewFromInt(-60)))
	require.True(t, ops[1].Amount.Equal(decimal.NewFromInt(60)))

	require.True(t, f.committedBalance(t, f.alice).Equal(decimal.NewFromInt(40)))
	require.True(t, f.committedBalance(t, f.bob).Equal(decimal.NewFromInt(60)))
	require.True(t, f.committedBalance(t, f.bank).Equal(decimal.NewFromInt(-100)))

	// Committed documents keep validating: committing never needs undoing.
	for _, documentID := range []int64{1, 2} {
		valid, err := f.ledger.IsValid(ctx, documentID)
		require.NoError(t, err)
		require.True(t, valid)
	}
}

func TestDocumentValidation_SingleOperationImbalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	doc, err := f.store.CreateDocument(ctx)
	require.NoError(t, err)
	_, err = f.store.AddOperation(ctx, doc.ID, f.alice.ID, f.usd.ID, decimal.NewFromInt(1))
	require.NoError(t, err)

	valid, err := f.ledger.IsValid(ctx, doc.ID)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestDocumentValidation_TwoCurrencyDocument(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	eur, err := f.store.SaveCurrency(ctx, domain.Currency{Name: "Euro", Symbol: "EUR"})
	require.NoError(t, err)
	a, err := f.store.SaveAccount(ctx, domain.Account{Address: "0xnorm-a", Type: domain.Normal})
	require.NoError(t, err)
	b, err := f.store.SaveAccount(ctx, domain.Account{Address: "0xnorm-b", Type: domain.Normal})
	require.NoError(t, err)

	// Balanced per currency, across two currencies, between normal accounts.
	doc, err := f.store.CreateDocument(ctx)
	require.NoError(t, err)
	for _, op := range []struct {
		account  int64
		currency int64
		amount   int64
	}{
		{a.ID, f.usd.ID, -1},
		{b.ID, f.usd.ID, 1},
		{a.ID, eur.ID, -1},
		{b.ID, eur.ID, 1},
	} {
		_, err = f.store.AddOperation(ctx, doc.ID, op.account, op.currency, decimal.NewFromInt(op.amount))
		require.NoError(t, err)
	}

	valid, err := f.ledger.IsValid(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, valid)
}

func TestDocumentValidation_ActiveAccountCannotGoNegative(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// Balanced document that would push an empty active account below zero.
	doc, err := f.store.CreateDocument(ctx)
	require.NoError(t, err)
	_, err = f.store.AddOperation(ctx, doc.ID, f.alice.ID, f.usd.ID, decimal.NewFromInt(-1))
	require.NoError(t, err)
	_, err = f.store.AddOperation(ctx, doc.ID, f.bob.ID, f.usd.ID, decimal.NewFromInt(1))
	require.NoError(t, err)

	valid, err := f.ledger.IsValid(ctx, doc.ID)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestTransferFlow_InsufficientFunds(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.fund(t, f.alice, 50)

	_, _, err := f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(60), f.usd)
	require.ErrorIs(t, err, services.ErrTransferRejected)

	// The in-scope check sees the staged operations, so the rejection happens
	// before anything persists and the scope rolls back whole.
	_, _, err = f.ledger.GetDocumentWithOperations(ctx, 2)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// Nothing moved.
	require.True(t, f.committedBalance(t, f.alice).Equal(decimal.NewFromInt(50)))
	require.True(t, f.committedBalance(t, f.bob).IsZero())
}

func TestTransferFlow_RejectedDocumentStaysPersisted(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.fund(t, f.alice, 100)

	_, _, err := f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(60), f.usd)
	require.NoError(t, err)

	// A concurrent writer can persist an overdrawing document and only lose
	// the authoritative check afterwards. Model that outcome directly: the
	// document lands on disk and is never committed.
	overdraw, err := f.store.CreateDocument(ctx)
	require.NoError(t, err)
	_, err = f.store.AddOperation(ctx, overdraw.ID, f.alice.ID, f.usd.ID, decimal.NewFromInt(-60))
	require.NoError(t, err)
	_, err = f.store.AddOperation(ctx, overdraw.ID, f.bob.ID, f.usd.ID, decimal.NewFromInt(60))
	require.NoError(t, err)

	fundDoc, _, err := f.ledger.GetDocumentWithOperations(ctx, 1)
	require.NoError(t, err)
	require.True(t, fundDoc.Committed)
	rejected, rejectedOps, err := f.ledger.GetDocumentWithOperations(ctx, overdraw.ID)
	require.NoError(t, err)
	require.False(t, rejected.Committed)
	require.Len(t, rejectedOps, 2)

	// Committed balances ignore the rejected attempt.
	require.True(t, f.committedBalance(t, f.alice).Equal(decimal.NewFromInt(40)))
	require.True(t, f.committedBalance(t, f.bob).Equal(decimal.NewFromInt(60)))

	valid, err := f.ledger.IsValid(ctx, rejected.ID)
	require.NoError(t, err)
	require.False(t, valid)

	// The rejected operations keep counting in later dirty passes, so a
	// transfer the committed balance alone could cover is also rejected.
	_, _, err = f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(40), f.usd)
	require.ErrorIs(t, err, services.ErrTransferRejected)
}

func TestTransferFlow_CurrenciesAreIndependent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	eur, err := f.store.SaveCurrency(ctx, domain.Currency{Name: "Euro", Symbol: "EUR"})
	require.NoError(t, err)

	f.fund(t, f.alice, 100)

	// A USD balance buys nothing in EUR.
	_, _, err = f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(10), *eur)
	require.ErrorIs(t, err, services.ErrTransferRejected)
}

func TestTransferFlow_FractionalAmounts(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.fund(t, f.alice, 1)

	amount := decimal.RequireFromString("0.3333")
	_, _, err := f.ledger.CreateTransfer(ctx, f.alice, f.bob, amount, f.usd)
	require.NoError(t, err)

	require.True(t, f.committedBalance(t, f.alice).Equal(decimal.RequireFromString("0.6667")))
	require.True(t, f.committedBalance(t, f.bob).Equal(amount))
}

func TestConcurrentTransfers_AtMostOneSucceeds(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.fund(t, f.alice, 100)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.ledger.CreateTransfer(ctx, f.alice, f.bob, decimal.NewFromInt(100), f.usd)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !errors.Is(err, services.ErrTransferRejected) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Racing transfers may all lose, but never more than one can win: each
	// racer persists before its authoritative check, so two survivors would
	// each have seen the other's overdraw. Mutual rejection, where every
	// racer observes another's staged operations and backs off, is allowed
	// (see DESIGN.md, open questions).
	require.LessOrEqual(t, successes, 1)

	aliceBalance := f.committedBalance(t, f.alice)
	bobBalance := f.committedBalance(t, f.bob)
	require.False(t, aliceBalance.IsNegative())
	require.True(t, aliceBalance.Equal(decimal.NewFromInt(100-int64(successes)*100)))
	require.True(t, bobBalance.Equal(decimal.NewFromInt(int64(successes)*100)))
}
