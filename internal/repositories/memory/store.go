// Package memory provides an in-memory implementation of the repository
// ports. It mimics the visibility rules of a read-committed relational store:
// rows written inside an open scope are visible only to that scope until it
// commits. Used by service-level and concurrency tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
)

// Store holds all published (scope-committed) rows.
type Store struct {
	mu sync.Mutex

	nextAccountID   int64
	nextCurrencyID  int64
	nextDocumentID  int64
	nextOperationID int64

	accounts   []domain.Account
	currencies []domain.Currency
	documents  map[int64]*domain.Document
	operations []domain.Operation
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{documents: make(map[int64]*domain.Document)}
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.CurrencyRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade   = (*Store)(nil)
)

// --- AccountRepositoryFacade ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Address == account.Address {
			return nil, fmt.Errorf("account %s: %w", account.Address, apperrors.ErrDuplicate)
		}
		if account.PubKey != nil && existing.PubKey != nil && *existing.PubKey == *account.PubKey {
			return nil, fmt.Errorf("account %s: %w", account.Address, apperrors.ErrDuplicate)
		}
	}
	s.nextAccountID++
	account.ID = s.nextAccountID
	s.accounts = append(s.accounts, account)
	return &account, nil
}

func (s *Store) FindAccountByAddress(_ context.Context, address string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Address == address {
			found := account
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindAccountByPubKey(_ context.Context, pubKey string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.PubKey != nil && *account.PubKey == pubKey {
			found := account
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) CommittedBalance(_ context.Context, accountID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := decimal.Zero
	for _, op := range s.operations {
		if op.AccountID != accountID {
			continue
		}
		if doc, ok := s.documents[op.DocumentID]; ok && doc.Committed {
			balance = balance.Add(op.Amount)
		}
	}
	return balance, nil
}

// --- CurrencyRepositoryFacade ---

func (s *Store) SaveCurrency(_ context.Context, currency domain.Currency) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.currencies {
		if existing.Name == currency.Name || existing.Symbol == currency.Symbol {
			return nil, fmt.Errorf("currency %s: %w", currency.Symbol, apperrors.ErrDuplicate)
		}
	}
	s.nextCurrencyID++
	currency.ID = s.nextCurrencyID
	s.currencies = append(s.currencies, currency)
	return &currency, nil
}

func (s *Store) FindCurrencyBySymbol(_ context.Context, symbol string) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, currency := range s.currencies {
		if currency.Symbol == symbol {
			found := currency
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListCurrencies(_ context.Context) ([]domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Currency, len(s.currencies))
	copy(out, s.currencies)
	return out, nil
}

// --- LedgerRepositoryFacade ---

func (s *Store) CreateDocument(_ context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.newDocumentLocked()
	s.documents[doc.ID] = &doc
	published := doc
	return &published, nil
}

func (s *Store) AddOperation(_ context.Context, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, err := s.newOperationLocked(documentID, accountID, currencyID, amount)
	if err != nil {
		return nil, err
	}
	s.operations = append(s.operations, op)
	return &op, nil
}

func (s *Store) DocumentCurrencyTotals(_ context.Context, documentID int64) ([]portsrepo.CurrencyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currencyTotalsLocked(s.operations, documentID), nil
}

func (s *Store) DocumentAccountBalances(_ context.Context, documentID int64, includeDirty bool) ([]portsrepo.AccountBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountBalancesLocked(s.operations, nil, documentID, includeDirty), nil
}

func (s *Store) Begin(_ context.Context) (portsrepo.LedgerTx, error) {
	return &memTx{store: s}, nil
}

func (s *Store) MarkDocumentCommitted(_ context.Context, documentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("document %d not found", documentID))
	}
	doc.Committed = true
	return nil
}

func (s *Store) FindDocumentByID(_ context.Context, documentID int64) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	found := *doc
	return &found, nil
}

func (s *Store) FindOperationsByDocumentID(_ context.Context, documentID int64) ([]domain.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ops []domain.Operation
	for _, op := range s.operations {
		if op.DocumentID == documentID {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// --- internals ---

func (s *Store) newDocumentLocked() domain.Document {
	s.nextDocumentID++
	return domain.Document{ID: s.nextDocumentID, CreatedAt: time.Now().UTC()}
}

func (s *Store) newOperationLocked(documentID, accountID, currencyID int64, amount decimal.Decimal) (domain.Operation, error) {
	if _, err := s.accountByIDLocked(accountID); err != nil {
		return domain.Operation{}, err
	}
	if _, err := s.currencyByIDLocked(currencyID); err != nil {
		return domain.Operation{}, err
	}
	s.nextOperationID++
	return domain.Operation{
		ID:         s.nextOperationID,
		DocumentID: documentID,
		AccountID:  accountID,
		CurrencyID: currencyID,
		Amount:     amount,
	}, nil
}

func (s *Store) accountByIDLocked(id int64) (domain.Account, error) {
	for _, account := range s.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return domain.Account{}, apperrors.NewAppError(500, fmt.Sprintf("account %d violates foreign key", id), apperrors.ErrNotFound)
}

func (s *Store) currencyByIDLocked(id int64) (domain.Currency, error) {
	for _, currency := range s.currencies {
		if currency.ID == id {
			return currency, nil
		}
	}
	return domain.Currency{}, apperrors.NewAppError(500, fmt.Sprintf("currency %d violates foreign key", id), apperrors.ErrNotFound)
}

func (s *Store) currencyTotalsLocked(visible []domain.Operation, documentID int64) []portsrepo.CurrencyTotal {
	totals := make(map[int64]decimal.Decimal)
	var order []int64
	for _, op := range visible {
		if op.DocumentID != documentID {
			continue
		}
		if _, seen := totals[op.CurrencyID]; !seen {
			order = append(order, op.CurrencyID)
		}
		totals[op.CurrencyID] = totals[op.CurrencyID].Add(op.Amount)
	}

	rows := make([]portsrepo.CurrencyTotal, 0, len(order))
	for _, currencyID := range order {
		currency, _ := s.currencyByIDLocked(currencyID)
		rows = append(rows, portsrepo.CurrencyTotal{Symbol: currency.Symbol, Total: totals[currencyID]})
	}
	return rows
}

// accountBalancesLocked projects (account, currency) balances over the
// visible operations, restricted to pairs the document touches. stagedDocs
// lists documents created by an open scope; those count as uncommitted.
func (s *Store) accountBalancesLocked(visible []domain.Operation, stagedDocs []domain.Document, documentID int64, includeDirty bool) []portsrepo.AccountBalance {
	type pair struct{ account, currency int64 }

	committed := func(docID int64) bool {
		for _, staged := range stagedDocs {
			if staged.ID == docID {
				return false
			}
		}
		if doc, ok := s.documents[docID]; ok {
			return doc.Committed
		}
		return false
	}

	touched := make(map[pair]bool)
	var order []pair
	for _, op := range visible {
		if op.DocumentID != documentID {
			continue
		}
		k := pair{op.AccountID, op.CurrencyID}
		if !touched[k] {
			touched[k] = true
			order = append(order, k)
		}
	}

	sums := make(map[pair]decimal.Decimal)
	for _, op := range visible {
		k := pair{op.AccountID, op.CurrencyID}
		if !touched[k] {
			continue
		}
		if !includeDirty && !committed(op.DocumentID) && op.DocumentID != documentID {
			continue
		}
		sums[k] = sums[k].Add(op.Amount)
	}

	rows := make([]portsrepo.AccountBalance, 0, len(order))
	for _, k := range order {
		account, _ := s.accountByIDLocked(k.account)
		currency, _ := s.currencyByIDLocked(k.currency)
		rows = append(rows, portsrepo.AccountBalance{
			AccountID: account.ID,
			Address:   account.Address,
			Type:      account.Type,
			Symbol:    currency.Symbol,
			Balance:   sums[k],
		})
	}
	return rows
}

// memTx stages writes until Commit publishes them atomically.
type memTx struct {
	store *Store
	docs  []domain.Document
	ops   []domain.Operation
	done  bool
}

var _ portsrepo.LedgerTx = (*memTx)(nil)

func (t *memTx) CreateDocument(_ context.Context) (*domain.Document, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	doc := t.store.newDocumentLocked()
	t.docs = append(t.docs, doc)
	staged := doc
	return &staged, nil
}

func (t *memTx) AddOperation(_ context.Context, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	op, err := t.store.newOperationLocked(documentID, accountID, currencyID, amount)
	if err != nil {
		return nil, err
	}
	t.ops = append(t.ops, op)
	return &op, nil
}

func (t *memTx) DocumentCurrencyTotals(_ context.Context, documentID int64) ([]portsrepo.CurrencyTotal, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.currencyTotalsLocked(t.visibleLocked(), documentID), nil
}

func (t *memTx) DocumentAccountBalances(_ context.Context, documentID int64, includeDirty bool) ([]portsrepo.AccountBalance, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.accountBalancesLocked(t.visibleLocked(), t.docs, documentID, includeDirty), nil
}

func (t *memTx) Commit(_ context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return apperrors.NewAppError(500, "transaction already finished", nil)
	}
	for _, doc := range t.docs {
		published := doc
		t.store.documents[doc.ID] = &published
	}
	t.store.operations = append(t.store.operations, t.ops...)
	t.done = true
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.docs, t.ops = nil, nil
	t.done = true
	return nil
}

// visibleLocked is the scope's view: published rows plus its own staged rows.
func (t *memTx) visibleLocked() []domain.Operation {
	visible := make([]domain.Operation, 0, len(t.store.operations)+len(t.ops))
	visible = append(visible, t.store.operations...)
	visible = append(visible, t.ops...)
	return visible
}
