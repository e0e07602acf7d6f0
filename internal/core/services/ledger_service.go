package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/yaaccu/yaaccu_app/internal/apperrors"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portsrepo "github.com/yaaccu/yaaccu_app/internal/core/ports/repositories"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
)

// ErrTransferRejected signals a business rejection: unbalanced document,
// account-type violation or insufficient funds. Distinct from storage
// failures, which surface as other errors.
var ErrTransferRejected = errors.New("transfer rejected: document is invalid")

// invalidDocumentError records which law a document broke and why. It is
// consumed inside the ledger service only; callers of IsValid see a boolean.
type invalidDocumentError struct {
	reason string
}

func (e *invalidDocumentError) Error() string {
	return e.reason
}

// ledgerService implements the consistency engine and the transfer
// orchestrator on top of the ledger repository.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// IsValid reports whether the document satisfies both balance laws.
//
// The check runs in two passes over the (account, currency) pairs the
// document touches. The dirty pass counts every persisted operation,
// committed or not: a concurrent caller may have inserted a conflicting,
// not-yet-committed document a moment earlier, and ignoring it could
// authorize an overdraft that only materializes once both documents commit.
// The clean pass counts committed operations plus the document under test:
// a dirty document seen in the first pass may never commit, and this
// document must stay valid even if it is the only one that does.
//
// Must be invoked outside any write scope so that operations inserted by
// other connections are visible; ordering between two racing validations is
// then resolved by the relative insertion order of their operations.
func (s *ledgerService) IsValid(ctx context.Context, documentID int64) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.validate(ctx, s.ledgerRepo, documentID)
	var invalid *invalidDocumentError
	if errors.As(err, &invalid) {
		logger.Warn("Document is not valid",
			slog.Int64("document_id", documentID),
			slog.String("reason", invalid.reason),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger.Debug("Document is valid", slog.Int64("document_id", documentID))
	return true, nil
}

// validate runs the full decision procedure against q: currency balance law,
// then the account-type law dirty, then clean. The first violation stops the
// procedure; partial application is never permitted.
func (s *ledgerService) validate(ctx context.Context, q portsrepo.LedgerQuerier, documentID int64) error {
	if err := s.currencyBalanceIsValid(ctx, q, documentID); err != nil {
		return err
	}
	if err := s.accountBalanceIsValid(ctx, q, documentID, true); err != nil {
		return err
	}
	return s.accountBalanceIsValid(ctx, q, documentID, false)
}

// currencyBalanceIsValid checks that the document's own operations sum to
// exactly zero in every currency they touch. Balance is per currency, never
// across currencies.
func (s *ledgerService) currencyBalanceIsValid(ctx context.Context, q portsrepo.LedgerQuerier, documentID int64) error {
	totals, err := q.DocumentCurrencyTotals(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to aggregate currency totals for document %d: %w", documentID, err)
	}
	for _, t := range totals {
		if !t.Total.IsZero() {
			return &invalidDocumentError{fmt.Sprintf(
				"document %d has an imbalance of %s on currency %s",
				documentID, t.Total.String(), t.Symbol,
			)}
		}
	}
	return nil
}

// accountBalanceIsValid checks the account-type balance law over the
// projected balances of every (account, currency) pair the document touches.
// Accounts absent from the aggregate trivially satisfy the law.
func (s *ledgerService) accountBalanceIsValid(ctx context.Context, q portsrepo.LedgerQuerier, documentID int64, includeDirty bool) error {
	balances, err := q.DocumentAccountBalances(ctx, documentID, includeDirty)
	if err != nil {
		return fmt.Errorf("failed to aggregate account balances for document %d: %w", documentID, err)
	}
	for _, b := range balances {
		if b.Type.AllowsBalance(b.Balance) {
			continue
		}
		switch b.Type {
		case domain.Active:
			return &invalidDocumentError{fmt.Sprintf(
				"active account %s balance would become less than zero (estimated balance: %s %s)",
				b.Address, b.Balance.String(), b.Symbol,
			)}
		case domain.Passive:
			return &invalidDocumentError{fmt.Sprintf(
				"passive account %s balance would become greater than zero (estimated balance: %s %s)",
				b.Address, b.Balance.String(), b.Symbol,
			)}
		}
	}
	return nil
}

// CreateTransfer moves funds atomically from sender to receiver.
//
// The document and its two operations are inserted inside one write scope
// with an optimistic pre-check; if that fails the scope rolls back and
// nothing persists. Once the scope closes the operations are durably visible
// to every other connection, and the authoritative dirty+clean check runs
// against that fully-visible world before the committed flag is set. Any two
// concurrent transfers that would jointly overdraw an account are guaranteed
// that at least one observes the other's operations during its post-scope
// dirty pass and is rejected. A rejected document is never deleted; it stays
// persisted and uncommitted so concurrent validations keep seeing the attempt.
func (s *ledgerService) CreateTransfer(ctx context.Context, sender, receiver domain.Account, amount decimal.Decimal, currency domain.Currency) (*domain.Document, []domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: transfer amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open write scope: %w", err)
	}

	doc, debit, credit, err := s.buildTransferDocument(ctx, tx, sender, receiver, amount, currency)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, nil, err
	}

	// Optimistic pre-check inside the scope: it only sees our own operations
	// plus already-committed state, so it cannot be authoritative, but it
	// avoids persisting obviously bad documents.
	if err := s.validate(ctx, tx, doc.ID); err != nil {
		_ = tx.Rollback(ctx)
		var invalid *invalidDocumentError
		if errors.As(err, &invalid) {
			logger.Info("Transfer rejected before persist",
				slog.String("sender", sender.Address),
				slog.String("receiver", receiver.Address),
				slog.String("reason", invalid.reason),
			)
			return nil, nil, ErrTransferRejected
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to close write scope: %w", err)
	}

	ok, err := s.IsValid(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		logger.Info("Transfer rejected after persist",
			slog.Int64("document_id", doc.ID),
			slog.String("sender", sender.Address),
			slog.String("receiver", receiver.Address),
		)
		return nil, nil, ErrTransferRejected
	}

	if err := s.ledgerRepo.MarkDocumentCommitted(ctx, doc.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to commit document %d: %w", doc.ID, err)
	}
	doc.Committed = true

	logger.Info("Transfer committed",
		slog.Int64("document_id", doc.ID),
		slog.String("sender", sender.Address),
		slog.String("receiver", receiver.Address),
		slog.String("amount", amount.String()),
		slog.String("currency", currency.Symbol),
	)
	return doc, []domain.Operation{*debit, *credit}, nil
}

// buildTransferDocument creates the document and its debit/credit pair inside
// the open scope.
func (s *ledgerService) buildTransferDocument(ctx context.Context, tx portsrepo.LedgerTx, sender, receiver domain.Account, amount decimal.Decimal, currency domain.Currency) (*domain.Document, *domain.Operation, *domain.Operation, error) {
	doc, err := tx.CreateDocument(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create document: %w", err)
	}
	debit, err := tx.AddOperation(ctx, doc.ID, sender.ID, currency.ID, amount.Neg())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to add debit operation: %w", err)
	}
	credit, err := tx.AddOperation(ctx, doc.ID, receiver.ID, currency.ID, amount)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to add credit operation: %w", err)
	}
	return doc, debit, credit, nil
}

// GetDocumentWithOperations loads a document together with its operations.
func (s *ledgerService) GetDocumentWithOperations(ctx context.Context, documentID int64) (*domain.Document, []domain.Operation, error) {
	doc, err := s.ledgerRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find document %d: %w", documentID, err)
	}
	ops, err := s.ledgerRepo.FindOperationsByDocumentID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load operations of document %d: %w", documentID, err)
	}
	return doc, ops, nil
}
