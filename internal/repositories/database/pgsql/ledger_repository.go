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

// PgxLedgerRepository persists documents and operations. The journal is
// append-only: the only in-place mutation anywhere is flipping a document's
// committed flag.
type PgxLedgerRepository struct {
	BaseRepository
}

// NewLedgerRepository creates a new repository for the document/operation journal.
func NewLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) CreateDocument(ctx context.Context) (*domain.Document, error) {
	return createDocument(ctx, r.Pool)
}

func (r *PgxLedgerRepository) AddOperation(ctx context.Context, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error) {
	return addOperation(ctx, r.Pool, documentID, accountID, currencyID, amount)
}

func (r *PgxLedgerRepository) DocumentCurrencyTotals(ctx context.Context, documentID int64) ([]portsrepo.CurrencyTotal, error) {
	return documentCurrencyTotals(ctx, r.Pool, documentID)
}

func (r *PgxLedgerRepository) DocumentAccountBalances(ctx context.Context, documentID int64, includeDirty bool) ([]portsrepo.AccountBalance, error) {
	return documentAccountBalances(ctx, r.Pool, documentID, includeDirty)
}

// Begin opens a read-committed write scope over the journal.
func (r *PgxLedgerRepository) Begin(ctx context.Context) (portsrepo.LedgerTx, error) {
	tx, err := r.BaseRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxLedgerTx{tx: tx}, nil
}

// MarkDocumentCommitted flips the committed flag; the caller is responsible
// for having validated the document first.
func (r *PgxLedgerRepository) MarkDocumentCommitted(ctx context.Context, documentID int64) error {
	query := `UPDATE documents SET committed = TRUE WHERE id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, documentID)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to mark document %d committed", documentID), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("document %d not found", documentID))
	}
	return nil
}

func (r *PgxLedgerRepository) FindDocumentByID(ctx context.Context, documentID int64) (*domain.Document, error) {
	query := `SELECT id, committed, created_at FROM documents WHERE id = $1;`
	var modelDoc models.Document
	err := r.Pool.QueryRow(ctx, query, documentID).Scan(
		&modelDoc.ID,
		&modelDoc.Committed,
		&modelDoc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find document %d", documentID), err)
	}

	domainDoc := mapping.ToDomainDocument(modelDoc)
	return &domainDoc, nil
}

func (r *PgxLedgerRepository) FindOperationsByDocumentID(ctx context.Context, documentID int64) ([]domain.Operation, error) {
	query := `
		SELECT id, document_id, account_id, currency_id, amount
		FROM operations
		WHERE document_id = $1
		ORDER BY id;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to query operations of document %d", documentID), err)
	}
	defer rows.Close()

	modelOps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Operation, error) {
		var op models.Operation
		err := row.Scan(&op.ID, &op.DocumentID, &op.AccountID, &op.CurrencyID, &op.Amount)
		return op, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to scan operations of document %d", documentID), err)
	}

	return mapping.ToDomainOperationSlice(modelOps), nil
}

// pgxLedgerTx adapts a pgx transaction to the LedgerTx port. Queries run
// through it see the scope's own uncommitted rows.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) CreateDocument(ctx context.Context) (*domain.Document, error) {
	return createDocument(ctx, t.tx)
}

func (t *pgxLedgerTx) AddOperation(ctx context.Context, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error) {
	return addOperation(ctx, t.tx, documentID, accountID, currencyID, amount)
}

func (t *pgxLedgerTx) DocumentCurrencyTotals(ctx context.Context, documentID int64) ([]portsrepo.CurrencyTotal, error) {
	return documentCurrencyTotals(ctx, t.tx, documentID)
}

func (t *pgxLedgerTx) DocumentAccountBalances(ctx context.Context, documentID int64, includeDirty bool) ([]portsrepo.AccountBalance, error) {
	return documentAccountBalances(ctx, t.tx, documentID, includeDirty)
}

func (t *pgxLedgerTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

func (t *pgxLedgerTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// The helpers below run against either the pool or an open transaction.

func createDocument(ctx context.Context, q querier) (*domain.Document, error) {
	query := `
		INSERT INTO documents (committed)
		VALUES (FALSE)
		RETURNING id, committed, created_at;
	`
	var modelDoc models.Document
	err := q.QueryRow(ctx, query).Scan(&modelDoc.ID, &modelDoc.Committed, &modelDoc.CreatedAt)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert document", err)
	}

	domainDoc := mapping.ToDomainDocument(modelDoc)
	return &domainDoc, nil
}

func addOperation(ctx context.Context, q querier, documentID, accountID, currencyID int64, amount decimal.Decimal) (*domain.Operation, error) {
	query := `
		INSERT INTO operations (document_id, account_id, currency_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	modelOp := models.Operation{
		DocumentID: documentID,
		AccountID:  accountID,
		CurrencyID: currencyID,
		Amount:     amount,
	}
	err := q.QueryRow(ctx, query, documentID, accountID, currencyID, amount).Scan(&modelOp.ID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to insert operation for document %d", documentID), err)
	}

	domainOp := mapping.ToDomainOperation(modelOp)
	return &domainOp, nil
}

func documentCurrencyTotals(ctx context.Context, q querier, documentID int64) ([]portsrepo.CurrencyTotal, error) {
	query := `
		SELECT c.symbol, COALESCE(SUM(o.amount), 0) AS total
		FROM operations o
		JOIN currencies c ON c.id = o.currency_id
		WHERE o.document_id = $1
		GROUP BY c.symbol;
	`
	rows, err := q.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to aggregate currency totals for document %d", documentID), err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (portsrepo.CurrencyTotal, error) {
		var t portsrepo.CurrencyTotal
		err := row.Scan(&t.Symbol, &t.Total)
		return t, err
	})
}

func documentAccountBalances(ctx context.Context, q querier, documentID int64, includeDirty bool) ([]portsrepo.AccountBalance, error) {
	query := `
		SELECT a.id, a.address, a.type, c.symbol, COALESCE(SUM(o.amount), 0) AS balance
		FROM operations o
		JOIN documents d ON d.id = o.document_id
		JOIN accounts a ON a.id = o.account_id
		JOIN currencies c ON c.id = o.currency_id
		WHERE (o.account_id, o.currency_id) IN (
			SELECT account_id, currency_id FROM operations WHERE document_id = $1
		)
	`
	if !includeDirty {
		query += ` AND (d.committed OR d.id = $1)`
	}
	query += ` GROUP BY a.id, a.address, a.type, c.symbol;`

	rows, err := q.Query(ctx, query, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to aggregate account balances for document %d", documentID), err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (portsrepo.AccountBalance, error) {
		var b portsrepo.AccountBalance
		var accType models.AccountType
		err := row.Scan(&b.AccountID, &b.Address, &accType, &b.Symbol, &b.Balance)
		b.Type = domain.AccountType(accType)
		return b, err
	})
}
