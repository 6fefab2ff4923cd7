package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transaction-service/internal/core/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const transactionColumns = `id, tx_id, account_id, source_account_id, destination_account_id, type, amount, currency,
	status, retry_count, next_attempt_at, error, error_kind, balance_after, request_timestamp, created_at, processed_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

func scanTransaction(row pgx.Row) (*domain.TransactionRecord, error) {
	rec := &domain.TransactionRecord{}
	var kind *string
	err := row.Scan(
		&rec.ID, &rec.TxID, &rec.AccountID, &rec.SourceAccountID, &rec.DestinationAccountID,
		&rec.Type, &rec.Amount, &rec.Currency, &rec.Status, &rec.RetryCount, &rec.NextAttemptAt,
		&rec.Error, &kind, &rec.BalanceAfter, &rec.RequestTimestamp, &rec.CreatedAt, &rec.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	if kind != nil {
		rec.ErrorKind = domain.ErrorKind(*kind)
	}
	return rec, nil
}

func nullableKind(k domain.ErrorKind) *string {
	if k == "" {
		return nil
	}
	s := string(k)
	return &s
}

// Create inserts a record. The UNIQUE constraint on tx_id is what makes
// admission idempotent; a violation maps to domain.ErrDuplicateTransaction.
func (r *TransactionRepo) Create(ctx context.Context, rec *domain.TransactionRecord) error {
	query := `INSERT INTO transactions (tx_id, account_id, source_account_id, destination_account_id, type, amount,
			currency, status, retry_count, next_attempt_at, error, error_kind, balance_after, request_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		rec.TxID, rec.AccountID, rec.SourceAccountID, rec.DestinationAccountID, rec.Type, rec.Amount,
		rec.Currency, rec.Status, rec.RetryCount, rec.NextAttemptAt, rec.Error, nullableKind(rec.ErrorKind),
		rec.BalanceAfter, rec.RequestTimestamp,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByTxID fetches a record by its client transaction id. Returns nil, nil when absent.
func (r *TransactionRepo) GetByTxID(ctx context.Context, txID string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tx_id = $1`

	rec, err := scanTransaction(r.pool.QueryRow(ctx, query, txID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by tx id: %w", err)
	}
	return rec, nil
}

// MarkCommitted persists the COMMITTED outcome in the same database
// transaction as the balance mutation. The status guard means a second
// writer cannot commit the same record twice.
func (r *TransactionRepo) MarkCommitted(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) error {
	query := `UPDATE transactions
		SET status = $2, balance_after = $3, next_attempt_at = NULL, error = NULL, error_kind = NULL,
			processed_at = $4
		WHERE id = $1 AND status <> 'COMMITTED'`

	tag, err := tx.Exec(ctx, query, rec.ID, domain.TransactionStatusCommitted, rec.BalanceAfter, rec.ProcessedAt)
	if err != nil {
		return fmt.Errorf("mark transaction committed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyCommitted
	}
	return nil
}

// UpdateOutcome persists a FAILED outcome guarded by the retry count the
// caller observed, so two reconcilers cannot both count the same attempt.
func (r *TransactionRepo) UpdateOutcome(ctx context.Context, rec *domain.TransactionRecord, prevRetryCount int) error {
	query := `UPDATE transactions
		SET status = $2, retry_count = $3, next_attempt_at = $4, error = $5, error_kind = $6, processed_at = $7
		WHERE id = $1 AND retry_count = $8 AND status <> 'COMMITTED'`

	tag, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Status, rec.RetryCount, rec.NextAttemptAt, rec.Error, nullableKind(rec.ErrorKind),
		rec.ProcessedAt, prevRetryCount,
	)
	if err != nil {
		return fmt.Errorf("update transaction outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordChanged
	}
	return nil
}

// FindRetryable lists PENDING records older than staleBefore that are not
// scheduled in the future, plus FAILED records whose retry is due. FAILED
// records without a schedule are terminal and never returned.
func (r *TransactionRepo) FindRetryable(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE (status = 'PENDING' AND created_at <= $2 AND (next_attempt_at IS NULL OR next_attempt_at <= $1))
		   OR (status = 'FAILED' AND next_attempt_at IS NOT NULL AND next_attempt_at <= $1)
		ORDER BY created_at ASC, id ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, now, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("find retryable transactions: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}
