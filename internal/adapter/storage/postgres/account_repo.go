package postgres

import (
	"context"
	"errors"
	"fmt"

	"transaction-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, account_number, currency, balance, available_balance, version, status,
	COALESCE(created_by, ''), created_at, COALESCE(updated_by, ''), updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.AccountNumber, &a.Currency, &a.Balance, &a.AvailableBalance,
		&a.Version, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedBy, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new account and fills in its generated ID.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (account_number, currency, balance, available_balance, version, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $6)
		RETURNING id, version, created_at, updated_at`

	if a.Status == "" {
		a.Status = domain.AccountStatusActive
	}

	err := r.pool.QueryRow(ctx, query,
		a.AccountNumber, a.Currency, a.Balance, a.AvailableBalance, a.Status, a.CreatedBy,
	).Scan(&a.ID, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by id. Returns nil, nil when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// ListAll returns every account ordered by id.
func (r *AccountRepo) ListAll(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// DebitIfAvailable is the ledger's serialization point for debits: the
// sufficiency check and the decrement happen in one conditional UPDATE.
func (r *AccountRepo) DebitIfAvailable(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error) {
	query := `UPDATE accounts
		SET balance = balance - $2, available_balance = available_balance - $2,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND available_balance >= $2
		RETURNING ` + accountColumns

	a, err := scanAccount(tx.QueryRow(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("debit account: %w", err)
	}
	return a, nil
}

// Credit adds amount to the account.
func (r *AccountRepo) Credit(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error) {
	query := `UPDATE accounts
		SET balance = balance + $2, available_balance = available_balance + $2,
			version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	a, err := scanAccount(tx.QueryRow(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("credit account: %w", err)
	}
	return a, nil
}

// Update writes the account balances if the stored version still matches
// a.Version. On success a.Version is advanced.
func (r *AccountRepo) Update(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `UPDATE accounts
		SET balance = $2, available_balance = $3, version = version + 1,
			updated_by = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1 AND version = $4`

	tag, err := tx.Exec(ctx, query, a.ID, a.Balance, a.AvailableBalance, a.Version, a.UpdatedBy)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOptimisticConflict
	}
	a.Version++
	return nil
}
