package ports

import (
	"context"
	"time"

	"transaction-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// AccountRepository defines persistence operations for ledger accounts.
// Methods accepting pgx.Tx run inside the caller's database transaction.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	ListAll(ctx context.Context) ([]domain.Account, error)
	// DebitIfAvailable subtracts amount from balance and available balance only
	// when available >= amount. Returns nil when no row matched.
	DebitIfAvailable(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error)
	// Credit adds amount to balance and available balance. Returns nil when the
	// account does not exist.
	Credit(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error)
	// Update writes balances guarded by the account version and returns
	// domain.ErrOptimisticConflict when the version moved.
	Update(ctx context.Context, tx pgx.Tx, account *domain.Account) error
}

// TransactionRepository defines persistence operations for transaction records.
type TransactionRepository interface {
	// Create inserts a new record and fills in its ID and CreatedAt. Returns
	// domain.ErrDuplicateTransaction when the tx id is taken.
	Create(ctx context.Context, record *domain.TransactionRecord) error
	GetByTxID(ctx context.Context, txID string) (*domain.TransactionRecord, error)
	// MarkCommitted persists the COMMITTED outcome inside tx. Returns
	// domain.ErrAlreadyCommitted when another writer got there first.
	MarkCommitted(ctx context.Context, tx pgx.Tx, record *domain.TransactionRecord) error
	// UpdateOutcome persists a FAILED outcome. prevRetryCount is the retry
	// count the caller read; domain.ErrRecordChanged is returned if it moved
	// or the record was committed meanwhile.
	UpdateOutcome(ctx context.Context, record *domain.TransactionRecord, prevRetryCount int) error
	// FindRetryable lists records the reconciler may pick up, oldest first.
	FindRetryable(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.TransactionRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
