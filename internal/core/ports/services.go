package ports

import (
	"context"
	"time"

	"transaction-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// BalanceCache is the cache-side reservation protocol over the balance mirror.
type BalanceCache interface {
	// Reserve atomically checks and decrements the cached available balance
	// and records a reservation. Transport faults yield domain.ReserveError
	// together with the cause.
	Reserve(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) (domain.ReserveResult, error)
	// Commit applies a reserved amount to the cached balance and drops the reservation.
	Commit(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) error
	// Rollback returns a reserved amount to the cached available balance and
	// drops the reservation. Callers invoke it at most once per tx id.
	Rollback(ctx context.Context, accountID int64, amount decimal.Decimal, txID string) error
	// Credit adds amount to both cached balances of an account already in the
	// mirror. A missing account is left alone.
	Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	GetBalance(ctx context.Context, accountID int64) (*decimal.Decimal, error)
	GetAvailable(ctx context.Context, accountID int64) (*decimal.Decimal, error)
	GetEntry(ctx context.Context, accountID int64) (*domain.CacheBalance, error)
	// PopulateBalance overwrites the mirror. Nil values and an empty currency
	// remove the field.
	PopulateBalance(ctx context.Context, accountID int64, balance, available *decimal.Decimal, currency string) error
}

// DistributedLock is a lease-based mutual exclusion primitive shared across instances.
type DistributedLock interface {
	// TryLock returns the owner token when the lock was acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	// Unlock releases the lock only when token still owns it.
	Unlock(ctx context.Context, key, token string) (bool, error)
}

// Metrics receives processing signals. Implementations must be safe for
// concurrent use.
type Metrics interface {
	TransactionProcessed(txType domain.TransactionType, status domain.TransactionStatus)
	PermanentFailure(txType domain.TransactionType)
	ReconcileAttempt()
	ReconcileFailure()
	ReconcilePermanentFailure()
	CacheWarmed(accounts int)
}

// --- Service Ports (Business Logic) ---

// TransactionProcessor applies debit, credit and transfer requests.
type TransactionProcessor interface {
	// Process never returns an error; every fault is folded into the result.
	Process(ctx context.Context, req TransactionRequest) *domain.TransactionResult
}

// TransactionRequest holds input for transaction processing.
type TransactionRequest struct {
	TxID                 string
	Amount               *decimal.Decimal
	Currency             string
	Type                 domain.TransactionType
	AccountID            *int64
	SourceAccountID      *int64
	DestinationAccountID *int64
	Timestamp            *time.Time
}

// IsTransfer reports whether both transfer legs are present.
func (r TransactionRequest) IsTransfer() bool {
	return r.SourceAccountID != nil && r.DestinationAccountID != nil
}

// BalanceService serves balance reads.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID int64) (*domain.BalanceView, error)
}
