package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"transaction-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory ledger with buffered write transactions. Write
// transactions are serialized, which stands in for row locks.
type memLedger struct {
	mu       sync.Mutex
	writer   sync.Mutex
	accounts map[int64]domain.Account
	records  map[string]domain.TransactionRecord
	nextID   int64
	now      func() time.Time

	findFailures int
	brokenCredit map[int64]bool
}

func newMemLedger(now func() time.Time) *memLedger {
	return &memLedger{
		accounts:     make(map[int64]domain.Account),
		records:      make(map[string]domain.TransactionRecord),
		now:          now,
		brokenCredit: make(map[int64]bool),
	}
}

func (l *memLedger) addAccount(id int64, balance, currency string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	amt := decimal.RequireFromString(balance)
	l.accounts[id] = domain.Account{
		ID:               id,
		Currency:         currency,
		Balance:          amt,
		AvailableBalance: amt,
		Version:          1,
		Status:           domain.AccountStatusActive,
	}
}

func (l *memLedger) account(id int64) domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id]
}

func (l *memLedger) record(txID string) (domain.TransactionRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[txID]
	return r, ok
}

func (l *memLedger) recordCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// breakCredit makes ledger credits to id match no row.
func (l *memLedger) breakCredit(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.brokenCredit[id] = true
}

func (l *memLedger) repairCredit(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.brokenCredit, id)
}

func (l *memLedger) failNextFinds(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.findFailures = n
}

// --- transactor ---

type memTransactor struct{ l *memLedger }

func (t memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.l.writer.Lock()
	return &memTx{
		l:        t.l,
		accounts: make(map[int64]domain.Account),
		records:  make(map[string]domain.TransactionRecord),
	}, nil
}

type memTx struct {
	pgx.Tx
	l        *memLedger
	accounts map[int64]domain.Account
	records  map[string]domain.TransactionRecord
	done     bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.l.mu.Lock()
	for id, a := range t.accounts {
		t.l.accounts[id] = a
	}
	for txID, r := range t.records {
		t.l.records[txID] = r
	}
	t.l.mu.Unlock()

	t.done = true
	t.l.writer.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.l.writer.Unlock()
	return nil
}

func (t *memTx) account(id int64) (domain.Account, bool) {
	if a, ok := t.accounts[id]; ok {
		return a, true
	}
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	a, ok := t.l.accounts[id]
	return a, ok
}

// --- accounts ---

type memAccounts struct{ l *memLedger }

func (r memAccounts) Create(ctx context.Context, a *domain.Account) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	a.Version = 1
	r.l.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	a, ok := r.l.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r memAccounts) ListAll(ctx context.Context) ([]domain.Account, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make([]domain.Account, 0, len(r.l.accounts))
	for _, a := range r.l.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccounts) DebitIfAvailable(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error) {
	t := tx.(*memTx)
	a, ok := t.account(id)
	if !ok || !a.CanCover(amount) {
		return nil, nil
	}
	a = a.Debit(amount)
	a.Version++
	t.accounts[id] = a
	return &a, nil
}

func (r memAccounts) Credit(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (*domain.Account, error) {
	t := tx.(*memTx)
	r.l.mu.Lock()
	broken := r.l.brokenCredit[id]
	r.l.mu.Unlock()

	a, ok := t.account(id)
	if !ok || broken {
		return nil, nil
	}
	a = a.Credit(amount)
	a.Version++
	t.accounts[id] = a
	return &a, nil
}

func (r memAccounts) Update(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	t := tx.(*memTx)
	cur, ok := t.account(a.ID)
	if !ok || cur.Version != a.Version {
		return domain.ErrOptimisticConflict
	}
	a.Version++
	t.accounts[a.ID] = *a
	return nil
}

// --- transaction records ---

type memRecords struct{ l *memLedger }

func (r memRecords) Create(ctx context.Context, rec *domain.TransactionRecord) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if _, ok := r.l.records[rec.TxID]; ok {
		return domain.ErrDuplicateTransaction
	}
	r.l.nextID++
	rec.ID = r.l.nextID
	rec.CreatedAt = r.l.now()
	r.l.records[rec.TxID] = *rec
	return nil
}

func (r memRecords) GetByTxID(ctx context.Context, txID string) (*domain.TransactionRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	rec, ok := r.l.records[txID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r memRecords) MarkCommitted(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) error {
	t := tx.(*memTx)
	cur, ok := t.records[rec.TxID]
	if !ok {
		r.l.mu.Lock()
		cur, ok = r.l.records[rec.TxID]
		r.l.mu.Unlock()
	}
	if !ok {
		return errors.New("record not found")
	}
	if cur.Status == domain.TransactionStatusCommitted {
		return domain.ErrAlreadyCommitted
	}
	t.records[rec.TxID] = *rec
	return nil
}

func (r memRecords) UpdateOutcome(ctx context.Context, rec *domain.TransactionRecord, prevRetryCount int) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	cur, ok := r.l.records[rec.TxID]
	if !ok || cur.RetryCount != prevRetryCount || cur.Status == domain.TransactionStatusCommitted {
		return domain.ErrRecordChanged
	}
	r.l.records[rec.TxID] = *rec
	return nil
}

func (r memRecords) FindRetryable(ctx context.Context, now, staleBefore time.Time, limit int) ([]domain.TransactionRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.findFailures > 0 {
		r.l.findFailures--
		return nil, errors.New("connection reset")
	}

	var out []domain.TransactionRecord
	for _, rec := range r.l.records {
		if rec.IsEligible(now, staleBefore) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// countingMetrics records signals for assertions.
type countingMetrics struct {
	mu                 sync.Mutex
	processed          map[domain.TransactionStatus]int
	permanent          map[domain.TransactionType]int
	reconcileAttempts  int
	reconcileFailures  int
	reconcilePermanent int
	warmed             int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		processed: make(map[domain.TransactionStatus]int),
		permanent: make(map[domain.TransactionType]int),
	}
}

func (m *countingMetrics) TransactionProcessed(_ domain.TransactionType, status domain.TransactionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed[status]++
}

func (m *countingMetrics) PermanentFailure(txType domain.TransactionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permanent[txType]++
}

func (m *countingMetrics) ReconcileAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconcileAttempts++
}

func (m *countingMetrics) ReconcileFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconcileFailures++
}

func (m *countingMetrics) ReconcilePermanentFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconcilePermanent++
}

func (m *countingMetrics) CacheWarmed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warmed += n
}

func (m *countingMetrics) permanentFailures(txType domain.TransactionType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permanent[txType]
}
