package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProcessingConfig tunes the request path.
type ProcessingConfig struct {
	ReservationTTL          time.Duration
	BaseBackoff             time.Duration
	MaxRetries              int
	IdempotencyWaitAttempts int
	IdempotencyWaitInterval time.Duration
}

// DefaultProcessingConfig returns the production defaults.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		ReservationTTL:          30 * time.Second,
		BaseBackoff:             5 * time.Second,
		MaxRetries:              3,
		IdempotencyWaitAttempts: 5,
		IdempotencyWaitInterval: 50 * time.Millisecond,
	}
}

// TransactionServiceImpl implements ports.TransactionProcessor on top of the
// ledger and the balance cache.
type TransactionServiceImpl struct {
	accounts   ports.AccountRepository
	records    ports.TransactionRepository
	cache      ports.BalanceCache
	transactor ports.DBTransactor
	metrics    ports.Metrics
	cfg        ProcessingConfig
	now        func() time.Time
	log        zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl. A nil metrics
// sink discards signals.
func NewTransactionService(
	accounts ports.AccountRepository,
	records ports.TransactionRepository,
	cache ports.BalanceCache,
	transactor ports.DBTransactor,
	metrics ports.Metrics,
	cfg ProcessingConfig,
	log zerolog.Logger,
) *TransactionServiceImpl {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if cfg.IdempotencyWaitAttempts < 1 {
		cfg.IdempotencyWaitAttempts = 1
	}
	return &TransactionServiceImpl{
		accounts:   accounts,
		records:    records,
		cache:      cache,
		transactor: transactor,
		metrics:    metrics,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// attemptError is a failed processing attempt. It ends up on the record,
// never in front of the caller as an error.
type attemptError struct {
	kind domain.ErrorKind
	msg  string
	// final rejects the record without scheduling a retry.
	final bool
}

func (e *attemptError) Error() string { return e.msg }

func faultf(kind domain.ErrorKind, format string, args ...any) *attemptError {
	return &attemptError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func rejectf(kind domain.ErrorKind, format string, args ...any) *attemptError {
	return &attemptError{kind: kind, msg: fmt.Sprintf(format, args...), final: true}
}

// Process applies a debit, credit or transfer exactly once per transaction id.
func (s *TransactionServiceImpl) Process(ctx context.Context, req ports.TransactionRequest) *domain.TransactionResult {
	res := s.process(ctx, req)

	txType := req.Type
	if req.IsTransfer() {
		txType = domain.TransactionTypeTransfer
	}
	s.metrics.TransactionProcessed(txType, res.Status)
	return res
}

func (s *TransactionServiceImpl) process(ctx context.Context, req ports.TransactionRequest) *domain.TransactionResult {
	if strings.TrimSpace(req.TxID) == "" {
		return domain.Failed(req.TxID, domain.ErrorKindInvalidRequest, "transaction id is required")
	}

	existing, err := s.records.GetByTxID(ctx, req.TxID)
	if err != nil {
		s.log.Error().Err(err).Str("tx_id", req.TxID).Msg("idempotency lookup failed")
		return domain.Failed(req.TxID, domain.ErrorKindTransientStoreFault, "transaction lookup failed")
	}
	if existing != nil {
		s.log.Debug().Str("tx_id", req.TxID).Str("status", string(existing.Status)).Msg("returning stored outcome")
		return existing.Result()
	}

	if req.Amount == nil || !req.Amount.IsPositive() || !domain.HasMinorUnitPrecision(*req.Amount) {
		return domain.Failed(req.TxID, domain.ErrorKindInvalidAmount, "amount must be positive with at most two decimal places")
	}
	if !domain.WithinLedgerRange(*req.Amount) {
		return domain.Failed(req.TxID, domain.ErrorKindInvalidAmount, "amount exceeds the ledger limit")
	}

	if req.IsTransfer() {
		return s.processTransfer(ctx, req)
	}
	return s.processSingle(ctx, req)
}

func (s *TransactionServiceImpl) processSingle(ctx context.Context, req ports.TransactionRequest) *domain.TransactionResult {
	if req.AccountID == nil {
		return domain.Failed(req.TxID, domain.ErrorKindInvalidRequest, "account id or source and destination account ids are required")
	}
	if req.Type != domain.TransactionTypeDebit && req.Type != domain.TransactionTypeCredit {
		return domain.Failed(req.TxID, domain.ErrorKindInvalidRequest, fmt.Sprintf("unsupported transaction type %q", req.Type))
	}

	account, err := s.accounts.GetByID(ctx, *req.AccountID)
	if err != nil {
		s.log.Error().Err(err).Str("tx_id", req.TxID).Int64("account_id", *req.AccountID).Msg("account lookup failed")
		return domain.Failed(req.TxID, domain.ErrorKindTransientStoreFault, "account lookup failed")
	}
	if account == nil {
		return domain.Failed(req.TxID, domain.ErrorKindAccountNotFound, "account not found")
	}

	currency, ok := matchCurrency(req.Currency, account.Currency)
	if !ok {
		return domain.Failed(req.TxID, domain.ErrorKindCurrencyMismatch,
			fmt.Sprintf("currency %s does not match account currency %s", req.Currency, account.Currency))
	}

	accountID := account.ID
	rec := &domain.TransactionRecord{
		TxID:             req.TxID,
		AccountID:        &accountID,
		Type:             req.Type,
		Amount:           *req.Amount,
		Currency:         currency,
		Status:           domain.TransactionStatusPending,
		RequestTimestamp: req.Timestamp,
	}
	return s.admit(ctx, rec)
}

// matchCurrency resolves the record currency. An empty request currency
// means the account currency.
func matchCurrency(requested, account string) (string, bool) {
	if requested == "" {
		return account, true
	}
	return account, strings.EqualFold(requested, account)
}

// admit takes the cache hold for a fresh record, persists it and applies it.
func (s *TransactionServiceImpl) admit(ctx context.Context, rec *domain.TransactionRecord) *domain.TransactionResult {
	switch s.reserve(ctx, rec) {
	case domain.ReserveNoAccount:
		return domain.Failed(rec.TxID, domain.ErrorKindAccountNotInCache, "account not in cache")

	case domain.ReserveInsufficientFunds:
		rec.Reject(domain.ErrorKindInsufficientFunds, "insufficient funds", s.now())
		if res := s.create(ctx, rec, false); res != nil {
			return res
		}
		return rec.Result()

	case domain.ReserveOK:
		if res := s.create(ctx, rec, true); res != nil {
			return res
		}
		return s.applyReserved(ctx, rec)

	default:
		if res := s.create(ctx, rec, false); res != nil {
			return res
		}
		return s.applyFallback(ctx, rec)
	}
}

// holdAccount is the account the cache hold is taken on.
func holdAccount(rec *domain.TransactionRecord) int64 {
	if rec.IsTransfer() {
		return *rec.SourceAccountID
	}
	return *rec.AccountID
}

// reserve takes the cache-side hold for rec. A credit holds nothing; it only
// needs the account to be mirrored.
func (s *TransactionServiceImpl) reserve(ctx context.Context, rec *domain.TransactionRecord) domain.ReserveResult {
	accountID := holdAccount(rec)

	if rec.Type == domain.TransactionTypeCredit {
		available, err := s.cache.GetAvailable(ctx, accountID)
		if err != nil {
			s.log.Warn().Err(err).Str("tx_id", rec.TxID).Int64("account_id", accountID).Msg("cache lookup failed, falling back to ledger")
			return domain.ReserveError
		}
		if available == nil {
			return domain.ReserveNoAccount
		}
		return domain.ReserveOK
	}

	result, err := s.cache.Reserve(ctx, accountID, rec.Amount, rec.TxID)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", rec.TxID).Int64("account_id", accountID).Msg("cache reservation failed, falling back to ledger")
		return domain.ReserveError
	}
	return result
}

// release returns the hold taken by reserve.
func (s *TransactionServiceImpl) release(ctx context.Context, rec *domain.TransactionRecord) {
	if rec.Type == domain.TransactionTypeCredit {
		return
	}
	if err := s.cache.Rollback(ctx, holdAccount(rec), rec.Amount, rec.TxID); err != nil {
		s.log.Warn().Err(err).Str("tx_id", rec.TxID).Msg("failed to roll back cache reservation")
	}
}

// settle mirrors a committed ledger mutation into the cache.
func (s *TransactionServiceImpl) settle(ctx context.Context, rec *domain.TransactionRecord) {
	if rec.Type == domain.TransactionTypeCredit {
		if err := s.cache.Credit(ctx, *rec.AccountID, rec.Amount); err != nil {
			s.log.Warn().Err(err).Str("tx_id", rec.TxID).Msg("failed to mirror credit into cache")
		}
		return
	}

	if err := s.cache.Commit(ctx, holdAccount(rec), rec.Amount, rec.TxID); err != nil {
		s.log.Warn().Err(err).Str("tx_id", rec.TxID).Msg("failed to commit cache reservation")
	}
	if rec.IsTransfer() {
		if err := s.cache.Credit(ctx, *rec.DestinationAccountID, rec.Amount); err != nil {
			s.log.Warn().Err(err).Str("tx_id", rec.TxID).Msg("failed to mirror transfer credit into cache")
		}
	}
}

// create persists a fresh record. A non-nil result ends processing; any hold
// taken for rec has been released by then.
func (s *TransactionServiceImpl) create(ctx context.Context, rec *domain.TransactionRecord, held bool) *domain.TransactionResult {
	err := s.records.Create(ctx, rec)
	if err == nil {
		return nil
	}
	if held {
		// The reservation key is per tx id, so a losing duplicate's release
		// also drops the winner's marker. Available stays exact either way.
		s.release(ctx, rec)
	}

	if errors.Is(err, domain.ErrDuplicateTransaction) {
		s.log.Info().Str("tx_id", rec.TxID).Msg("concurrent submission won, waiting for its outcome")
		return s.awaitOutcome(ctx, rec.TxID)
	}

	s.log.Error().Err(err).Str("tx_id", rec.TxID).Msg("failed to persist transaction")
	return domain.Failed(rec.TxID, domain.ErrorKindTransientStoreFault, "failed to persist transaction")
}

// awaitOutcome polls a concurrently admitted record until it leaves PENDING
// or the wait budget runs out.
func (s *TransactionServiceImpl) awaitOutcome(ctx context.Context, txID string) *domain.TransactionResult {
	var last *domain.TransactionRecord
	for attempt := 1; ; attempt++ {
		rec, err := s.records.GetByTxID(ctx, txID)
		if err != nil {
			s.log.Warn().Err(err).Str("tx_id", txID).Msg("failed to read concurrent outcome")
		} else if rec != nil {
			last = rec
			if rec.Status != domain.TransactionStatusPending {
				return rec.Result()
			}
		}

		if attempt >= s.cfg.IdempotencyWaitAttempts || !sleepCtx(ctx, s.cfg.IdempotencyWaitInterval) {
			break
		}
	}

	if last != nil {
		return last.Result()
	}
	return &domain.TransactionResult{TxID: txID, Status: domain.TransactionStatusPending}
}

// storedOutcome returns whatever another writer persisted for txID.
func (s *TransactionServiceImpl) storedOutcome(ctx context.Context, txID string) *domain.TransactionResult {
	rec, err := s.records.GetByTxID(ctx, txID)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", txID).Msg("failed to read stored outcome")
	}
	if rec == nil {
		return &domain.TransactionResult{TxID: txID, Status: domain.TransactionStatusPending}
	}
	return rec.Result()
}

// applyReserved applies a held record to the ledger and settles the hold.
func (s *TransactionServiceImpl) applyReserved(ctx context.Context, rec *domain.TransactionRecord) *domain.TransactionResult {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.release(ctx, rec)
		return s.fail(ctx, rec, faultf(domain.ErrorKindTransientStoreFault, "begin ledger transaction: %v", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	balance, fault := s.mutate(ctx, tx, rec)
	if fault != nil {
		s.release(ctx, rec)
		return s.fail(ctx, rec, fault)
	}

	applied, fault := s.commitLedger(ctx, tx, rec, balance)
	switch {
	case fault != nil:
		s.release(ctx, rec)
		return s.fail(ctx, rec, fault)
	case !applied:
		s.release(ctx, rec)
		return s.storedOutcome(ctx, rec.TxID)
	}

	s.settle(ctx, rec)
	s.log.Info().
		Str("tx_id", rec.TxID).
		Str("type", string(rec.Type)).
		Str("amount", rec.Amount.String()).
		Msg("transaction committed")
	return rec.Result()
}

// mutate runs the conditional ledger update for rec inside tx and returns
// the balance reported back to the caller.
func (s *TransactionServiceImpl) mutate(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) (*decimal.Decimal, *attemptError) {
	if rec.IsTransfer() {
		return s.mutateTransfer(ctx, tx, rec)
	}

	if rec.Type == domain.TransactionTypeDebit {
		account, err := s.accounts.DebitIfAvailable(ctx, tx, *rec.AccountID, rec.Amount)
		if err != nil {
			return nil, faultf(domain.ErrorKindTransientStoreFault, "debit account: %v", err)
		}
		if account == nil {
			return nil, faultf(domain.ErrorKindInsufficientFunds, "insufficient funds or concurrent modification")
		}
		return &account.Balance, nil
	}

	account, err := s.accounts.Credit(ctx, tx, *rec.AccountID, rec.Amount)
	if err != nil {
		return nil, faultf(domain.ErrorKindTransientStoreFault, "credit account: %v", err)
	}
	if account == nil {
		return nil, faultf(domain.ErrorKindAccountNotFound, "credit failed: account not found")
	}
	return &account.Balance, nil
}

// commitLedger marks rec COMMITTED inside tx and commits tx. applied is false
// when another writer already committed the record; tx is then left for the
// caller's rollback.
func (s *TransactionServiceImpl) commitLedger(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord, balance *decimal.Decimal) (bool, *attemptError) {
	committed := *rec
	committed.MarkCommitted(balance, s.now())

	if err := s.records.MarkCommitted(ctx, tx, &committed); err != nil {
		if errors.Is(err, domain.ErrAlreadyCommitted) {
			s.log.Info().Str("tx_id", rec.TxID).Msg("transaction already committed elsewhere")
			return false, nil
		}
		return false, faultf(domain.ErrorKindTransientStoreFault, "mark transaction committed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, faultf(domain.ErrorKindTransientStoreFault, "commit ledger transaction: %v", err)
	}

	*rec = committed
	return true, nil
}

// fail records a failed attempt on rec. Retryable faults schedule the next
// attempt until the retry budget is spent; the permanent failure is signalled
// once, by the writer that persisted it.
func (s *TransactionServiceImpl) fail(ctx context.Context, rec *domain.TransactionRecord, fault *attemptError) *domain.TransactionResult {
	prevRetries := rec.RetryCount
	now := s.now()

	permanent := false
	if fault.final {
		rec.Reject(fault.kind, fault.msg, now)
	} else {
		permanent = rec.RecordFailure(fault.kind, fault.msg, now, s.cfg.MaxRetries, s.cfg.BaseBackoff)
	}

	if err := s.records.UpdateOutcome(ctx, rec, prevRetries); err != nil {
		if errors.Is(err, domain.ErrRecordChanged) {
			s.log.Info().Str("tx_id", rec.TxID).Msg("transaction changed concurrently, returning stored outcome")
			return s.storedOutcome(ctx, rec.TxID)
		}
		s.log.Error().Err(err).Str("tx_id", rec.TxID).Msg("failed to persist transaction failure")
		return rec.Result()
	}

	switch {
	case permanent:
		s.metrics.PermanentFailure(rec.Type)
		s.log.Error().
			Str("tx_id", rec.TxID).
			Int("retry_count", rec.RetryCount).
			Str("error", fault.msg).
			Msg("transaction permanently failed")
	case rec.NextAttemptAt != nil:
		s.log.Warn().
			Str("tx_id", rec.TxID).
			Int("retry_count", rec.RetryCount).
			Time("next_attempt_at", *rec.NextAttemptAt).
			Str("error", fault.msg).
			Msg("transaction failed, retry scheduled")
	default:
		s.log.Info().Str("tx_id", rec.TxID).Str("error", fault.msg).Msg("transaction rejected")
	}
	return rec.Result()
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
