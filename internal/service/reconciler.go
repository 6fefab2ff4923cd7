package service

import (
	"context"
	"fmt"
	"time"

	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"

	"github.com/rs/zerolog"
)

const reconcileLockKey = "reconcile"

// ReconcilerConfig tunes the background warm-up and retry sweep.
type ReconcilerConfig struct {
	Interval    time.Duration
	BatchSize   int
	LockEnabled bool
	LockTTL     time.Duration
	FullResync  bool
	// MaxRetries and BaseBackoff bound retries of the sweep query itself.
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultReconcilerConfig returns the production defaults.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Interval:    30 * time.Second,
		BatchSize:   100,
		LockEnabled: true,
		LockTTL:     25 * time.Second,
		MaxRetries:  3,
		BaseBackoff: 5 * time.Second,
	}
}

// Reconciler keeps the cache mirror populated and re-drives failed or stuck
// transactions.
type Reconciler struct {
	processor *TransactionServiceImpl
	accounts  ports.AccountRepository
	records   ports.TransactionRepository
	cache     ports.BalanceCache
	lock      ports.DistributedLock
	metrics   ports.Metrics
	cfg       ReconcilerConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewReconciler creates a Reconciler. lock may be nil, which disables fencing.
func NewReconciler(
	processor *TransactionServiceImpl,
	accounts ports.AccountRepository,
	records ports.TransactionRepository,
	cache ports.BalanceCache,
	lock ports.DistributedLock,
	metrics ports.Metrics,
	cfg ReconcilerConfig,
	log zerolog.Logger,
) *Reconciler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultReconcilerConfig().BatchSize
	}
	return &Reconciler{
		processor: processor,
		accounts:  accounts,
		records:   records,
		cache:     cache,
		lock:      lock,
		metrics:   metrics,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// Run ticks until ctx is done. The returned channel closes once the loop has
// stopped.
func (r *Reconciler) Run(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})
	r.log.Info().Dur("interval", r.cfg.Interval).Int("batch_size", r.cfg.BatchSize).Msg("reconciler started")

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Info().Msg("reconciler stopped")
				return
			case <-ticker.C:
				r.Tick(ctx)
			}
		}
	}()

	return stopped
}

// Tick runs one warm-up and one sweep, fenced by the distributed lock when
// enabled. It returns false when another instance held the lock. When the
// lock itself cannot be reached the cache is down too, so the warm-up is
// skipped and the sweep runs unfenced on the ledger guards.
func (r *Reconciler) Tick(ctx context.Context) bool {
	if r.lock != nil && r.cfg.LockEnabled {
		token, acquired, err := r.lock.TryLock(ctx, reconcileLockKey, r.cfg.LockTTL)
		if err != nil {
			r.log.Warn().Err(err).Msg("reconcile lock unavailable, sweeping unfenced")
			r.Sweep(ctx)
			return true
		}
		if !acquired {
			r.log.Debug().Msg("reconcile lock held elsewhere, skipping tick")
			return false
		}
		defer func() {
			if _, err := r.lock.Unlock(context.WithoutCancel(ctx), reconcileLockKey, token); err != nil {
				r.log.Warn().Err(err).Msg("failed to release reconcile lock")
			}
		}()
	}

	if _, err := r.WarmCache(ctx); err != nil {
		r.log.Warn().Err(err).Msg("cache warm-up failed")
	}
	r.Sweep(ctx)
	return true
}

// WarmCache copies ledger balances into the cache for every account that has
// no complete mirror entry, or for all accounts when FullResync is set. It
// returns the number of accounts written.
func (r *Reconciler) WarmCache(ctx context.Context) (int, error) {
	accounts, err := r.accounts.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list accounts: %w", err)
	}

	warmed := 0
	for _, a := range accounts {
		if !r.cfg.FullResync {
			entry, err := r.cache.GetEntry(ctx, a.ID)
			if err != nil {
				r.metrics.CacheWarmed(warmed)
				return warmed, fmt.Errorf("read cache entry for account %d: %w", a.ID, err)
			}
			if entry != nil && entry.Balance != nil && entry.Available != nil {
				continue
			}
		}

		balance, available := a.Balance, a.AvailableBalance
		if err := r.cache.PopulateBalance(ctx, a.ID, &balance, &available, a.Currency); err != nil {
			r.log.Warn().Err(err).Int64("account_id", a.ID).Msg("failed to populate cache balance")
			continue
		}
		warmed++
	}

	r.metrics.CacheWarmed(warmed)
	if warmed > 0 {
		r.log.Info().Int("accounts", warmed).Bool("full_resync", r.cfg.FullResync).Msg("cache warmed from ledger")
	}
	return warmed, nil
}

// Sweep re-drives every eligible record once, oldest first, and returns how
// many records produced an outcome. A failing candidate query is retried with
// backoff up to MaxRetries times.
func (r *Reconciler) Sweep(ctx context.Context) int {
	batch, ok := r.findCandidates(ctx)
	if !ok {
		return 0
	}

	processed := 0
	for _, rec := range batch {
		if ctx.Err() != nil {
			break
		}
		res := r.processor.Reprocess(ctx, rec.TxID)
		if res == nil {
			continue
		}
		processed++
		r.log.Debug().Str("tx_id", res.TxID).Str("status", string(res.Status)).Msg("retry outcome")
	}

	if processed > 0 {
		r.log.Info().Int("candidates", len(batch)).Int("processed", processed).Msg("reconcile sweep finished")
	}
	return processed
}

func (r *Reconciler) findCandidates(ctx context.Context) ([]domain.TransactionRecord, bool) {
	for attempt := 1; ; attempt++ {
		r.metrics.ReconcileAttempt()

		now := r.now()
		batch, err := r.records.FindRetryable(ctx, now, r.processor.staleBefore(now), r.cfg.BatchSize)
		if err == nil {
			return batch, true
		}

		r.metrics.ReconcileFailure()
		if attempt >= r.cfg.MaxRetries {
			r.metrics.ReconcilePermanentFailure()
			r.log.Error().Err(err).Int("attempts", attempt).Msg("reconcile sweep gave up")
			return nil, false
		}

		wait := domain.NextAttempt(now, attempt, r.cfg.BaseBackoff).Sub(now)
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("reconcile sweep query failed")
		if !sleepCtx(ctx, wait) {
			return nil, false
		}
	}
}
