package service

import (
	"context"
	"time"

	"transaction-service/internal/core/domain"
)

// staleBefore is the cutoff for picking up PENDING records. Anything newer
// may still belong to a live request.
func (s *TransactionServiceImpl) staleBefore(now time.Time) time.Time {
	return now.Add(-s.cfg.ReservationTTL)
}

// Reprocess runs one more attempt for a persisted record. It returns nil when
// the record is gone, committed or not due yet.
func (s *TransactionServiceImpl) Reprocess(ctx context.Context, txID string) *domain.TransactionResult {
	rec, err := s.records.GetByTxID(ctx, txID)
	if err != nil {
		s.log.Error().Err(err).Str("tx_id", txID).Msg("failed to re-read transaction for retry")
		return nil
	}
	if rec == nil {
		return nil
	}

	now := s.now()
	if !rec.IsEligible(now, s.staleBefore(now)) {
		s.log.Debug().Str("tx_id", txID).Str("status", string(rec.Status)).Msg("skipping transaction not due for retry")
		return nil
	}

	s.log.Info().Str("tx_id", txID).Int("retry_count", rec.RetryCount).Msg("retrying transaction")

	if fault := s.checkAccounts(ctx, rec); fault != nil {
		return s.fail(ctx, rec, fault)
	}

	switch s.reserve(ctx, rec) {
	case domain.ReserveOK:
		return s.applyReserved(ctx, rec)
	case domain.ReserveNoAccount:
		return s.fail(ctx, rec, faultf(domain.ErrorKindAccountNotInCache, "account not in cache"))
	case domain.ReserveInsufficientFunds:
		return s.fail(ctx, rec, faultf(domain.ErrorKindInsufficientFunds, "insufficient funds"))
	default:
		return s.applyFallback(ctx, rec)
	}
}

// checkAccounts confirms every account the record touches still exists.
func (s *TransactionServiceImpl) checkAccounts(ctx context.Context, rec *domain.TransactionRecord) *attemptError {
	ids := []int64{}
	if rec.IsTransfer() {
		ids = append(ids, *rec.SourceAccountID, *rec.DestinationAccountID)
	} else if rec.AccountID != nil {
		ids = append(ids, *rec.AccountID)
	}
	if len(ids) == 0 {
		return faultf(domain.ErrorKindAccountNotFound, "transaction has no account")
	}

	for _, id := range ids {
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return faultf(domain.ErrorKindTransientStoreFault, "get account %d: %v", id, err)
		}
		if account == nil {
			return faultf(domain.ErrorKindAccountNotFound, "account %d not found", id)
		}
	}
	return nil
}
