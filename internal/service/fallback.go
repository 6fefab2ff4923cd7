package service

import (
	"context"
	"errors"

	"transaction-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// applyFallback applies rec against the ledger alone, guarded by account
// versions. Used when the cache cannot be reached; the cache is not touched.
func (s *TransactionServiceImpl) applyFallback(ctx context.Context, rec *domain.TransactionRecord) *domain.TransactionResult {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return s.fail(ctx, rec, faultf(domain.ErrorKindTransientStoreFault, "begin ledger transaction: %v", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		balance *decimal.Decimal
		fault   *attemptError
	)
	if rec.IsTransfer() {
		balance, fault = s.versionedTransfer(ctx, tx, rec)
	} else {
		balance, fault = s.versionedSingle(ctx, tx, rec)
	}
	if fault != nil {
		return s.fail(ctx, rec, fault)
	}

	applied, fault := s.commitLedger(ctx, tx, rec, balance)
	switch {
	case fault != nil:
		return s.fail(ctx, rec, fault)
	case !applied:
		return s.storedOutcome(ctx, rec.TxID)
	}

	s.log.Info().
		Str("tx_id", rec.TxID).
		Str("type", string(rec.Type)).
		Str("amount", rec.Amount.String()).
		Msg("transaction committed on ledger fallback")
	return rec.Result()
}

func (s *TransactionServiceImpl) versionedSingle(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) (*decimal.Decimal, *attemptError) {
	account, err := s.accounts.GetByID(ctx, *rec.AccountID)
	if err != nil {
		return nil, faultf(domain.ErrorKindTransientStoreFault, "get account: %v", err)
	}
	if account == nil {
		return nil, faultf(domain.ErrorKindAccountNotFound, "account not found")
	}

	var next domain.Account
	if rec.Type == domain.TransactionTypeDebit {
		if !account.CanCover(rec.Amount) {
			return nil, rejectf(domain.ErrorKindInsufficientFunds, "insufficient funds")
		}
		next = account.Debit(rec.Amount)
	} else {
		next = account.Credit(rec.Amount)
	}

	if err := s.accounts.Update(ctx, tx, &next); err != nil {
		return nil, versionFault(err)
	}
	return &next.Balance, nil
}

func (s *TransactionServiceImpl) versionedTransfer(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) (*decimal.Decimal, *attemptError) {
	source, dest, err := s.loadPair(ctx, *rec.SourceAccountID, *rec.DestinationAccountID)
	if err != nil {
		return nil, faultf(domain.ErrorKindTransientStoreFault, "%v", err)
	}
	if source == nil || dest == nil {
		return nil, faultf(domain.ErrorKindAccountNotFound, "source or destination account not found")
	}
	if !source.CanCover(rec.Amount) {
		return nil, rejectf(domain.ErrorKindInsufficientFunds, "insufficient funds")
	}

	debited := source.Debit(rec.Amount)
	credited := dest.Credit(rec.Amount)
	if err := s.accounts.Update(ctx, tx, &debited); err != nil {
		return nil, versionFault(err)
	}
	if err := s.accounts.Update(ctx, tx, &credited); err != nil {
		return nil, versionFault(err)
	}
	return &debited.Balance, nil
}

func versionFault(err error) *attemptError {
	if errors.Is(err, domain.ErrOptimisticConflict) {
		return faultf(domain.ErrorKindOptimisticConflict, "optimistic lock conflict")
	}
	return faultf(domain.ErrorKindTransientStoreFault, "update account: %v", err)
}
