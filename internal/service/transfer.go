package service

import (
	"context"
	"fmt"

	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *TransactionServiceImpl) processTransfer(ctx context.Context, req ports.TransactionRequest) *domain.TransactionResult {
	srcID, dstID := *req.SourceAccountID, *req.DestinationAccountID
	if srcID == dstID {
		return domain.Failed(req.TxID, domain.ErrorKindSameAccount, "source and destination cannot be the same account")
	}

	source, dest, err := s.loadPair(ctx, srcID, dstID)
	if err != nil {
		s.log.Error().Err(err).Str("tx_id", req.TxID).Msg("transfer account lookup failed")
		return domain.Failed(req.TxID, domain.ErrorKindTransientStoreFault, "account lookup failed")
	}
	if source == nil || dest == nil {
		return domain.Failed(req.TxID, domain.ErrorKindAccountNotFound, "source or destination account not found")
	}

	if source.Currency != dest.Currency {
		return domain.Failed(req.TxID, domain.ErrorKindCurrencyMismatch,
			fmt.Sprintf("source currency %s does not match destination currency %s", source.Currency, dest.Currency))
	}
	currency, ok := matchCurrency(req.Currency, source.Currency)
	if !ok {
		return domain.Failed(req.TxID, domain.ErrorKindCurrencyMismatch,
			fmt.Sprintf("currency %s does not match account currency %s", req.Currency, source.Currency))
	}

	rec := &domain.TransactionRecord{
		TxID:                 req.TxID,
		SourceAccountID:      &srcID,
		DestinationAccountID: &dstID,
		Type:                 domain.TransactionTypeTransfer,
		Amount:               *req.Amount,
		Currency:             currency,
		Status:               domain.TransactionStatusPending,
		RequestTimestamp:     req.Timestamp,
	}
	return s.admit(ctx, rec)
}

func (s *TransactionServiceImpl) loadPair(ctx context.Context, srcID, dstID int64) (*domain.Account, *domain.Account, error) {
	source, err := s.accounts.GetByID(ctx, srcID)
	if err != nil {
		return nil, nil, fmt.Errorf("get source account: %w", err)
	}
	dest, err := s.accounts.GetByID(ctx, dstID)
	if err != nil {
		return nil, nil, fmt.Errorf("get destination account: %w", err)
	}
	return source, dest, nil
}

// mutateTransfer debits the source and credits the destination in the same
// ledger transaction, so the pair lands or rolls back together.
func (s *TransactionServiceImpl) mutateTransfer(ctx context.Context, tx pgx.Tx, rec *domain.TransactionRecord) (*decimal.Decimal, *attemptError) {
	source, err := s.accounts.DebitIfAvailable(ctx, tx, *rec.SourceAccountID, rec.Amount)
	if err != nil {
		return nil, faultf(domain.ErrorKindTransientStoreFault, "debit source account: %v", err)
	}
	if source == nil {
		return nil, faultf(domain.ErrorKindInsufficientFunds, "insufficient funds or concurrent modification")
	}

	dest, err := s.accounts.Credit(ctx, tx, *rec.DestinationAccountID, rec.Amount)
	if err != nil {
		return nil, faultf(domain.ErrorKindTransientStoreFault, "credit destination account: %v", err)
	}
	if dest == nil {
		return nil, faultf(domain.ErrorKindAccountNotFound, "credit failed: destination account not found")
	}
	return &source.Balance, nil
}
