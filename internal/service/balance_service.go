package service

import (
	"context"
	"fmt"

	"transaction-service/internal/core/domain"
	"transaction-service/internal/core/ports"
	"transaction-service/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	balanceSourceCache  = "cache"
	balanceSourceLedger = "ledger"
)

// BalanceServiceImpl implements ports.BalanceService.
type BalanceServiceImpl struct {
	accounts ports.AccountRepository
	cache    ports.BalanceCache
	log      zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl.
func NewBalanceService(accounts ports.AccountRepository, cache ports.BalanceCache, log zerolog.Logger) *BalanceServiceImpl {
	return &BalanceServiceImpl{accounts: accounts, cache: cache, log: log}
}

// GetBalance serves the cache mirror when it is complete and falls back to
// the ledger otherwise.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, accountID int64) (*domain.BalanceView, error) {
	entry, err := s.cache.GetEntry(ctx, accountID)
	if err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("cache balance read failed, using ledger")
	}
	if entry != nil && entry.Balance != nil && entry.Available != nil {
		return &domain.BalanceView{
			AccountID: accountID,
			Balance:   *entry.Balance,
			Available: *entry.Available,
			Currency:  entry.Currency,
			Source:    balanceSourceCache,
		}, nil
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	return &domain.BalanceView{
		AccountID: account.ID,
		Balance:   account.Balance,
		Available: account.AvailableBalance,
		Currency:  account.Currency,
		Source:    balanceSourceLedger,
	}, nil
}
