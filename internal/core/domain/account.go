package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus represents the lifecycle state of a ledger account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account is the ledger-owned balance holder. The ledger is authoritative for
// both balance and available balance; Version is bumped on every write.
type Account struct {
	ID               int64           `json:"id"`
	AccountNumber    string          `json:"account_number"`
	Currency         string          `json:"currency"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Version          int64           `json:"version"`
	Status           AccountStatus   `json:"status"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedBy        string          `json:"updated_by,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CanCover reports whether the available balance covers amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(amount)
}

// Debit returns a copy of the account with amount removed from both balances.
// The caller must have checked CanCover.
func (a Account) Debit(amount decimal.Decimal) Account {
	a.Balance = a.Balance.Sub(amount)
	a.AvailableBalance = a.AvailableBalance.Sub(amount)
	return a
}

// Credit returns a copy of the account with amount added to both balances.
func (a Account) Credit(amount decimal.Decimal) Account {
	a.Balance = a.Balance.Add(amount)
	a.AvailableBalance = a.AvailableBalance.Add(amount)
	return a
}

// BalanceView is the read model returned by balance lookups.
type BalanceView struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"` // "cache" or "ledger"
}
