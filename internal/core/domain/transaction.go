package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDebit    TransactionType = "DEBIT"
	TransactionTypeCredit   TransactionType = "CREDIT"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDebit, TransactionTypeCredit, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCommitted TransactionStatus = "COMMITTED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// TransactionRecord is the durable ledger entry and the idempotency anchor.
// Exactly one record exists per TxID.
type TransactionRecord struct {
	ID                   int64             `json:"id"`
	TxID                 string            `json:"tx_id"`
	AccountID            *int64            `json:"account_id,omitempty"`
	SourceAccountID      *int64            `json:"source_account_id,omitempty"`
	DestinationAccountID *int64            `json:"destination_account_id,omitempty"`
	Type                 TransactionType   `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	Currency             string            `json:"currency"`
	Status               TransactionStatus `json:"status"`
	RetryCount           int               `json:"retry_count"`
	NextAttemptAt        *time.Time        `json:"next_attempt_at,omitempty"`
	Error                *string           `json:"error,omitempty"`
	ErrorKind            ErrorKind         `json:"error_kind,omitempty"`
	BalanceAfter         *decimal.Decimal  `json:"balance_after,omitempty"`
	RequestTimestamp     *time.Time        `json:"request_timestamp,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	ProcessedAt          *time.Time        `json:"processed_at,omitempty"`
}

// IsTransfer reports whether the record moves money between two accounts.
func (r *TransactionRecord) IsTransfer() bool {
	return r.SourceAccountID != nil && r.DestinationAccountID != nil
}

// IsTerminal returns true once no further processing will happen:
// committed, or failed with nothing scheduled.
func (r *TransactionRecord) IsTerminal() bool {
	switch r.Status {
	case TransactionStatusCommitted:
		return true
	case TransactionStatusFailed:
		return r.NextAttemptAt == nil
	}
	return false
}

// IsEligible reports whether the reconciler may pick the record up at now.
// PENDING records must be older than staleBefore so a live request is not
// raced.
func (r *TransactionRecord) IsEligible(now, staleBefore time.Time) bool {
	switch r.Status {
	case TransactionStatusPending:
		if r.CreatedAt.After(staleBefore) {
			return false
		}
		return r.NextAttemptAt == nil || !r.NextAttemptAt.After(now)
	case TransactionStatusFailed:
		return r.NextAttemptAt != nil && !r.NextAttemptAt.After(now)
	}
	return false
}

// MarkCommitted moves the record to COMMITTED.
func (r *TransactionRecord) MarkCommitted(balanceAfter *decimal.Decimal, now time.Time) {
	r.Status = TransactionStatusCommitted
	r.BalanceAfter = balanceAfter
	r.NextAttemptAt = nil
	r.Error = nil
	r.ErrorKind = ""
	r.ProcessedAt = &now
}

// Reject marks the record FAILED without scheduling a retry. Used for business
// rejections that a retry cannot fix.
func (r *TransactionRecord) Reject(kind ErrorKind, msg string, now time.Time) {
	r.Status = TransactionStatusFailed
	r.Error = &msg
	r.ErrorKind = kind
	r.NextAttemptAt = nil
	r.ProcessedAt = &now
}

// RecordFailure marks the record FAILED, bumps the retry count and either
// schedules the next attempt or, once maxRetries is reached, clears the
// schedule. It reports whether the record is now permanently failed.
func (r *TransactionRecord) RecordFailure(kind ErrorKind, msg string, now time.Time, maxRetries int, base time.Duration) bool {
	r.Status = TransactionStatusFailed
	r.RetryCount++
	r.ProcessedAt = &now

	if r.RetryCount >= maxRetries {
		msg = fmt.Sprintf("permanent failure after %d attempts: %s", r.RetryCount, msg)
		r.Error = &msg
		r.ErrorKind = ErrorKindPermanentFailure
		r.NextAttemptAt = nil
		return true
	}

	next := NextAttempt(now, r.RetryCount, base)
	r.Error = &msg
	r.ErrorKind = kind
	r.NextAttemptAt = &next
	return false
}

// Result builds the caller-facing outcome persisted on the record.
func (r *TransactionRecord) Result() *TransactionResult {
	res := &TransactionResult{
		TxID:    r.TxID,
		Status:  r.Status,
		Balance: r.BalanceAfter,
		Kind:    r.ErrorKind,
	}
	if r.Error != nil {
		res.Error = *r.Error
	}
	return res
}
