package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrorKind tags a failed outcome. Business outcomes travel as values, not errors.
type ErrorKind string

const (
	ErrorKindInvalidAmount       ErrorKind = "INVALID_AMOUNT"
	ErrorKindInvalidRequest      ErrorKind = "INVALID_REQUEST"
	ErrorKindAccountNotFound     ErrorKind = "ACCOUNT_NOT_FOUND"
	ErrorKindAccountNotInCache   ErrorKind = "ACCOUNT_NOT_IN_CACHE"
	ErrorKindInsufficientFunds   ErrorKind = "INSUFFICIENT_FUNDS"
	ErrorKindSameAccount         ErrorKind = "SAME_ACCOUNT"
	ErrorKindCurrencyMismatch    ErrorKind = "CURRENCY_MISMATCH"
	ErrorKindTransientStoreFault ErrorKind = "TRANSIENT_STORE_FAULT"
	ErrorKindOptimisticConflict  ErrorKind = "OPTIMISTIC_CONFLICT"
	ErrorKindPermanentFailure    ErrorKind = "PERMANENT_FAILURE"
)

// TransactionResult is the structured outcome of processing a request.
type TransactionResult struct {
	TxID    string            `json:"transaction_id"`
	Status  TransactionStatus `json:"status"`
	Balance *decimal.Decimal  `json:"balance,omitempty"`
	Error   string            `json:"error,omitempty"`
	Kind    ErrorKind         `json:"error_kind,omitempty"`
}

// Failed builds a FAILED outcome that has no persisted record behind it.
func Failed(txID string, kind ErrorKind, msg string) *TransactionResult {
	return &TransactionResult{
		TxID:   txID,
		Status: TransactionStatusFailed,
		Error:  msg,
		Kind:   kind,
	}
}

var (
	// ErrDuplicateTransaction is returned by the store when a record with the
	// same transaction id already exists.
	ErrDuplicateTransaction = errors.New("transaction already exists")
	// ErrOptimisticConflict is returned when a versioned update lost the race.
	ErrOptimisticConflict = errors.New("account version conflict")
	// ErrAlreadyCommitted is returned when a commit finds the record already committed.
	ErrAlreadyCommitted = errors.New("transaction already committed")
	// ErrRecordChanged is returned when a record update finds the row was
	// modified since it was read.
	ErrRecordChanged = errors.New("transaction record changed concurrently")
)
