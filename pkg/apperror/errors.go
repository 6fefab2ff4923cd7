package apperror

import (
	"fmt"
	"net/http"

	"transaction-service/internal/core/domain"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Transaction Processing (TXN) ----

func ErrInvalidAmount() *AppError {
	return New("TXN_001", "Invalid amount", http.StatusBadRequest)
}

func ErrInvalidRequest() *AppError {
	return New("TXN_002", "Invalid transaction request", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("TXN_003", "Insufficient funds", http.StatusBadRequest)
}

func ErrSameAccount() *AppError {
	return New("TXN_004", "Source and destination accounts must differ", http.StatusBadRequest)
}

func ErrCurrencyMismatch() *AppError {
	return New("TXN_005", "Currency does not match account currency", http.StatusBadRequest)
}

func ErrPermanentFailure() *AppError {
	return New("TXN_006", "Transaction permanently failed", http.StatusBadRequest)
}

func ErrRetryScheduled() *AppError {
	return New("TXN_007", "Transaction failed, retry scheduled", http.StatusBadRequest)
}

func ErrConcurrentUpdate() *AppError {
	return New("TXN_008", "Concurrent account update, retry scheduled", http.StatusBadRequest)
}

// ---- Accounts (ACC) ----

func ErrNotFound(entity string) *AppError {
	return New("ACC_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAccountNotCached() *AppError {
	return New("ACC_002", "Account not available in balance cache", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrCacheUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Balance cache unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a TXN_002-style validation error.
func Validation(message string) *AppError {
	return New("TXN_002", message, http.StatusBadRequest)
}

// FromKind maps a failed processing outcome to its client-facing error.
// Unknown kinds map to InternalError.
func FromKind(kind domain.ErrorKind) *AppError {
	switch kind {
	case domain.ErrorKindInvalidAmount:
		return ErrInvalidAmount()
	case domain.ErrorKindInvalidRequest:
		return ErrInvalidRequest()
	case domain.ErrorKindInsufficientFunds:
		return ErrInsufficientFunds()
	case domain.ErrorKindSameAccount:
		return ErrSameAccount()
	case domain.ErrorKindCurrencyMismatch:
		return ErrCurrencyMismatch()
	case domain.ErrorKindPermanentFailure:
		return ErrPermanentFailure()
	case domain.ErrorKindTransientStoreFault:
		return ErrRetryScheduled()
	case domain.ErrorKindOptimisticConflict:
		return ErrConcurrentUpdate()
	case domain.ErrorKindAccountNotFound:
		return ErrNotFound("account")
	case domain.ErrorKindAccountNotInCache:
		return ErrAccountNotCached()
	}
	return InternalError(fmt.Errorf("unknown error kind %q", kind))
}
