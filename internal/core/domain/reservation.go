package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ReserveResult is the reply of a cache reservation attempt.
type ReserveResult string

const (
	ReserveOK                ReserveResult = "OK"
	ReserveNoAccount         ReserveResult = "NO_ACCOUNT"
	ReserveInsufficientFunds ReserveResult = "INSUFFICIENT_FUNDS"
	ReserveError             ReserveResult = "ERROR"
)

// MinorUnitScale is the number of fractional digits the cache stores.
const MinorUnitScale = 2

// MaxAmount is the exclusive upper bound of a ledger amount (NUMERIC(19,4)).
var MaxAmount = decimal.New(1, 15)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// HasMinorUnitPrecision reports whether amount converts to whole cents exactly.
func HasMinorUnitPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MinorUnitScale))
}

// WithinLedgerRange reports whether |amount| fits the ledger columns.
func WithinLedgerRange(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(MaxAmount)
}

// MustMinorUnits converts amount to cents. A fractional cent or a value
// outside int64 is a programming error and panics.
func MustMinorUnits(amount decimal.Decimal) int64 {
	shifted := amount.Shift(MinorUnitScale)
	if !shifted.IsInteger() || shifted.GreaterThan(maxMinorUnits) || shifted.LessThan(minMinorUnits) {
		panic(fmt.Sprintf("amount %s is not representable in minor units", amount.String()))
	}
	return shifted.IntPart()
}

// FromMinorUnits converts cents back to a decimal amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -MinorUnitScale)
}

// CacheBalance is the cache mirror of an account. Nil fields are absent.
type CacheBalance struct {
	Balance   *decimal.Decimal
	Available *decimal.Decimal
	Currency  string
}
