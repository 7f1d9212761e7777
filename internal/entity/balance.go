package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the fiat balance observed at a single instant.
// It carries no staleness guarantee; re-fetch if time has passed.
type BalanceSnapshot struct {
	Currency  string
	Available decimal.Decimal
	FetchedAt time.Time
}

// Display returns the balance rounded to cents for log output.
// Arithmetic always uses the full-precision Available value.
func (s BalanceSnapshot) Display() decimal.Decimal {
	return s.Available.Round(2)
}
