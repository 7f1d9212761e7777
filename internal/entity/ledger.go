package entity

import "github.com/shopspring/decimal"

// Totals are the cumulative spend/fill counters persisted across runs.
// TotalSpent is whole fiat units (the CLI amount is an integer);
// TotalFilled keeps cent precision.
type Totals struct {
	TotalSpent  int64           `json:"totalSpent"`
	TotalFilled decimal.Decimal `json:"totalFilled"`
}

// PricePoint is one append-only fill record used for the weighted
// average price report. Weight is the executed quote value of the
// fill, Price the realized unit price.
type PricePoint struct {
	Weight decimal.Decimal `json:"weight"`
	Price  decimal.Decimal `json:"price"`
}
