package entity

import "github.com/shopspring/decimal"

// OrderStatus is the exchange-side order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusDone     OrderStatus = "done"
	OrderStatusRejected OrderStatus = "rejected"
)

// Terminal reports whether the order will not change state anymore.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDone || s == OrderStatusRejected
}

// Order is the exchange's view of a market buy, decoded once at the
// HTTP boundary. Funds fields are quote-currency amounts; FilledSize
// is the base-currency quantity.
type Order struct {
	ID             string
	Status         OrderStatus
	SpecifiedFunds decimal.Decimal
	FilledFunds    decimal.Decimal
	ExecutedValue  decimal.Decimal
	FilledSize     decimal.Decimal
	Settled        bool
}

// UnitPrice is the realized price of the fill, ExecutedValue/FilledSize.
// Zero when nothing filled.
func (o Order) UnitPrice() decimal.Decimal {
	if o.FilledSize.IsZero() {
		return decimal.Zero
	}
	return o.ExecutedValue.Div(o.FilledSize)
}

// OrderOutcome is what the order placement loop hands back to the
// runner. Placed=false means the loop gave up; that ends the run
// normally rather than failing it.
type OrderOutcome struct {
	Placed         bool
	Attempts       int
	OrderID        string
	SpecifiedFunds decimal.Decimal
	FilledFunds    decimal.Decimal
	ExecutedValue  decimal.Decimal
	FilledSize     decimal.Decimal
}
