package entity

import "github.com/shopspring/decimal"

// PaymentMethod is a linked funding source on the exchange account.
type PaymentMethod struct {
	ID   string
	Name string
}

// Deposit is the confirmed result of a deposit request made through a
// payment method. Amount is only trusted when the exchange echoed it
// back in the creation response.
type Deposit struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	PayoutAt string
}
