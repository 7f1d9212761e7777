package coinbase

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/cryptodca/stacker/internal/entity"
)

// Wire shapes of the exchange REST API. Decoded once here; everything
// past this package works with entity types.

type accountResponse struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Hold      string `json:"hold"`
}

type paymentMethodResponse struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

func (p paymentMethodResponse) toEntity() entity.PaymentMethod {
	return entity.PaymentMethod{ID: p.ID, Name: p.Name}
}

type depositRequest struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethodID string `json:"payment_method_id"`
}

type depositResponse struct {
	ID       string `json:"id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	PayoutAt string `json:"payout_at"`
}

type orderRequest struct {
	ClientOID string `json:"client_oid,omitempty"`
	Type      string `json:"type"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
	Funds     string `json:"funds"`
}

type orderResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	SpecifiedFunds string `json:"specified_funds"`
	Funds          string `json:"funds"`
	FilledSize     string `json:"filled_size"`
	ExecutedValue  string `json:"executed_value"`
	Settled        bool   `json:"settled"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (o orderResponse) toEntity() (entity.Order, error) {
	order := entity.Order{
		ID:      o.ID,
		Status:  entity.OrderStatus(o.Status),
		Settled: o.Settled,
	}

	var err error
	if order.SpecifiedFunds, err = parseAmount(o.SpecifiedFunds); err != nil {
		return entity.Order{}, errors.Wrap(err, "bad specified_funds")
	}
	if order.FilledFunds, err = parseAmount(o.Funds); err != nil {
		return entity.Order{}, errors.Wrap(err, "bad funds")
	}
	if order.FilledSize, err = parseAmount(o.FilledSize); err != nil {
		return entity.Order{}, errors.Wrap(err, "bad filled_size")
	}
	if order.ExecutedValue, err = parseAmount(o.ExecutedValue); err != nil {
		return entity.Order{}, errors.Wrap(err, "bad executed_value")
	}

	return order, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// insufficientFunds matches the one rejection message the order loop
// may retry on.
func insufficientFunds(message string) bool {
	return strings.Contains(strings.ToLower(message), "insufficient funds")
}
