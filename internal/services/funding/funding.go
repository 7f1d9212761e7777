// Package funding tops up the fiat account from a linked bank.
package funding

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cryptodca/stacker/internal/entity"
)

type exchange interface {
	PaymentMethods(ctx context.Context) ([]entity.PaymentMethod, error)
	CreateDeposit(ctx context.Context, methodID, amount, currency string) (entity.Deposit, error)
}

// Service requests deposits through the payment method whose display
// name contains the configured bank identifier.
type Service struct {
	client         exchange
	bankIdentifier string
	currency       string
	l              *zap.Logger
}

// NewService returns a Service matching payment methods against
// bankIdentifier as a substring.
func NewService(l *zap.Logger, client exchange, bankIdentifier, currency string) *Service {
	return &Service{
		client:         client,
		bankIdentifier: bankIdentifier,
		currency:       currency,
		l:              l,
	}
}

// RequestDeposit deposits amount (rounded to cents) from the matched
// bank. A missing bank match is a configuration error and fatal;
// anything upstream is a deposit failure the caller may ignore.
func (s *Service) RequestDeposit(ctx context.Context, amount decimal.Decimal) (entity.Deposit, error) {
	method, err := s.findPaymentMethod(ctx)
	if err != nil {
		return entity.Deposit{}, err
	}

	s.l.Info("requesting deposit",
		zap.String("bank", method.Name),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("currency", s.currency))

	deposit, err := s.client.CreateDeposit(ctx, method.ID, amount.Round(2).StringFixed(2), s.currency)
	if err != nil {
		return entity.Deposit{}, errors.Wrap(err, "deposit request failed")
	}

	return deposit, nil
}

func (s *Service) findPaymentMethod(ctx context.Context) (entity.PaymentMethod, error) {
	methods, err := s.client.PaymentMethods(ctx)
	if err != nil {
		return entity.PaymentMethod{}, errors.Wrap(err, "failed to list payment methods")
	}

	for _, m := range methods {
		if strings.Contains(m.Name, s.bankIdentifier) {
			return m, nil
		}
	}

	return entity.PaymentMethod{}, entity.NewConfigError("no payment method matches bank identifier %q", s.bankIdentifier)
}
