// Package balance reads the fiat account balance from the exchange.
package balance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cryptodca/stacker/internal/entity"
)

type exchange interface {
	Accounts(ctx context.Context) ([]entity.BalanceSnapshot, error)
}

// Service resolves the available balance of a single fiat currency.
type Service struct {
	client   exchange
	currency string
}

// NewService returns a Service bound to the given fiat currency code.
func NewService(client exchange, currency string) *Service {
	return &Service{client: client, currency: currency}
}

// GetFiatBalance fetches all accounts and returns the snapshot for the
// configured currency. The snapshot is only valid at the instant it
// was fetched; callers re-fetch rather than cache it.
func (s *Service) GetFiatBalance(ctx context.Context) (entity.BalanceSnapshot, error) {
	accounts, err := s.client.Accounts(ctx)
	if err != nil {
		return entity.BalanceSnapshot{}, errors.Wrap(err, "failed to list accounts")
	}

	for _, acc := range accounts {
		if acc.Currency == s.currency {
			return acc, nil
		}
	}

	return entity.BalanceSnapshot{}, errors.Wrapf(entity.ErrNotFound, "no %s account in balance listing", s.currency)
}
