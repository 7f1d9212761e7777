// Package order submits market buys and walks them to a terminal
// state. Insufficient funds is the only rejection worth retrying:
// a deposit may still be settling when the first attempt lands.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cryptodca/stacker/internal/entity"
	"github.com/cryptodca/stacker/pkg/retrier"
)

type exchange interface {
	CreateOrder(ctx context.Context, clientOID, productID, funds string) (entity.Order, error)
	GetOrder(ctx context.Context, orderID string) (entity.Order, error)
}

// errStillPending keeps the fill poller going while the order exists
// but has not reached a terminal state yet.
var errStillPending = errors.New("order not yet done")

// Service places market buys sized in fiat funds.
type Service struct {
	client      exchange
	productID   string
	maxAttempts int
	wait        time.Duration
	l           *zap.Logger
}

// NewService returns a Service retrying up to maxAttempts with wait
// between attempts.
func NewService(l *zap.Logger, client exchange, productID string, maxAttempts int, wait time.Duration) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Service{
		client:      client,
		productID:   productID,
		maxAttempts: maxAttempts,
		wait:        wait,
		l:           l,
	}
}

// PlaceMarketBuy submits a market buy for fiatAmount of quote funds.
// A rejected order is not an error for the caller: the outcome comes
// back with Placed=false and the rejection already logged, once.
func (s *Service) PlaceMarketBuy(ctx context.Context, fiatAmount decimal.Decimal) (entity.OrderOutcome, error) {
	// one client_oid for the whole loop: a rejected create never made
	// an order, so resubmitting under the same id is safe
	clientOID := uuid.NewString()
	funds := fiatAmount.StringFixed(2)

	attempts := 0
	r := retrier.New(
		retrier.WithMaxAttempts(s.maxAttempts),
		retrier.WithInterval(s.wait),
		retrier.WithRetryIf(entity.IsInsufficientFunds),
	)

	placed, err := retrier.DoWithData(r, ctx, func(ctx context.Context) (entity.Order, error) {
		attempts++
		s.l.Info("submitting market buy",
			zap.String("product", s.productID),
			zap.String("funds", funds),
			zap.Int("attempt", attempts))
		return s.client.CreateOrder(ctx, clientOID, s.productID, funds)
	})
	if err != nil {
		// the one error log entry for this placement
		s.l.Error("order placement failed",
			zap.String("product", s.productID),
			zap.String("funds", funds),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return entity.OrderOutcome{Placed: false, Attempts: attempts}, nil
	}

	s.l.Info("order accepted",
		zap.String("order_id", placed.ID),
		zap.String("specified_funds", placed.SpecifiedFunds.String()),
		zap.String("filled_funds", placed.FilledFunds.String()))

	return entity.OrderOutcome{
		Placed:         true,
		Attempts:       attempts,
		OrderID:        placed.ID,
		SpecifiedFunds: placed.SpecifiedFunds,
		FilledFunds:    placed.FilledFunds,
		ExecutedValue:  placed.ExecutedValue,
		FilledSize:     placed.FilledSize,
	}, nil
}

// AwaitFill polls the order until it reaches a terminal state. The
// exchange settles market orders asynchronously and freshly created
// ids can 404 for a moment, so not-found is tolerated the same bounded
// way pending is. Giving up is reported to the caller; it does not
// fail the run.
func (s *Service) AwaitFill(ctx context.Context, orderID string) (entity.Order, error) {
	r := retrier.New(
		retrier.WithMaxAttempts(s.maxAttempts),
		retrier.WithInterval(s.wait),
		retrier.WithRetryIf(func(err error) bool {
			return errors.Is(err, entity.ErrNotFound) || errors.Is(err, errStillPending)
		}),
	)

	settled, err := retrier.DoWithData(r, ctx, func(ctx context.Context) (entity.Order, error) {
		current, err := s.client.GetOrder(ctx, orderID)
		if err != nil {
			return entity.Order{}, err
		}
		if !current.Status.Terminal() {
			return entity.Order{}, errors.Wrapf(errStillPending, "order %s is %s", orderID, current.Status)
		}
		return current, nil
	})
	if err != nil {
		return entity.Order{}, errors.Wrapf(err, "gave up polling order %s", orderID)
	}

	if settled.Status != entity.OrderStatusDone {
		return entity.Order{}, errors.Errorf("order %s ended %s", orderID, settled.Status)
	}

	return settled, nil
}
