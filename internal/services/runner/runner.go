// Package runner orchestrates one DCA purchase: balance check,
// conditional bank top-up, market buy with bounded retry, ledger
// update. Strictly sequential; nothing below calls back up.
package runner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cryptodca/stacker/config"
	"github.com/cryptodca/stacker/internal/entity"
)

type balancer interface {
	GetFiatBalance(ctx context.Context) (entity.BalanceSnapshot, error)
}

type funder interface {
	RequestDeposit(ctx context.Context, amount decimal.Decimal) (entity.Deposit, error)
}

type orderer interface {
	PlaceMarketBuy(ctx context.Context, fiatAmount decimal.Decimal) (entity.OrderOutcome, error)
	AwaitFill(ctx context.Context, orderID string) (entity.Order, error)
}

type ledgerstore interface {
	RecordFill(spent int64, filled decimal.Decimal) (entity.Totals, error)
	RecordPrice(weight, price decimal.Decimal) error
}

// Runner is the single control-flow component of a run.
type Runner struct {
	cfg     *config.Config
	balance balancer
	funding funder
	orders  orderer
	ledger  ledgerstore
	l       *zap.Logger
}

// New wires the runner with its four collaborators.
func New(l *zap.Logger, cfg *config.Config, balance balancer, funding funder, orders orderer, ledger ledgerstore) *Runner {
	return &Runner{
		cfg:     cfg,
		balance: balance,
		funding: funding,
		orders:  orders,
		ledger:  ledger,
		l:       l,
	}
}

// Run executes one purchase of target fiat units. A failed deposit or
// a rejected order ends the run normally; configuration and balance
// errors abort it.
func (r *Runner) Run(ctx context.Context, target decimal.Decimal) error {
	snapshot, err := r.balance.GetFiatBalance(ctx)
	if err != nil {
		return errors.Wrap(err, "balance check failed")
	}

	r.l.Info("fiat balance",
		zap.String("currency", snapshot.Currency),
		zap.String("available", snapshot.Display().String()),
		zap.Time("fetched_at", snapshot.FetchedAt),
		zap.String("target", target.StringFixed(2)))

	if target.GreaterThan(snapshot.Available) {
		if err := r.topUp(ctx, target, snapshot.Available); err != nil {
			return err
		}
	}

	outcome, err := r.orders.PlaceMarketBuy(ctx, target)
	if err != nil {
		return errors.Wrap(err, "order placement failed")
	}
	if !outcome.Placed {
		// already logged by the order service; the run ends normally
		r.l.Info("run finished without a fill", zap.Int("attempts", outcome.Attempts))
		return nil
	}

	totals, err := r.ledger.RecordFill(target.IntPart(), outcome.FilledFunds)
	if err != nil {
		return errors.Wrap(err, "failed to record fill")
	}

	r.l.Info("fill recorded",
		zap.String("order_id", outcome.OrderID),
		zap.String("specified_funds", outcome.SpecifiedFunds.String()),
		zap.String("filled_funds", outcome.FilledFunds.String()),
		zap.Int64("total_spent", totals.TotalSpent),
		zap.String("total_filled", totals.TotalFilled.String()))

	if r.cfg.RecordPriceHistory {
		r.recordPrice(ctx, outcome)
	}

	return nil
}

// topUp requests a deposit covering the gap between target and the
// available balance. The gap is rounded up to the next cent so the
// order is never underfunded by sub-cent truncation.
func (r *Runner) topUp(ctx context.Context, target, available decimal.Decimal) error {
	need := target.Sub(available).RoundUp(2)

	if r.cfg.BankDepositAmount.LessThan(need) {
		r.l.Warn("deposit amount too low, skipping deposit",
			zap.String("needed", need.String()),
			zap.String("bank_deposit_amount", r.cfg.BankDepositAmount.String()))
		return nil
	}

	amount := need.Mul(r.cfg.BankDepositMultiplier)

	deposit, err := r.funding.RequestDeposit(ctx, amount)
	if err != nil {
		var cfgErr *entity.ConfigError
		if errors.As(err, &cfgErr) {
			return err
		}
		// non-fatal: the order attempt below may still succeed once
		// pending funds settle
		r.l.Error("deposit failed", zap.Error(err))
		return nil
	}

	r.l.Info("deposit requested",
		zap.String("deposit_id", deposit.ID),
		zap.String("amount", deposit.Amount.String()),
		zap.String("payout_at", deposit.PayoutAt))

	return nil
}

// recordPrice appends the weight/price record for the weighted average
// report. With polling enabled the realized numbers come from the
// settled order; otherwise from the creation response, which may not
// carry an executed size yet.
func (r *Runner) recordPrice(ctx context.Context, outcome entity.OrderOutcome) {
	weight := outcome.ExecutedValue
	price := decimal.Zero
	if !outcome.FilledSize.IsZero() {
		price = outcome.ExecutedValue.Div(outcome.FilledSize)
	}

	if r.cfg.PollOrderStatus {
		settled, err := r.orders.AwaitFill(ctx, outcome.OrderID)
		if err != nil {
			r.l.Error("order polling gave up, price not recorded", zap.Error(err))
			return
		}
		weight = settled.ExecutedValue
		price = settled.UnitPrice()
	}

	if weight.IsZero() || price.IsZero() {
		r.l.Warn("no executed value in order response, price not recorded",
			zap.String("order_id", outcome.OrderID))
		return
	}

	if err := r.ledger.RecordPrice(weight, price); err != nil {
		r.l.Error("failed to record price", zap.Error(err))
		return
	}

	r.l.Info("price recorded",
		zap.String("weight", weight.String()),
		zap.String("price", price.String()))
}
