package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusDone.Terminal())
	assert.True(t, OrderStatusRejected.Terminal())

	// statuses the exchange may report that the bot only waits through
	assert.False(t, OrderStatus("open").Terminal())
	assert.False(t, OrderStatus("active").Terminal())
}

func TestOrder_UnitPrice(t *testing.T) {
	order := Order{
		ExecutedValue: decimal.NewFromFloat(99.5),
		FilledSize:    decimal.NewFromFloat(0.002),
	}
	assert.Equal(t, "49750", order.UnitPrice().String())
}

func TestOrder_UnitPrice_NothingFilled(t *testing.T) {
	order := Order{ExecutedValue: decimal.NewFromInt(100)}
	assert.True(t, order.UnitPrice().IsZero())
}
