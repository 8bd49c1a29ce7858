package brokerage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/brokerage/pkg/types"
)

func newEquity(ticker string, price float64) *types.Security {
	security := types.NewSecurity(types.NewSymbol(ticker, types.SecurityTypeEquity, types.MarketTradier))
	security.Price.Last = price
	return security
}

func TestTradierModel_SecurityTypeGate(t *testing.T) {
	model := NewTradier(types.AccountTypeMargin)

	crypto := types.NewSecurity(types.NewSymbol("BTCUSD", types.SecurityTypeCrypto, types.MarketTradier))
	crypto.Price.Last = 30000
	order := &types.Order{ID: 1, Symbol: crypto.Symbol, Quantity: 1, Type: types.OrderTypeMarket}

	ok, event := model.CanSubmitOrder(crypto, order)
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeUnsupportedSecurity, event.Code)
}

func TestTradierModel_RejectsFractionalShares(t *testing.T) {
	model := NewTradier(types.AccountTypeMargin)
	security := newEquity("AAPL", 190)

	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 1.5, Type: types.OrderTypeMarket}
	ok, event := model.CanSubmitOrder(security, order)
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeFractionalQuantity, event.Code)

	order.Quantity = 2
	ok, _ = model.CanSubmitOrder(security, order)
	assert.True(t, ok)
}

func TestTradierModel_RejectsGtcMarketOrders(t *testing.T) {
	model := NewTradier(types.AccountTypeMargin)
	security := newEquity("AAPL", 190)

	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 10, Type: types.OrderTypeMarket, TimeInForce: types.TimeInForceGTC}
	ok, event := model.CanSubmitOrder(security, order)
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeGtcMarket, event.Code)

	order.TimeInForce = types.TimeInForceDay
	ok, _ = model.CanSubmitOrder(security, order)
	assert.True(t, ok)

	// GTC limit orders are fine.
	limit := &types.Order{ID: 2, Symbol: security.Symbol, Quantity: 10, Type: types.OrderTypeLimit, LimitPrice: 185, TimeInForce: types.TimeInForceGTC}
	ok, _ = model.CanSubmitOrder(security, limit)
	assert.True(t, ok)
}

func TestTradierModel_SubDollarShortRule(t *testing.T) {
	model := NewTradier(types.AccountTypeMargin)

	tests := []struct {
		name     string
		price    float64
		holdings float64
		quantity float64
		accepted bool
	}{
		{"short a sub-dollar stock", 0.45, 0, -100, false},
		{"short a normal stock", 12.50, 0, -100, true},
		{"sell an existing sub-dollar position", 0.45, 100, -100, true},
		{"sell into a net short on sub-dollar", 0.45, 50, -100, false},
		{"buy a sub-dollar stock", 0.45, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			security := newEquity("PENNY", tt.price)
			security.Holdings = tt.holdings
			order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity, Type: types.OrderTypeMarket}

			ok, event := model.CanSubmitOrder(security, order)
			assert.Equal(t, tt.accepted, ok)
			if !tt.accepted {
				require.NotNil(t, event)
				assert.Equal(t, CodeShortSubDollar, event.Code)
			}
		})
	}
}

func TestTradierModel_UpdateRules(t *testing.T) {
	model := NewTradier(types.AccountTypeMargin)
	security := newEquity("AAPL", 190)
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 10, Type: types.OrderTypeLimit, LimitPrice: 185, Status: types.OrderStatusSubmitted}

	newType := types.OrderTypeMarket
	ok, event := model.CanUpdateOrder(security, order, &types.OrderUpdate{Type: &newType})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeOrderTypeChange, event.Code)

	fractional := 10.5
	ok, event = model.CanUpdateOrder(security, order, &types.OrderUpdate{Quantity: &fractional})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeFractionalQuantity, event.Code)

	whole := 20.0
	ok, event = model.CanUpdateOrder(security, order, &types.OrderUpdate{Quantity: &whole})
	assert.True(t, ok)
	assert.Nil(t, event)
}

func TestTradierModel_Leverage(t *testing.T) {
	equity := newEquity("AAPL", 190)
	option := types.NewSecurity(types.NewSymbol("AAPL240119C00190000", types.SecurityTypeOption, types.MarketTradier))

	assert.Equal(t, 2.0, NewTradier(types.AccountTypeMargin).Leverage(equity))
	assert.Equal(t, 1.0, NewTradier(types.AccountTypeCash).Leverage(equity))
	assert.Equal(t, 1.0, NewTradier(types.AccountTypeMargin).Leverage(option))
}
