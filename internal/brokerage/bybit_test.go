package brokerage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/brokerage/pkg/types"
)

func newBybitPerp(price float64) *types.Security {
	security := types.NewSecurity(types.NewSymbol("BTCUSDT", types.SecurityTypeCryptoFuture, types.MarketBybit))
	security.QuoteCurrency = "USDT"
	security.Price.Last = price
	return security
}

func TestBybitModel_SubmitGates(t *testing.T) {
	model := NewBybit(types.AccountTypeMargin, 0)
	security := newBybitPerp(30000)

	ok, event := model.CanSubmitOrder(security, &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 0.5, Type: types.OrderTypeMarket})
	assert.True(t, ok)
	assert.Nil(t, event)

	ok, event = model.CanSubmitOrder(security, &types.Order{ID: 2, Symbol: security.Symbol, Quantity: 0.5, Type: types.OrderTypeMarketOnClose})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeUnsupportedOrder, event.Code)

	fx := types.NewSecurity(types.NewSymbol("EURUSD", types.SecurityTypeForex, types.MarketBybit))
	fx.Price.Last = 1.1
	ok, event = model.CanSubmitOrder(fx, &types.Order{ID: 3, Symbol: fx.Symbol, Quantity: 1000, Type: types.OrderTypeMarket})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeUnsupportedSecurity, event.Code)
}

func TestBybitModel_FilterEnforcement(t *testing.T) {
	model := NewBybit(types.AccountTypeMargin, 0)
	security := newBybitPerp(30000)
	security.Properties.LotSize = 0.01
	security.Properties.MinNotional = 5

	ok, event := model.CanSubmitOrder(security, &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 0.015, Type: types.OrderTypeMarket})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeLotSize, event.Code)

	ok, _ = model.CanSubmitOrder(security, &types.Order{ID: 2, Symbol: security.Symbol, Quantity: 0.02, Type: types.OrderTypeMarket})
	assert.True(t, ok)
}

func TestBybitModel_UpdateAllowsPriceOnly(t *testing.T) {
	model := NewBybit(types.AccountTypeMargin, 0)
	security := newBybitPerp(30000)
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 0.5, Type: types.OrderTypeLimit, LimitPrice: 29000, Status: types.OrderStatusSubmitted}

	newPrice := 28000.0
	ok, event := model.CanUpdateOrder(security, order, &types.OrderUpdate{LimitPrice: &newPrice})
	assert.True(t, ok)
	assert.Nil(t, event)

	newQty := 1.0
	ok, event = model.CanUpdateOrder(security, order, &types.OrderUpdate{Quantity: &newQty})
	assert.False(t, ok)
	require.NotNil(t, event)
	assert.Equal(t, CodeQuantityChange, event.Code)
}

func TestBybitModel_LeverageFromVenueFilter(t *testing.T) {
	security := newBybitPerp(30000)

	// Without a refreshed filter the futures default applies.
	assert.Equal(t, 10.0, NewBybit(types.AccountTypeMargin, 0).Leverage(security))

	// RefreshFilters stores the venue limit on the security.
	security.Leverage = 75
	assert.Equal(t, 75.0, NewBybit(types.AccountTypeMargin, 0).Leverage(security))

	assert.Equal(t, 1.0, NewBybit(types.AccountTypeCash, 0).Leverage(security))
}

func TestFactory_CreateModel(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"default", "default", false},
		{"Binance", "binance", false},
		{"BYBIT", "bybit", false},
		{"fxcm", "fxcm", false},
		{"tradier", "tradier", false},
		{"robinhood", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := factory.CreateModel(tt.name, types.AccountTypeMargin)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, model.Name())
			assert.Equal(t, types.AccountTypeMargin, model.AccountType())
		})
	}
}

func TestModel_AccountTypeThroughInterface(t *testing.T) {
	security := newBybitPerp(30000)
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 0.5, Type: types.OrderTypeMarket}

	var model Model = NewBybit(types.AccountTypeCash, 0)
	assert.Equal(t, types.AccountTypeCash, model.AccountType())

	// FXCM accounts are always margin accounts.
	var fx Model = NewFxcm()
	assert.Equal(t, types.AccountTypeMargin, fx.AccountType())

	ok, _ := model.CanSubmitOrder(security, order)
	assert.True(t, ok)
}
