package fees

import (
	"math"
	"testing"

	"github.com/quantfold/brokerage/pkg/types"
)

func newCryptoSecurity(price float64) *types.Security {
	security := types.NewSecurity(types.NewSymbol("BTCUSDT", types.SecurityTypeCrypto, types.MarketBinance))
	security.QuoteCurrency = "USDT"
	security.Price.Last = price
	return security
}

func TestPercent_TakerOnMarketOrders(t *testing.T) {
	model := NewBinanceSpot()
	security := newCryptoSecurity(30000)
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 0.5, Type: types.OrderTypeMarket}

	fee := model.Fee(security, order)
	want := 0.5 * 30000 * 0.001
	if math.Abs(fee.Value-want) > 1e-9 {
		t.Errorf("Fee() = %v, want %v", fee.Value, want)
	}
	if fee.Currency != "USDT" {
		t.Errorf("Fee currency = %q, want USDT", fee.Currency)
	}
}

func TestPercent_MakerOnRestingLimits(t *testing.T) {
	model := NewBinanceFutures() // 2 bps maker / 5 bps taker
	security := newCryptoSecurity(30000)

	tests := []struct {
		name     string
		quantity float64
		limit    float64
		wantRate float64
	}{
		{"resting buy limit pays maker", 1, 29000, 0.0002},
		{"marketable buy limit pays taker", 1, 31000, 0.0005},
		{"resting sell limit pays maker", -1, 31000, 0.0002},
		{"marketable sell limit pays taker", -1, 29000, 0.0005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity, Type: types.OrderTypeLimit, LimitPrice: tt.limit}
			fee := model.Fee(security, order)
			want := math.Abs(tt.quantity) * tt.limit * tt.wantRate
			if math.Abs(fee.Value-want) > 1e-9 {
				t.Errorf("Fee() = %v, want %v", fee.Value, want)
			}
		})
	}
}

func TestPerShare_AppliesMinimum(t *testing.T) {
	model := NewPerShare(0.35, 5)
	security := types.NewSecurity(types.NewSymbol("SPY240119C00475000", types.SecurityTypeOption, types.MarketTradier))

	tests := []struct {
		name     string
		quantity float64
		want     float64
	}{
		{"below minimum", 10, 5}, // 3.50 floors to the 5.00 minimum
		{"above minimum", 100, 35},
		{"short side uses abs", -100, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity, Type: types.OrderTypeLimit, LimitPrice: 2.5}
			fee := model.Fee(security, order)
			if fee.Value != tt.want {
				t.Errorf("Fee() = %v, want %v", fee.Value, tt.want)
			}
		})
	}
}

func TestFxPerLot_RoundsPartialLotsUp(t *testing.T) {
	model := NewFxcm()
	security := types.NewSecurity(types.NewSymbol("EURUSD", types.SecurityTypeForex, types.MarketFXCM))
	security.QuoteCurrency = "USD"

	tests := []struct {
		quantity float64
		want     float64
	}{
		{1000, 0.04},
		{2000, 0.08},
		{2500, 0.12}, // 2.5 lots round up to 3
		{-5000, 0.20},
	}

	for _, tt := range tests {
		order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity, Type: types.OrderTypeMarket}
		fee := model.Fee(security, order)
		if math.Abs(fee.Value-tt.want) > 1e-9 {
			t.Errorf("Fee(%v) = %v, want %v", tt.quantity, fee.Value, tt.want)
		}
	}
}

func TestTradier_FreeEquitiesPaidOptions(t *testing.T) {
	model := NewTradier()

	equity := types.NewSecurity(types.NewSymbol("AAPL", types.SecurityTypeEquity, types.MarketTradier))
	equity.Price.Last = 190
	equityOrder := &types.Order{ID: 1, Symbol: equity.Symbol, Quantity: 100, Type: types.OrderTypeMarket}
	if fee := model.Fee(equity, equityOrder); fee.Value != 0 {
		t.Errorf("equity fee = %v, want 0", fee.Value)
	}

	option := types.NewSecurity(types.NewSymbol("AAPL240119C00190000", types.SecurityTypeOption, types.MarketTradier))
	optionOrder := &types.Order{ID: 2, Symbol: option.Symbol, Quantity: 20, Type: types.OrderTypeLimit, LimitPrice: 3.2}
	if fee := model.Fee(option, optionOrder); fee.Value != 7 {
		t.Errorf("option fee = %v, want 7", fee.Value)
	}
}

func TestForCrypto_PicksSchedule(t *testing.T) {
	spot := NewBybitSpot()
	futures := NewBybitFutures()

	if got := ForCrypto(types.SecurityTypeCrypto, spot, futures); got != spot {
		t.Error("spot security should use the spot schedule")
	}
	if got := ForCrypto(types.SecurityTypeCryptoFuture, spot, futures); got != futures {
		t.Error("futures security should use the futures schedule")
	}
}
