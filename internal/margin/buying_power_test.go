package margin

import (
	"math"
	"testing"

	"github.com/quantfold/brokerage/pkg/types"
)

func newSecurity(price, holdings float64) *types.Security {
	security := types.NewSecurity(types.NewSymbol("BTCUSDT", types.SecurityTypeCrypto, types.MarketBinance))
	security.Price.Last = price
	security.Holdings = holdings
	return security
}

func TestMargin_RequiredMargin(t *testing.T) {
	model := NewMargin(10)

	tests := []struct {
		name     string
		price    float64
		holdings float64
		quantity float64
		want     float64
	}{
		{"open long", 100, 0, 1, 10},
		{"add to long", 100, 1, 1, 10},
		{"open short", 100, 0, -2, 20},
		{"reduce long releases margin", 100, 10, -5, -50},
		{"flat close releases everything", 100, 10, -10, -100},
		{"flip short past flat", 100, 1, -3, 10}, // |-2|*100*0.1 - |1|*100*0.1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			security := newSecurity(tt.price, tt.holdings)
			order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity}
			got := model.RequiredMargin(security, order)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RequiredMargin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMargin_HasSufficientBuyingPower(t *testing.T) {
	model := NewMargin(10)
	portfolio := types.Portfolio{Cash: 100, AccountType: types.AccountTypeMargin}

	tests := []struct {
		name     string
		holdings float64
		quantity float64
		want     bool
	}{
		{"within buying power", 0, 5, true},   // need 50
		{"exactly at the limit", 0, 10, true}, // need 100
		{"beyond the limit", 0, 11, false},    // need 110
		{"closing always passes", 50, -50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			security := newSecurity(100, tt.holdings)
			order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: tt.quantity}
			got, reason := model.HasSufficientBuyingPower(portfolio, security, order)
			if got != tt.want {
				t.Errorf("HasSufficientBuyingPower() = %v (%s), want %v", got, reason, tt.want)
			}
			if !got && reason == "" {
				t.Error("rejection should carry a reason")
			}
		})
	}
}

func TestMargin_MaxOrderQuantityForTargetValue(t *testing.T) {
	model := NewMargin(10)
	portfolio := types.Portfolio{Cash: 100, AccountType: types.AccountTypeMargin}

	security := newSecurity(100, 0)
	if got := model.MaxOrderQuantityForTargetValue(portfolio, security, 500); got != 5 {
		t.Errorf("unlevered target = %v, want 5", got)
	}
	// Target beyond buying power is capped at cash * leverage = 1000.
	if got := model.MaxOrderQuantityForTargetValue(portfolio, security, 5000); got != 10 {
		t.Errorf("capped target = %v, want 10", got)
	}
	// Negative target sizes a sell.
	if got := model.MaxOrderQuantityForTargetValue(portfolio, security, -500); got != -5 {
		t.Errorf("sell target = %v, want -5", got)
	}

	// Lot rounding truncates toward zero.
	security.Properties.LotSize = 0.3
	got := model.MaxOrderQuantityForTargetValue(portfolio, security, 500)
	if math.Abs(got-4.8) > 1e-9 {
		t.Errorf("lot-rounded target = %v, want 4.8", got)
	}
}

func TestMargin_ContractMultiplierScalesNotional(t *testing.T) {
	model := NewMargin(10)
	portfolio := types.Portfolio{Cash: 1000, AccountType: types.AccountTypeMargin}

	security := newSecurity(100, 0)
	security.Properties.ContractMultiplier = 10

	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 1}
	// One contract controls 10 * 100 of notional at 10x leverage.
	if got := model.RequiredMargin(security, order); math.Abs(got-100) > 1e-9 {
		t.Errorf("RequiredMargin() = %v, want 100", got)
	}

	// The notional budget is divided by the per-contract value.
	if got := model.MaxOrderQuantityForTargetValue(portfolio, security, 5000); got != 5 {
		t.Errorf("MaxOrderQuantityForTargetValue() = %v, want 5", got)
	}
}

func TestMargin_LiquidationPrice(t *testing.T) {
	model := NewMargin(10)

	long := model.LiquidationPrice(100, true)
	want := 100 * (1 - 0.1) / (1 - 0.05)
	if math.Abs(long-want) > 1e-9 {
		t.Errorf("long liquidation = %v, want %v", long, want)
	}

	short := model.LiquidationPrice(100, false)
	wantShort := 100 * (1 + 0.1) / (1 + 0.05)
	if math.Abs(short-wantShort) > 1e-9 {
		t.Errorf("short liquidation = %v, want %v", short, wantShort)
	}

	if spot := NewMargin(1).LiquidationPrice(100, true); spot != 0 {
		t.Errorf("unlevered liquidation = %v, want 0", spot)
	}
}

func TestCash_RejectsShorts(t *testing.T) {
	model := NewCash()
	portfolio := types.Portfolio{Cash: 10000, AccountType: types.AccountTypeCash}

	security := newSecurity(100, 0)
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: -1}
	ok, reason := model.HasSufficientBuyingPower(portfolio, security, order)
	if ok {
		t.Error("cash account should reject a short sale")
	}
	if reason == "" {
		t.Error("rejection should carry a reason")
	}

	// Selling down to flat is fine.
	security.Holdings = 5
	sellAll := &types.Order{ID: 2, Symbol: security.Symbol, Quantity: -5}
	if ok, _ := model.HasSufficientBuyingPower(portfolio, security, sellAll); !ok {
		t.Error("selling an existing position should pass")
	}
}

func TestCash_SpendsSettledCashOnly(t *testing.T) {
	model := NewCash()
	portfolio := types.Portfolio{Cash: 100, UnsettledCash: 400, AccountType: types.AccountTypeCash}
	security := newSecurity(100, 0)

	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 2} // needs 200
	ok, _ := model.HasSufficientBuyingPower(portfolio, security, order)
	if ok {
		t.Error("unsettled cash should not fund a cash-account purchase")
	}

	if got := model.MaxOrderQuantityForTargetValue(portfolio, security, 1000); got != 1 {
		t.Errorf("max quantity = %v, want 1 (settled cash only)", got)
	}
}

func TestMargin_UnsettledCashCounts(t *testing.T) {
	model := NewMargin(2)
	portfolio := types.Portfolio{Cash: 100, UnsettledCash: 100, AccountType: types.AccountTypeMargin}
	security := newSecurity(100, 0)

	// Need 100 margin for 2 units at 2x; settled+unsettled covers it.
	order := &types.Order{ID: 1, Symbol: security.Symbol, Quantity: 2}
	if ok, reason := model.HasSufficientBuyingPower(portfolio, security, order); !ok {
		t.Errorf("expected pass, got rejection: %s", reason)
	}
}
