// Package fees computes order fees for the brokerage models. Each model
// returns the fee a broker would charge for executing a given order against
// a given security.
package fees

import (
	"math"

	"github.com/quantfold/brokerage/pkg/types"
)

// Fee is a computed charge in a concrete currency.
type Fee struct {
	Value    float64
	Currency string
}

// Model computes the fee for one order.
type Model interface {
	Fee(security *types.Security, order *types.Order) Fee
}

// Constant charges a flat fee per order regardless of size.
type Constant struct {
	Amount   float64
	Currency string
}

// NewConstant creates a flat fee model in USD.
func NewConstant(amount float64) *Constant {
	return &Constant{Amount: amount, Currency: "USD"}
}

func (c *Constant) Fee(security *types.Security, order *types.Order) Fee {
	return Fee{Value: c.Amount, Currency: c.Currency}
}

// Percent charges a fraction of the order notional, with separate maker and
// taker rates. An order pays the maker rate only when it rests: a limit order
// that is not marketable at the current price.
type Percent struct {
	MakerRate float64
	TakerRate float64
}

// NewPercent creates a maker/taker percentage fee model. Rates are fractions,
// not percent: 0.001 is 10 bps.
func NewPercent(maker, taker float64) *Percent {
	return &Percent{MakerRate: maker, TakerRate: taker}
}

func (p *Percent) Fee(security *types.Security, order *types.Order) Fee {
	price := order.LimitPrice
	if price <= 0 {
		price = security.MarketPrice()
	}
	rate := p.TakerRate
	if order.Type == types.OrderTypeLimit && !order.IsMarketable(security.MarketPrice()) {
		rate = p.MakerRate
	}
	notional := order.AbsQuantity() * price
	return Fee{Value: notional * rate, Currency: security.QuoteCurrency}
}

// PerShare charges a fixed rate per unit with a minimum per order. Used for
// equity and option commission schedules.
type PerShare struct {
	Rate    float64
	Minimum float64
}

// NewPerShare creates a per-unit fee model.
func NewPerShare(rate, minimum float64) *PerShare {
	return &PerShare{Rate: rate, Minimum: minimum}
}

func (p *PerShare) Fee(security *types.Security, order *types.Order) Fee {
	fee := p.Rate * order.AbsQuantity()
	if fee < p.Minimum {
		fee = p.Minimum
	}
	return Fee{Value: fee, Currency: "USD"}
}

// FxPerLot charges a commission per traded lot, rounding partial lots up.
type FxPerLot struct {
	CommissionPerLot float64
	LotSize          float64
}

// NewFxPerLot creates a per-lot forex commission model.
func NewFxPerLot(commission, lotSize float64) *FxPerLot {
	return &FxPerLot{CommissionPerLot: commission, LotSize: lotSize}
}

func (f *FxPerLot) Fee(security *types.Security, order *types.Order) Fee {
	if f.LotSize <= 0 {
		return Fee{Currency: security.QuoteCurrency}
	}
	lots := math.Ceil(order.AbsQuantity() / f.LotSize)
	return Fee{Value: lots * f.CommissionPerLot, Currency: security.QuoteCurrency}
}
