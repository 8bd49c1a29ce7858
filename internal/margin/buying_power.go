// Package margin implements the buying power models: given account state and
// an order, decide whether the account can carry the resulting position and
// how large an order a target value affords.
package margin

import (
	"fmt"
	"math"

	"github.com/quantfold/brokerage/pkg/types"
)

// BuyingPowerModel sizes and gates orders against available capital.
type BuyingPowerModel interface {
	// RequiredMargin is the additional margin the order consumes if filled
	// at the current market price. Negative values mean the order releases
	// margin (it reduces an existing position).
	RequiredMargin(security *types.Security, order *types.Order) float64
	// BuyingPower is the capital available for new positions.
	BuyingPower(portfolio types.Portfolio, security *types.Security) float64
	// HasSufficientBuyingPower reports whether the order fits, with a human
	// reason when it does not.
	HasSufficientBuyingPower(portfolio types.Portfolio, security *types.Security, order *types.Order) (bool, string)
	// MaxOrderQuantityForTargetValue returns the largest order quantity, in
	// units rounded to the lot size, whose notional does not exceed
	// targetValue. The sign matches targetValue.
	MaxOrderQuantityForTargetValue(portfolio types.Portfolio, security *types.Security, targetValue float64) float64
}

// Cash is the buying power model for unlevered cash accounts: settled cash
// only, no shorting.
type Cash struct{}

// NewCash creates a cash account buying power model.
func NewCash() *Cash {
	return &Cash{}
}

func (c *Cash) RequiredMargin(security *types.Security, order *types.Order) float64 {
	current := security.HoldingsValue()
	next := security.QuantityValue(security.Holdings + order.Quantity)
	return math.Abs(next) - math.Abs(current)
}

func (c *Cash) BuyingPower(portfolio types.Portfolio, security *types.Security) float64 {
	return portfolio.Cash
}

func (c *Cash) HasSufficientBuyingPower(portfolio types.Portfolio, security *types.Security, order *types.Order) (bool, string) {
	if security.Holdings+order.Quantity < 0 {
		return false, "cash accounts cannot hold short positions"
	}
	required := c.RequiredMargin(security, order)
	if required <= 0 {
		return true, ""
	}
	available := c.BuyingPower(portfolio, security)
	if required > available {
		return false, fmt.Sprintf("insufficient cash: need %.2f, have %.2f", required, available)
	}
	return true, ""
}

func (c *Cash) MaxOrderQuantityForTargetValue(portfolio types.Portfolio, security *types.Security, targetValue float64) float64 {
	if targetValue < 0 {
		// Selling is capped at the position held.
		return -security.AbsHoldings()
	}
	return maxQuantityForValue(security, math.Min(targetValue, portfolio.Cash))
}

// Margin is the leveraged buying power model. Initial margin is 1/leverage of
// notional; maintenance margin is half the initial requirement.
type Margin struct {
	leverage float64
}

// NewMargin creates a margin model with the given leverage, floored at 1x.
func NewMargin(leverage float64) *Margin {
	if leverage < 1 {
		leverage = 1
	}
	return &Margin{leverage: leverage}
}

// Leverage returns the configured leverage.
func (m *Margin) Leverage() float64 {
	return m.leverage
}

// InitialMarginRate is the fraction of notional required to open.
func (m *Margin) InitialMarginRate() float64 {
	return 1 / m.leverage
}

// MaintenanceMarginRate is the fraction of notional required to hold.
func (m *Margin) MaintenanceMarginRate() float64 {
	return m.InitialMarginRate() / 2
}

func (m *Margin) RequiredMargin(security *types.Security, order *types.Order) float64 {
	current := math.Abs(security.HoldingsValue())
	next := math.Abs(security.QuantityValue(security.Holdings + order.Quantity))
	return (next - current) * m.InitialMarginRate()
}

func (m *Margin) BuyingPower(portfolio types.Portfolio, security *types.Security) float64 {
	return portfolio.TotalCash() * m.leverage
}

func (m *Margin) HasSufficientBuyingPower(portfolio types.Portfolio, security *types.Security, order *types.Order) (bool, string) {
	required := m.RequiredMargin(security, order)
	// Orders that reduce exposure release margin and always pass.
	if required <= 0 {
		return true, ""
	}
	available := portfolio.TotalCash()
	if required > available {
		return false, fmt.Sprintf("insufficient margin: need %.2f, have %.2f", required, available)
	}
	return true, ""
}

func (m *Margin) MaxOrderQuantityForTargetValue(portfolio types.Portfolio, security *types.Security, targetValue float64) float64 {
	limit := portfolio.TotalCash() * m.leverage
	capped := math.Min(math.Abs(targetValue), limit)
	qty := maxQuantityForValue(security, capped)
	if targetValue < 0 {
		return -qty
	}
	return qty
}

// LiquidationPrice estimates the price at which a leveraged position's equity
// falls to the maintenance requirement. Returns 0 for unlevered positions.
func (m *Margin) LiquidationPrice(entryPrice float64, isLong bool) float64 {
	if m.leverage <= 1 || entryPrice <= 0 {
		return 0
	}
	// Equity per unit at price p: long p-entry*(1-1/lev), short entry*(1+1/lev)-p.
	// Liquidation when equity hits maintenance margin (p * maintenance rate).
	initial := m.InitialMarginRate()
	maintenance := m.MaintenanceMarginRate()
	if isLong {
		return entryPrice * (1 - initial) / (1 - maintenance)
	}
	return entryPrice * (1 + initial) / (1 + maintenance)
}

// maxQuantityForValue converts a notional budget to a lot-rounded quantity.
func maxQuantityForValue(security *types.Security, value float64) float64 {
	unit := security.QuantityValue(1)
	if unit <= 0 || value <= 0 {
		return 0
	}
	return security.RoundToLotSize(value / unit)
}
