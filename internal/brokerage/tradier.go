package brokerage

import (
	"math"

	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/pkg/types"
)

// TradierModel validates orders against Tradier rules: US equities and
// options only, whole-share quantities, no GTC market orders, and no short
// sales of sub-dollar stocks.
type TradierModel struct {
	base
	accountType types.AccountType
}

// NewTradier creates the Tradier brokerage model.
func NewTradier(accountType types.AccountType) *TradierModel {
	return &TradierModel{
		base:        base{name: "tradier"},
		accountType: accountType,
	}
}

// AccountType returns the configured account type.
func (m *TradierModel) AccountType() types.AccountType {
	return m.accountType
}

func (m *TradierModel) CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	if security == nil || order == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.supportsSecurity(security, types.SecurityTypeEquity, types.SecurityTypeOption); !ok {
		return ok, ev
	}
	if ok, ev := m.supportsOrderType(order,
		types.OrderTypeMarket, types.OrderTypeLimit,
		types.OrderTypeStopMarket, types.OrderTypeStopLimit); !ok {
		return ok, ev
	}
	if ok, ev := m.validateSubmitCommon(security, order); !ok {
		return ok, ev
	}

	if order.Quantity != math.Trunc(order.Quantity) {
		return m.reject(CodeFractionalQuantity, "tradier does not accept fractional quantity %v", order.Quantity)
	}

	if order.Type == types.OrderTypeMarket && order.TimeInForce == types.TimeInForceGTC {
		return m.reject(CodeGtcMarket, "tradier does not accept GTC market orders; use day")
	}

	// Short sales of sub-dollar equities are blocked upstream by Tradier's
	// clearing firm.
	if security.Symbol.SecurityType == types.SecurityTypeEquity &&
		order.Side() == types.OrderSideSell &&
		security.Holdings+order.Quantity < 0 {
		if price := security.MarketPrice(); price > 0 && price < 1 {
			return m.reject(CodeShortSubDollar, "cannot short %s at %.4f; sub-dollar equities are not shortable", security.Symbol, price)
		}
	}

	return m.accept()
}

func (m *TradierModel) CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	if security == nil || order == nil || update == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.validateUpdateCommon(security, order, update); !ok {
		return ok, ev
	}
	if update.Type != nil && *update.Type != order.Type {
		return m.reject(CodeOrderTypeChange, "tradier does not allow changing the type of order %d", order.ID)
	}
	if update.Quantity != nil && *update.Quantity != math.Trunc(*update.Quantity) {
		return m.reject(CodeFractionalQuantity, "tradier does not accept fractional quantity %v", *update.Quantity)
	}
	return m.accept()
}

func (m *TradierModel) FeeModel(security *types.Security) fees.Model {
	return fees.NewTradier()
}

func (m *TradierModel) BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel {
	if accountType == types.AccountTypeCash {
		return margin.NewCash()
	}
	return margin.NewMargin(m.Leverage(security))
}

func (m *TradierModel) Leverage(security *types.Security) float64 {
	if m.accountType == types.AccountTypeCash {
		return 1
	}
	if security.Symbol.SecurityType == types.SecurityTypeEquity {
		return 2
	}
	return 1
}
