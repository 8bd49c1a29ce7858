package brokerage

import (
	"math"

	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/pkg/types"
)

// fxcmMicroLot is the smallest tradable forex quantity at FXCM and the step
// every order size must align to.
const fxcmMicroLot = 1000

// FxcmModel validates orders against FXCM rules: forex and CFD only,
// micro-lot sized quantities, no IOC or FOK, and limit orders must rest on
// the passive side of the market.
type FxcmModel struct {
	base
}

// NewFxcm creates the FXCM brokerage model.
func NewFxcm() *FxcmModel {
	return &FxcmModel{base: base{name: "fxcm"}}
}

// AccountType returns margin; FXCM does not offer cash accounts.
func (m *FxcmModel) AccountType() types.AccountType {
	return types.AccountTypeMargin
}

func (m *FxcmModel) CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	if security == nil || order == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.supportsSecurity(security, types.SecurityTypeForex, types.SecurityTypeCfd); !ok {
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

	if order.TimeInForce == types.TimeInForceIOC || order.TimeInForce == types.TimeInForceFOK {
		return m.reject(CodeUnsupportedTif, "fxcm does not accept %s orders", order.TimeInForce)
	}

	if security.Symbol.SecurityType == types.SecurityTypeForex {
		qty := order.AbsQuantity()
		if qty < fxcmMicroLot || math.Mod(qty, fxcmMicroLot) != 0 {
			return m.reject(CodeLotSize, "quantity %v must be a multiple of the %d-unit micro lot", qty, fxcmMicroLot)
		}
	}

	// FXCM rejects marketable limit orders instead of filling them: a buy
	// limit must rest below the market, a sell limit above it.
	if order.Type == types.OrderTypeLimit {
		market := security.MarketPrice()
		if market > 0 {
			if order.Side() == types.OrderSideBuy && order.LimitPrice >= market {
				return m.reject(CodeMarketableLimit, "buy limit %.5f must be below the market price %.5f", order.LimitPrice, market)
			}
			if order.Side() == types.OrderSideSell && order.LimitPrice <= market {
				return m.reject(CodeMarketableLimit, "sell limit %.5f must be above the market price %.5f", order.LimitPrice, market)
			}
		}
	}

	return m.accept()
}

func (m *FxcmModel) CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	if security == nil || order == nil || update == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.validateUpdateCommon(security, order, update); !ok {
		return ok, ev
	}
	// Price and time in force may change on a resting order; size may not.
	if update.ChangesQuantity(order) {
		return m.reject(CodeQuantityChange, "fxcm does not allow changing the quantity of order %d", order.ID)
	}
	if update.Type != nil && *update.Type != order.Type {
		return m.reject(CodeOrderTypeChange, "fxcm does not allow changing the type of order %d", order.ID)
	}
	return m.accept()
}

func (m *FxcmModel) FeeModel(security *types.Security) fees.Model {
	return fees.NewFxcm()
}

func (m *FxcmModel) BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel {
	// FXCM accounts are margin accounts; leverage applies regardless.
	return margin.NewMargin(m.Leverage(security))
}

func (m *FxcmModel) Leverage(security *types.Security) float64 {
	return 50
}
