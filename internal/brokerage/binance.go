package brokerage

import (
	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/pkg/types"
)

// BinanceModel validates orders against Binance spot and USD-M futures
// rules: crypto only, no auction order types, exchange filters enforced, and
// no in-place order updates (Binance requires cancel and replace).
type BinanceModel struct {
	base
	accountType types.AccountType
}

// NewBinance creates the Binance brokerage model.
func NewBinance(accountType types.AccountType) *BinanceModel {
	return &BinanceModel{
		base:        base{name: "binance"},
		accountType: accountType,
	}
}

// AccountType returns the configured account type.
func (m *BinanceModel) AccountType() types.AccountType {
	return m.accountType
}

func (m *BinanceModel) CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	if security == nil || order == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.supportsSecurity(security, types.SecurityTypeCrypto, types.SecurityTypeCryptoFuture); !ok {
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
	return m.checkExchangeFilters(security, order)
}

// checkExchangeFilters enforces the venue's lot size, quantity bounds and
// minimum notional. Filters left at zero are not enforced.
func (m *BinanceModel) checkExchangeFilters(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	props := security.Properties
	qty := order.AbsQuantity()

	if props.MinOrderQuantity > 0 && qty < props.MinOrderQuantity {
		return m.reject(CodeMinQuantity, "quantity %v is below the %s minimum %v",
			qty, security.Symbol, props.MinOrderQuantity)
	}
	if props.MaxOrderQuantity > 0 && qty > props.MaxOrderQuantity {
		return m.reject(CodeMaxQuantity, "quantity %v exceeds the %s maximum %v",
			qty, security.Symbol, props.MaxOrderQuantity)
	}
	if props.LotSize > 0 && security.RoundToLotSize(qty) != qty {
		return m.reject(CodeLotSize, "quantity %v is not a multiple of the %s lot size %v",
			qty, security.Symbol, props.LotSize)
	}
	if props.MinNotional > 0 {
		price := order.LimitPrice
		if price <= 0 {
			price = security.MarketPrice()
		}
		if notional := qty * price; notional < props.MinNotional {
			return m.reject(CodeMinNotional, "notional %.8f is below the %s minimum %.8f",
				notional, security.Symbol, props.MinNotional)
		}
	}
	return m.accept()
}

func (m *BinanceModel) CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	if security == nil || order == nil || update == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.validateUpdateCommon(security, order, update); !ok {
		return ok, ev
	}
	// Binance has no amend endpoint for spot orders; resting orders must be
	// canceled and resubmitted.
	return m.reject(CodeUpdateNotSupported, "binance does not support order updates; cancel and replace instead")
}

func (m *BinanceModel) FeeModel(security *types.Security) fees.Model {
	return fees.ForCrypto(security.Symbol.SecurityType, fees.NewBinanceSpot(), fees.NewBinanceFutures())
}

func (m *BinanceModel) BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel {
	if accountType == types.AccountTypeCash {
		return margin.NewCash()
	}
	return margin.NewMargin(m.Leverage(security))
}

func (m *BinanceModel) Leverage(security *types.Security) float64 {
	if m.accountType == types.AccountTypeCash {
		return 1
	}
	return 3
}
