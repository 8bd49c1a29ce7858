package brokerage

import (
	"context"

	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/instruments"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/pkg/types"
)

// BybitModel validates orders against Bybit rules. The order-type and
// exchange-filter gates match Binance's crypto policy; when a filter fetcher
// is attached, the venue's live lot size, notional and leverage limits
// replace the security's static properties.
type BybitModel struct {
	base
	accountType types.AccountType
	maxLeverage float64
	fetcher     *instruments.BybitFetcher
}

// NewBybit creates the Bybit brokerage model. maxLeverage caps whatever the
// live leverage filter allows; pass 0 to take the venue limit as-is.
func NewBybit(accountType types.AccountType, maxLeverage float64) *BybitModel {
	return &BybitModel{
		base:        base{name: "bybit"},
		accountType: accountType,
		maxLeverage: maxLeverage,
	}
}

// AccountType returns the configured account type.
func (m *BybitModel) AccountType() types.AccountType {
	return m.accountType
}

// WithFetcher attaches a live instrument filter source.
func (m *BybitModel) WithFetcher(f *instruments.BybitFetcher) *BybitModel {
	m.fetcher = f
	return m
}

// RefreshFilters overwrites the security's static properties with the
// venue's current filters. No-op without an attached fetcher.
func (m *BybitModel) RefreshFilters(ctx context.Context, security *types.Security) error {
	if m.fetcher == nil {
		return nil
	}
	category := "spot"
	if security.Symbol.SecurityType == types.SecurityTypeCryptoFuture {
		category = "linear"
	}
	filters, err := m.fetcher.Get(ctx, category, security.Symbol.Ticker)
	if err != nil {
		return err
	}
	security.Properties = filters.Properties
	if filters.MaxLeverage > 0 {
		lev := filters.MaxLeverage
		if m.maxLeverage > 0 && lev > m.maxLeverage {
			lev = m.maxLeverage
		}
		security.Leverage = lev
	}
	return nil
}

func (m *BybitModel) CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent) {
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

func (m *BybitModel) checkExchangeFilters(security *types.Security, order *types.Order) (bool, *MessageEvent) {
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
		return m.reject(CodeLotSize, "quantity %v is not a multiple of the %s quantity step %v",
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

func (m *BybitModel) CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	if security == nil || order == nil || update == nil {
		panic(ErrNilArgument)
	}
	if ok, ev := m.validateUpdateCommon(security, order, update); !ok {
		return ok, ev
	}
	// Bybit's amend endpoint changes price fields only.
	if update.ChangesQuantity(order) {
		return m.reject(CodeQuantityChange, "bybit does not allow changing the quantity of order %d", order.ID)
	}
	if update.Type != nil && *update.Type != order.Type {
		return m.reject(CodeOrderTypeChange, "bybit does not allow changing the type of order %d", order.ID)
	}
	return m.accept()
}

func (m *BybitModel) FeeModel(security *types.Security) fees.Model {
	return fees.ForCrypto(security.Symbol.SecurityType, fees.NewBybitSpot(), fees.NewBybitFutures())
}

func (m *BybitModel) BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel {
	if accountType == types.AccountTypeCash {
		return margin.NewCash()
	}
	return margin.NewMargin(m.Leverage(security))
}

func (m *BybitModel) Leverage(security *types.Security) float64 {
	if m.accountType == types.AccountTypeCash {
		return 1
	}
	if security.Leverage > 1 {
		// Set by RefreshFilters from the venue leverage filter.
		return security.Leverage
	}
	if security.Symbol.SecurityType == types.SecurityTypeCryptoFuture {
		return 10
	}
	return 3
}
