package brokerage

import (
	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/pkg/types"
)

// DefaultModel is the permissive fallback policy: every security and order
// type is accepted as long as the order itself is well formed.
type DefaultModel struct {
	base
	accountType types.AccountType
}

// NewDefault creates the default brokerage model for the given account type.
func NewDefault(accountType types.AccountType) *DefaultModel {
	return &DefaultModel{
		base:        base{name: "default"},
		accountType: accountType,
	}
}

// AccountType returns the configured account type.
func (m *DefaultModel) AccountType() types.AccountType {
	return m.accountType
}

func (m *DefaultModel) CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	if security == nil || order == nil {
		panic(ErrNilArgument)
	}
	return m.validateSubmitCommon(security, order)
}

func (m *DefaultModel) CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	if security == nil || order == nil || update == nil {
		panic(ErrNilArgument)
	}
	return m.validateUpdateCommon(security, order, update)
}

func (m *DefaultModel) FeeModel(security *types.Security) fees.Model {
	return fees.NewConstant(0)
}

func (m *DefaultModel) BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel {
	if accountType == types.AccountTypeCash {
		return margin.NewCash()
	}
	return margin.NewMargin(m.Leverage(security))
}

func (m *DefaultModel) Leverage(security *types.Security) float64 {
	if m.accountType == types.AccountTypeCash {
		return 1
	}
	switch security.Symbol.SecurityType {
	case types.SecurityTypeEquity:
		return 2
	case types.SecurityTypeForex, types.SecurityTypeCfd:
		return 50
	default:
		return 1
	}
}
