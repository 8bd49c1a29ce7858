// Package brokerage implements the per-broker order validation models. A
// model answers whether a broker would accept a given order or order update,
// and supplies the fee and buying power models that broker applies.
package brokerage

import (
	"errors"
	"fmt"
	"math"

	"github.com/quantfold/brokerage/internal/fees"
	"github.com/quantfold/brokerage/internal/margin"
	"github.com/quantfold/brokerage/internal/monitoring"
	"github.com/quantfold/brokerage/pkg/types"
)

// Severity classifies a message event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// MessageEvent explains a rejection. Rejections are ordinary outcomes, not
// errors: CanSubmitOrder returns (false, event) and never fails on a bad
// order, only on programmer misuse (nil arguments).
type MessageEvent struct {
	Severity Severity
	Code     string
	Message  string
}

func (e *MessageEvent) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Rejection codes shared across models.
const (
	CodeZeroQuantity        = "zero-quantity"
	CodeInvalidQuantity     = "invalid-quantity"
	CodeUnsupportedSecurity = "unsupported-security-type"
	CodeUnsupportedOrder    = "unsupported-order-type"
	CodeUnsupportedTif      = "unsupported-time-in-force"
	CodeMissingPrice        = "missing-price"
	CodeInvalidPrice        = "invalid-price"
	CodeMinNotional         = "min-notional"
	CodeLotSize             = "lot-size"
	CodeMinQuantity         = "min-quantity"
	CodeMaxQuantity         = "max-quantity"
	CodeOrderClosed         = "order-closed"
	CodeUpdateNotSupported  = "update-not-supported"
	CodeQuantityChange      = "quantity-change-not-supported"
	CodeOrderTypeChange     = "order-type-change-not-supported"
	CodeMarketableLimit     = "marketable-limit"
	CodeShortSubDollar      = "short-sub-dollar-equity"
	CodeGtcMarket           = "gtc-market-order"
	CodeFractionalQuantity  = "fractional-quantity"
)

// ErrNilArgument is returned when a model is called without a security or order.
var ErrNilArgument = errors.New("brokerage: nil security or order")

// Model is a broker's order acceptance policy.
type Model interface {
	// Name identifies the broker.
	Name() string
	// CanSubmitOrder reports whether the broker accepts the order. A false
	// result carries a warning event with the rejection reason.
	CanSubmitOrder(security *types.Security, order *types.Order) (bool, *MessageEvent)
	// CanUpdateOrder reports whether the broker accepts an update to a
	// resting order.
	CanUpdateOrder(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent)
	// FeeModel returns the fee schedule applied to the security.
	FeeModel(security *types.Security) fees.Model
	// BuyingPowerModel returns the capital model for the security under the
	// given account type.
	BuyingPowerModel(security *types.Security, accountType types.AccountType) margin.BuyingPowerModel
	// Leverage is the maximum leverage the broker extends on the security.
	Leverage(security *types.Security) float64
	// AccountType is the account type the model was built for.
	AccountType() types.AccountType
}

// base carries the pieces every model shares: a name and the reject/accept
// bookkeeping around it.
type base struct {
	name string
}

func (b base) Name() string {
	return b.name
}

// reject builds a warning event and records it.
func (b base) reject(code, format string, args ...interface{}) (bool, *MessageEvent) {
	monitoring.RecordOrderRejected(b.name, code)
	return false, &MessageEvent{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (b base) accept() (bool, *MessageEvent) {
	return true, nil
}

// validateSubmitCommon applies the checks every broker shares: a real
// quantity and the price fields the order type requires.
func (b base) validateSubmitCommon(security *types.Security, order *types.Order) (bool, *MessageEvent) {
	monitoring.RecordOrderChecked(b.name, "submit")

	if order.Quantity == 0 {
		return b.reject(CodeZeroQuantity, "order %d for %s has zero quantity", order.ID, order.Symbol)
	}
	if math.IsNaN(order.Quantity) || math.IsInf(order.Quantity, 0) {
		return b.reject(CodeInvalidQuantity, "order %d for %s has non-finite quantity", order.ID, order.Symbol)
	}

	switch order.Type {
	case types.OrderTypeLimit:
		if order.LimitPrice <= 0 {
			return b.reject(CodeMissingPrice, "limit order %d requires a positive limit price", order.ID)
		}
	case types.OrderTypeStopMarket:
		if order.StopPrice <= 0 {
			return b.reject(CodeMissingPrice, "stop order %d requires a positive stop price", order.ID)
		}
	case types.OrderTypeStopLimit:
		if order.LimitPrice <= 0 || order.StopPrice <= 0 {
			return b.reject(CodeMissingPrice, "stop limit order %d requires positive stop and limit prices", order.ID)
		}
	case types.OrderTypeTrailingStop:
		if order.TrailingAmount <= 0 {
			return b.reject(CodeMissingPrice, "trailing stop order %d requires a positive trailing amount", order.ID)
		}
		if order.TrailingAsPercent && order.TrailingAmount >= 1 {
			return b.reject(CodeInvalidPrice, "trailing percent %.4f on order %d must be below 1", order.TrailingAmount, order.ID)
		}
	}

	for _, price := range []float64{order.LimitPrice, order.StopPrice} {
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return b.reject(CodeInvalidPrice, "order %d carries a non-finite or negative price", order.ID)
		}
	}

	return b.accept()
}

// validateUpdateCommon applies the shared update checks: the target order
// must still be open and the updated order must pass submit validation.
func (b base) validateUpdateCommon(security *types.Security, order *types.Order, update *types.OrderUpdate) (bool, *MessageEvent) {
	monitoring.RecordOrderChecked(b.name, "update")

	if order.Status.IsClosed() {
		return b.reject(CodeOrderClosed, "order %d is %s and can no longer change", order.ID, order.Status)
	}
	if update.Quantity != nil && *update.Quantity == 0 {
		return b.reject(CodeZeroQuantity, "update to order %d would zero its quantity", order.ID)
	}
	return b.accept()
}

// supportsSecurity gates a model on its tradable security types.
func (b base) supportsSecurity(security *types.Security, supported ...types.SecurityType) (bool, *MessageEvent) {
	st := security.Symbol.SecurityType
	for _, s := range supported {
		if st == s {
			return b.accept()
		}
	}
	return b.reject(CodeUnsupportedSecurity, "%s does not trade %s securities", b.name, st)
}

// supportsOrderType gates a model on its accepted order types.
func (b base) supportsOrderType(order *types.Order, supported ...types.OrderType) (bool, *MessageEvent) {
	for _, t := range supported {
		if order.Type == t {
			return b.accept()
		}
	}
	return b.reject(CodeUnsupportedOrder, "%s does not accept %s orders", b.name, order.Type)
}
