package types

import (
	"fmt"
	"math"
	"time"
)

// OrderType enumerates the supported order kinds.
type OrderType string

const (
	OrderTypeMarket        OrderType = "market"
	OrderTypeLimit         OrderType = "limit"
	OrderTypeStopMarket    OrderType = "stop_market"
	OrderTypeStopLimit     OrderType = "stop_limit"
	OrderTypeTrailingStop  OrderType = "trailing_stop"
	OrderTypeMarketOnOpen  OrderType = "market_on_open"
	OrderTypeMarketOnClose OrderType = "market_on_close"
)

// OrderSide is the direction implied by an order's signed quantity.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusSubmitted       OrderStatus = "submitted"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusInvalid         OrderStatus = "invalid"
)

// IsClosed reports whether the order can no longer change.
func (s OrderStatus) IsClosed() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusInvalid
}

// Order is a request to trade. Quantity is signed: positive buys, negative
// sells. Price fields are meaningful only for the order types that use them.
type Order struct {
	ID             int64
	Symbol         Symbol
	Quantity       float64
	Type           OrderType
	LimitPrice     float64
	StopPrice      float64
	TrailingAmount float64
	// TrailingAsPercent interprets TrailingAmount as a fraction of price
	// instead of an absolute offset.
	TrailingAsPercent bool
	TimeInForce       TimeInForce
	Status            OrderStatus
	BrokerTicketID    string
	CreatedAt         time.Time
}

// Side derives the direction from the signed quantity.
func (o *Order) Side() OrderSide {
	if o.Quantity < 0 {
		return OrderSideSell
	}
	return OrderSideBuy
}

// AbsQuantity returns the unsigned order size.
func (o *Order) AbsQuantity() float64 {
	return math.Abs(o.Quantity)
}

// IsMarketable reports whether the order would execute immediately against
// the given market price. Market orders are always marketable; resting limit
// orders are marketable when they cross the market.
func (o *Order) IsMarketable(marketPrice float64) bool {
	switch o.Type {
	case OrderTypeMarket, OrderTypeMarketOnOpen, OrderTypeMarketOnClose:
		return true
	case OrderTypeLimit:
		if marketPrice <= 0 {
			return false
		}
		if o.Side() == OrderSideBuy {
			return o.LimitPrice >= marketPrice
		}
		return o.LimitPrice <= marketPrice
	default:
		return false
	}
}

// Value is the notional of the order at the given price, signed like quantity.
func (o *Order) Value(price float64) float64 {
	return o.Quantity * price
}

func (o *Order) String() string {
	return fmt.Sprintf("order %d %s %s %.8f @ %s", o.ID, o.Symbol, o.Type, o.Quantity, o.Status)
}

// OrderUpdate carries the fields an update request wants to change. Nil
// fields are left unchanged on the target order.
type OrderUpdate struct {
	Quantity    *float64
	LimitPrice  *float64
	StopPrice   *float64
	TimeInForce *TimeInForce
	// Type is set when the update tries to switch the order kind. Most
	// brokers reject this.
	Type *OrderType
}

// ChangesQuantity reports whether the update alters the target's quantity.
func (u *OrderUpdate) ChangesQuantity(target *Order) bool {
	return u.Quantity != nil && *u.Quantity != target.Quantity
}

// Apply writes the populated update fields onto a copy of target.
func (u *OrderUpdate) Apply(target *Order) *Order {
	next := *target
	if u.Quantity != nil {
		next.Quantity = *u.Quantity
	}
	if u.LimitPrice != nil {
		next.LimitPrice = *u.LimitPrice
	}
	if u.StopPrice != nil {
		next.StopPrice = *u.StopPrice
	}
	if u.TimeInForce != nil {
		next.TimeInForce = *u.TimeInForce
	}
	if u.Type != nil {
		next.Type = *u.Type
	}
	return &next
}
