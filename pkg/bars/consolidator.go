package bars

import (
	"sync"
	"time"
)

// Consolidators aggregate ticks or smaller bars into bars of a target
// period. Bar start times are floored to the period, so a 1-minute
// consolidator fed 09:30:17 data opens its bar at 09:30:00. Both
// consolidators are safe for concurrent Update and Scan calls.

// TradeBarConsolidator builds trade bars from trade ticks or smaller trade
// bars.
type TradeBarConsolidator struct {
	period  time.Duration
	handler func(*TradeBar)

	mu      sync.Mutex
	working *TradeBar
}

// NewTradeBarConsolidator creates a consolidator emitting bars of the given
// period through handler.
func NewTradeBarConsolidator(period time.Duration, handler func(*TradeBar)) *TradeBarConsolidator {
	return &TradeBarConsolidator{period: period, handler: handler}
}

// Update folds one trade tick into the working bar, emitting the previous
// bar when the tick opens a new period. Quote ticks are ignored.
func (c *TradeBarConsolidator) Update(tick *Tick) {
	if tick.Type != TickTypeTrade {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	start := tick.Time.Truncate(c.period)
	if c.working != nil && !start.Before(c.working.EndTime()) {
		c.emitLocked()
	}

	if c.working == nil {
		c.working = &TradeBar{
			Symbol: tick.Symbol,
			Time:   start,
			Period: c.period,
			Open:   tick.Price,
			High:   tick.Price,
			Low:    tick.Price,
			Close:  tick.Price,
			Volume: tick.Quantity,
		}
		return
	}

	if tick.Price > c.working.High {
		c.working.High = tick.Price
	}
	if tick.Price < c.working.Low {
		c.working.Low = tick.Price
	}
	c.working.Close = tick.Price
	c.working.Volume += tick.Quantity
}

// UpdateBar folds a smaller trade bar into the working bar.
func (c *TradeBarConsolidator) UpdateBar(bar *TradeBar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := bar.Time.Truncate(c.period)
	if c.working != nil && !start.Before(c.working.EndTime()) {
		c.emitLocked()
	}

	if c.working == nil {
		copied := *bar
		copied.Time = start
		copied.Period = c.period
		c.working = &copied
		return
	}

	if bar.High > c.working.High {
		c.working.High = bar.High
	}
	if bar.Low < c.working.Low {
		c.working.Low = bar.Low
	}
	c.working.Close = bar.Close
	c.working.Volume += bar.Volume
}

// Scan emits the working bar if its period has elapsed by now. Called on a
// timer to flush bars through quiet stretches with no incoming data.
func (c *TradeBarConsolidator) Scan(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.working != nil && !now.Before(c.working.EndTime()) {
		c.emitLocked()
	}
}

// WorkingBar returns a copy of the bar under construction, or nil.
func (c *TradeBarConsolidator) WorkingBar() *TradeBar {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.working == nil {
		return nil
	}
	copied := *c.working
	return &copied
}

func (c *TradeBarConsolidator) emitLocked() {
	bar := c.working
	c.working = nil
	if c.handler != nil && bar != nil {
		c.handler(bar)
	}
}

// QuoteBarConsolidator builds quote bars from quote ticks.
type QuoteBarConsolidator struct {
	period  time.Duration
	handler func(*QuoteBar)

	mu      sync.Mutex
	working *QuoteBar
}

// NewQuoteBarConsolidator creates a consolidator emitting quote bars of the
// given period through handler.
func NewQuoteBarConsolidator(period time.Duration, handler func(*QuoteBar)) *QuoteBarConsolidator {
	return &QuoteBarConsolidator{period: period, handler: handler}
}

// Update folds one quote tick into the working bar. Sides with a zero price
// are treated as absent. Trade ticks are ignored.
func (c *QuoteBarConsolidator) Update(tick *Tick) {
	if tick.Type != TickTypeQuote {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	start := tick.Time.Truncate(c.period)
	if c.working != nil && !start.Before(c.working.EndTime()) {
		c.emitLocked()
	}

	if c.working == nil {
		c.working = &QuoteBar{
			Symbol: tick.Symbol,
			Time:   start,
			Period: c.period,
		}
	}

	if tick.BidPrice > 0 {
		c.working.Bid = updateHalf(c.working.Bid, tick.BidPrice)
		c.working.LastBidSize = tick.BidSize
	}
	if tick.AskPrice > 0 {
		c.working.Ask = updateHalf(c.working.Ask, tick.AskPrice)
		c.working.LastAskSize = tick.AskSize
	}
}

// Scan emits the working bar if its period has elapsed by now.
func (c *QuoteBarConsolidator) Scan(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.working != nil && !now.Before(c.working.EndTime()) {
		c.emitLocked()
	}
}

// WorkingBar returns a copy of the bar under construction, or nil.
func (c *QuoteBarConsolidator) WorkingBar() *QuoteBar {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.working == nil {
		return nil
	}
	copied := *c.working
	if c.working.Bid != nil {
		bid := *c.working.Bid
		copied.Bid = &bid
	}
	if c.working.Ask != nil {
		ask := *c.working.Ask
		copied.Ask = &ask
	}
	return &copied
}

func (c *QuoteBarConsolidator) emitLocked() {
	bar := c.working
	c.working = nil
	if c.handler != nil && bar != nil {
		c.handler(bar)
	}
}

func updateHalf(half *Bar, price float64) *Bar {
	if half == nil {
		return &Bar{Open: price, High: price, Low: price, Close: price}
	}
	if price > half.High {
		half.High = price
	}
	if price < half.Low {
		half.Low = price
	}
	half.Close = price
	return half
}
