// Package bars defines the aggregated market data types (trade and quote
// bars, ticks), the CSV codecs that read them from historical data files,
// and the consolidators that build larger bars from smaller inputs.
package bars

import (
	"time"

	"github.com/quantfold/brokerage/pkg/types"
)

// TradeBar is a fixed-interval OHLCV aggregate of trades.
type TradeBar struct {
	Symbol types.Symbol
	// Time is the bar's start in the exchange timezone.
	Time   time.Time
	Period time.Duration
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// EndTime is the first instant after the bar.
func (b *TradeBar) EndTime() time.Time {
	return b.Time.Add(b.Period)
}

// Bar is one OHLC quad, used for the bid and ask halves of a quote bar.
type Bar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// QuoteBar aggregates the bid and ask quotes over an interval. Either half
// may be nil when the source data carried only one side.
type QuoteBar struct {
	Symbol      types.Symbol
	Time        time.Time
	Period      time.Duration
	Bid         *Bar
	Ask         *Bar
	LastBidSize float64
	LastAskSize float64
}

// EndTime is the first instant after the bar.
func (b *QuoteBar) EndTime() time.Time {
	return b.Time.Add(b.Period)
}

// Value is the mid of the closing quote, falling back to the populated side
// when the other is missing.
func (b *QuoteBar) Value() float64 {
	switch {
	case b.Bid != nil && b.Ask != nil:
		return (b.Bid.Close + b.Ask.Close) / 2
	case b.Bid != nil:
		return b.Bid.Close
	case b.Ask != nil:
		return b.Ask.Close
	default:
		return 0
	}
}

// TickType distinguishes trade ticks from quote ticks.
type TickType int

const (
	TickTypeTrade TickType = iota
	TickTypeQuote
)

// Tick is a single market data event: a trade (Price/Quantity) or a quote
// (Bid/Ask prices and sizes).
type Tick struct {
	Symbol   types.Symbol
	Time     time.Time
	Type     TickType
	Price    float64
	Quantity float64
	BidPrice float64
	BidSize  float64
	AskPrice float64
	AskSize  float64
}
