package bars

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantfold/brokerage/pkg/types"
)

// Historical CSV layouts. Intraday lines lead with a millisecond offset from
// midnight of the file date in the data timezone; daily lines lead with a
// "yyyyMMdd HH:mm" stamp. Equity and option files store prices in deci-cents
// (ten-thousandths of the quoted unit); other asset classes store raw prices.
//
//	trade: ms,open,high,low,close,volume
//	quote: ms,bidOpen,bidHigh,bidLow,bidClose,lastBidSize,askOpen,askHigh,askLow,askClose,lastAskSize
//
// An all-empty bid or ask half leaves that side of the quote bar nil.

const (
	tradeFieldCount = 6
	quoteFieldCount = 11
	dailyTimeLayout = "20060102 15:04"
)

// priceScale returns the factor raw file prices are divided by.
func priceScale(st types.SecurityType) float64 {
	switch st {
	case types.SecurityTypeEquity, types.SecurityTypeOption:
		return 10000
	default:
		return 1
	}
}

// LineContext carries the per-file facts a single CSV line cannot express:
// the instrument, the file date, the bar period, and the timezones to
// convert between.
type LineContext struct {
	Symbol types.Symbol
	// Date is midnight of the file's trading date in the data timezone.
	// Ignored for daily resolution.
	Date   time.Time
	Period time.Duration
	// Daily switches the timestamp field to the daily layout.
	Daily            bool
	DataTimezone     *time.Location
	ExchangeTimezone *time.Location
}

func (c LineContext) dataTZ() *time.Location {
	if c.DataTimezone != nil {
		return c.DataTimezone
	}
	return time.UTC
}

func (c LineContext) exchangeTZ() *time.Location {
	if c.ExchangeTimezone != nil {
		return c.ExchangeTimezone
	}
	return time.UTC
}

// parseBarTime decodes the leading timestamp field into the bar start in the
// exchange timezone.
func (c LineContext) parseBarTime(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if c.Daily {
		t, err := time.ParseInLocation(dailyTimeLayout, field, c.dataTZ())
		if err != nil {
			return time.Time{}, fmt.Errorf("bad daily timestamp %q", field)
		}
		return t.In(c.exchangeTZ()), nil
	}
	ms, err := strconv.ParseInt(field, 10, 64)
	if err != nil || ms < 0 || ms >= int64(24*time.Hour/time.Millisecond) {
		return time.Time{}, fmt.Errorf("bad millisecond offset %q", field)
	}
	midnight := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, c.dataTZ())
	return midnight.Add(time.Duration(ms) * time.Millisecond).In(c.exchangeTZ()), nil
}

// ParseTradeBarLine decodes one trade bar line. Malformed input returns a
// nil bar and a diagnostic error.
func ParseTradeBarLine(fields []string, ctx LineContext) (*TradeBar, error) {
	if len(fields) != tradeFieldCount {
		return nil, fmt.Errorf("trade line has %d fields, want %d", len(fields), tradeFieldCount)
	}

	barTime, err := ctx.parseBarTime(fields[0])
	if err != nil {
		return nil, err
	}

	scale := priceScale(ctx.Symbol.SecurityType)
	prices := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("bad %s price %q", name, fields[i+1])
		}
		prices[i] = v / scale
	}
	open, high, low, closePx := prices[0], prices[1], prices[2], prices[3]

	if high < low || high < open || high < closePx || low > open || low > closePx {
		return nil, fmt.Errorf("inconsistent OHLC: o=%v h=%v l=%v c=%v", open, high, low, closePx)
	}

	volume, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil || volume < 0 {
		return nil, fmt.Errorf("bad volume %q", fields[5])
	}

	return &TradeBar{
		Symbol: ctx.Symbol,
		Time:   barTime,
		Period: ctx.Period,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: volume,
	}, nil
}

// ParseQuoteBarLine decodes one quote bar line. An all-empty bid or ask half
// leaves that side nil; both halves empty is malformed.
func ParseQuoteBarLine(fields []string, ctx LineContext) (*QuoteBar, error) {
	if len(fields) != quoteFieldCount {
		return nil, fmt.Errorf("quote line has %d fields, want %d", len(fields), quoteFieldCount)
	}

	barTime, err := ctx.parseBarTime(fields[0])
	if err != nil {
		return nil, err
	}

	scale := priceScale(ctx.Symbol.SecurityType)
	bid, bidSize, err := parseQuoteHalf(fields[1:6], "bid", scale)
	if err != nil {
		return nil, err
	}
	ask, askSize, err := parseQuoteHalf(fields[6:11], "ask", scale)
	if err != nil {
		return nil, err
	}
	if bid == nil && ask == nil {
		return nil, fmt.Errorf("quote line has neither bid nor ask data")
	}

	return &QuoteBar{
		Symbol:      ctx.Symbol,
		Time:        barTime,
		Period:      ctx.Period,
		Bid:         bid,
		Ask:         ask,
		LastBidSize: bidSize,
		LastAskSize: askSize,
	}, nil
}

// parseQuoteHalf decodes o,h,l,c,lastSize for one side. All five fields
// empty means the side is absent.
func parseQuoteHalf(fields []string, side string, scale float64) (*Bar, float64, error) {
	empty := true
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil, 0, nil
	}

	vals := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil || v <= 0 {
			return nil, 0, fmt.Errorf("bad %s %s price %q", side, name, fields[i])
		}
		vals[i] = v / scale
	}
	if vals[1] < vals[2] {
		return nil, 0, fmt.Errorf("%s high %v below low %v", side, vals[1], vals[2])
	}

	size, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil || size < 0 {
		return nil, 0, fmt.Errorf("bad last %s size %q", side, fields[4])
	}

	return &Bar{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}, size, nil
}
