// Package orderbook models depth snapshots: sorted bid and ask levels with
// the price math built on top of them (mid, spread, fillable quantity,
// slippage) and a CSV codec for depth files.
package orderbook

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Side selects the bid or ask half of a book.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

// Level is one price level: a price and the size resting at it.
type Level struct {
	Price float64
	Size  float64
}

// Book is a snapshot of an instrument's depth. Bids are sorted descending,
// asks ascending, and the book is never crossed (best bid < best ask).
type Book struct {
	ID        uuid.UUID
	Symbol    string
	Timestamp time.Time
	bids      []Level
	asks      []Level
}

// New builds a book from raw levels, enforcing the structural invariants:
// positive prices and sizes, bids strictly descending, asks strictly
// ascending, and no cross between the sides.
func New(symbol string, ts time.Time, bids, asks []Level) (*Book, error) {
	if err := checkSide(bids, SideBid); err != nil {
		return nil, err
	}
	if err := checkSide(asks, SideAsk); err != nil {
		return nil, err
	}
	if len(bids) > 0 && len(asks) > 0 && bids[0].Price >= asks[0].Price {
		return nil, fmt.Errorf("crossed book: best bid %v >= best ask %v", bids[0].Price, asks[0].Price)
	}
	return &Book{
		ID:        uuid.New(),
		Symbol:    symbol,
		Timestamp: ts,
		bids:      append([]Level(nil), bids...),
		asks:      append([]Level(nil), asks...),
	}, nil
}

func checkSide(levels []Level, side Side) error {
	for i, lvl := range levels {
		if lvl.Price <= 0 || math.IsNaN(lvl.Price) || math.IsInf(lvl.Price, 0) {
			return fmt.Errorf("%s level %d has invalid price %v", side, i, lvl.Price)
		}
		if lvl.Size <= 0 || math.IsNaN(lvl.Size) || math.IsInf(lvl.Size, 0) {
			return fmt.Errorf("%s level %d has invalid size %v", side, i, lvl.Size)
		}
		if i == 0 {
			continue
		}
		if side == SideBid && levels[i-1].Price <= lvl.Price {
			return fmt.Errorf("bid levels not strictly descending at index %d", i)
		}
		if side == SideAsk && levels[i-1].Price >= lvl.Price {
			return fmt.Errorf("ask levels not strictly ascending at index %d", i)
		}
	}
	return nil
}

// Bids returns a copy of the bid side, best first.
func (b *Book) Bids() []Level {
	return append([]Level(nil), b.bids...)
}

// Asks returns a copy of the ask side, best first.
func (b *Book) Asks() []Level {
	return append([]Level(nil), b.asks...)
}

// Depth returns the level counts of each side.
func (b *Book) Depth() (bids, asks int) {
	return len(b.bids), len(b.asks)
}

// BestBid returns the highest bid, or false on an empty side.
func (b *Book) BestBid() (Level, bool) {
	if len(b.bids) == 0 {
		return Level{}, false
	}
	return b.bids[0], true
}

// BestAsk returns the lowest ask, or false on an empty side.
func (b *Book) BestAsk() (Level, bool) {
	if len(b.asks) == 0 {
		return Level{}, false
	}
	return b.asks[0], true
}

// MidPrice is the midpoint of the best bid and ask. Zero when either side is
// empty.
func (b *Book) MidPrice() float64 {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0
	}
	return (bid.Price + ask.Price) / 2
}

// Spread is best ask minus best bid. Zero when either side is empty.
func (b *Book) Spread() float64 {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0
	}
	return ask.Price - bid.Price
}

// SpreadBps is the spread expressed in basis points of the mid price.
func (b *Book) SpreadBps() float64 {
	mid := b.MidPrice()
	if mid <= 0 {
		return 0
	}
	return b.Spread() / mid * 10000
}

// FillableQuantity sums the size available at or better than limitPrice on
// the side an aggressor would hit: a buy consumes asks priced at or below
// the limit, a sell consumes bids at or above it.
func (b *Book) FillableQuantity(aggressor Side, limitPrice float64) float64 {
	var total float64
	if aggressor == SideBid {
		for _, lvl := range b.asks {
			if lvl.Price > limitPrice {
				break
			}
			total += lvl.Size
		}
		return total
	}
	for _, lvl := range b.bids {
		if lvl.Price < limitPrice {
			break
		}
		total += lvl.Size
	}
	return total
}

// SlippageBps walks the opposing side for the given quantity and returns the
// difference between the volume-weighted fill price and the mid, in basis
// points. The second result is false when the book is too thin to fill the
// quantity.
func (b *Book) SlippageBps(aggressor Side, quantity float64) (float64, bool) {
	mid := b.MidPrice()
	if mid <= 0 || quantity <= 0 {
		return 0, false
	}

	levels := b.asks
	if aggressor == SideAsk {
		levels = b.bids
	}

	remaining := quantity
	var cost float64
	for _, lvl := range levels {
		take := math.Min(remaining, lvl.Size)
		cost += take * lvl.Price
		remaining -= take
		if remaining <= 0 {
			break
		}
	}
	if remaining > 0 {
		return 0, false
	}

	vwap := cost / quantity
	slippage := (vwap - mid) / mid * 10000
	if aggressor == SideAsk {
		slippage = -slippage
	}
	return slippage, true
}

// ApplyUpdate sets the size at a price level, inserting, replacing or (with
// size 0) deleting it, then re-checks the crossed invariant. The book is
// unchanged when the update would cross it.
func (b *Book) ApplyUpdate(side Side, price, size float64) error {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("invalid update price %v", price)
	}
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return fmt.Errorf("invalid update size %v", size)
	}

	levels := b.bids
	if side == SideAsk {
		levels = b.asks
	}
	next := applyLevel(levels, side, price, size)

	// Check the cross before committing.
	bestBid, bestAsk := b.bids, b.asks
	if side == SideBid {
		bestBid = next
	} else {
		bestAsk = next
	}
	if len(bestBid) > 0 && len(bestAsk) > 0 && bestBid[0].Price >= bestAsk[0].Price {
		return fmt.Errorf("update would cross the book: bid %v >= ask %v", bestBid[0].Price, bestAsk[0].Price)
	}

	if side == SideBid {
		b.bids = next
	} else {
		b.asks = next
	}
	return nil
}

// applyLevel returns the side with the level set. The result never aliases
// the input slice, so a caller can discard it without touching the book.
func applyLevel(levels []Level, side Side, price, size float64) []Level {
	idx := sort.Search(len(levels), func(i int) bool {
		if side == SideBid {
			return levels[i].Price <= price
		}
		return levels[i].Price >= price
	})

	exists := idx < len(levels) && levels[idx].Price == price
	switch {
	case exists && size == 0:
		next := make([]Level, 0, len(levels)-1)
		next = append(next, levels[:idx]...)
		return append(next, levels[idx+1:]...)
	case exists:
		next := append([]Level(nil), levels...)
		next[idx].Size = size
		return next
	case size == 0:
		return levels
	default:
		next := make([]Level, 0, len(levels)+1)
		next = append(next, levels[:idx]...)
		next = append(next, Level{Price: price, Size: size})
		return append(next, levels[idx:]...)
	}
}
