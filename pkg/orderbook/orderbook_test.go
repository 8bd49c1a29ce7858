package orderbook

import (
	"math"
	"testing"
	"time"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	book, err := New("BTCUSDT", time.Unix(1705312800, 0).UTC(),
		[]Level{{100.5, 2}, {100, 1}},
		[]Level{{101, 1}, {101.5, 3}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return book
}

func TestNew_Invariants(t *testing.T) {
	ts := time.Now().UTC()

	tests := []struct {
		name    string
		bids    []Level
		asks    []Level
		wantErr bool
	}{
		{"valid book", []Level{{100.5, 2}, {100, 1}}, []Level{{101, 1}, {101.5, 3}}, false},
		{"empty sides", nil, nil, false},
		{"crossed book", []Level{{101, 1}}, []Level{{100, 1}}, true},
		{"locked book", []Level{{100, 1}}, []Level{{100, 1}}, true},
		{"bids not descending", []Level{{100, 1}, {100.5, 2}}, nil, true},
		{"asks not ascending", nil, []Level{{101.5, 1}, {101, 2}}, true},
		{"duplicate bid price", []Level{{100, 1}, {100, 2}}, nil, true},
		{"zero price", []Level{{0, 1}}, nil, true},
		{"zero size", []Level{{100, 0}}, nil, true},
		{"nan price", []Level{{math.NaN(), 1}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("BTCUSDT", ts, tt.bids, tt.asks)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBook_DistinctIDs(t *testing.T) {
	a := newTestBook(t)
	b := newTestBook(t)
	if a.ID == b.ID {
		t.Error("snapshots should carry distinct IDs")
	}
}

func TestBook_PriceMath(t *testing.T) {
	book := newTestBook(t)

	if mid := book.MidPrice(); mid != 100.75 {
		t.Errorf("MidPrice() = %v, want 100.75", mid)
	}
	if spread := book.Spread(); spread != 0.5 {
		t.Errorf("Spread() = %v, want 0.5", spread)
	}
	wantBps := 0.5 / 100.75 * 10000
	if bps := book.SpreadBps(); math.Abs(bps-wantBps) > 1e-9 {
		t.Errorf("SpreadBps() = %v, want %v", bps, wantBps)
	}

	empty, err := New("BTCUSDT", time.Now(), nil, []Level{{101, 1}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if empty.MidPrice() != 0 || empty.Spread() != 0 {
		t.Error("one-sided book should report zero mid and spread")
	}
}

func TestBook_FillableQuantity(t *testing.T) {
	book := newTestBook(t)

	tests := []struct {
		name      string
		aggressor Side
		limit     float64
		want      float64
	}{
		{"buy through both asks", SideBid, 101.5, 4},
		{"buy caps at first ask", SideBid, 101, 1},
		{"buy below best ask", SideBid, 100.9, 0},
		{"sell through both bids", SideAsk, 100, 3},
		{"sell caps at best bid", SideAsk, 100.5, 2},
		{"sell above best bid", SideAsk, 100.6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := book.FillableQuantity(tt.aggressor, tt.limit); got != tt.want {
				t.Errorf("FillableQuantity(%s, %v) = %v, want %v", tt.aggressor, tt.limit, got, tt.want)
			}
		})
	}
}

func TestBook_SlippageBps(t *testing.T) {
	book := newTestBook(t)
	mid := 100.75

	// Buying 2 fills 1 at 101 and 1 at 101.5 -> vwap 101.25.
	got, ok := book.SlippageBps(SideBid, 2)
	if !ok {
		t.Fatal("expected the book to cover a buy of 2")
	}
	want := (101.25 - mid) / mid * 10000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("buy slippage = %v, want %v", got, want)
	}

	// Selling 2 fills entirely at the best bid 100.5; slippage is still
	// positive because the sign is flipped for sells.
	got, ok = book.SlippageBps(SideAsk, 2)
	if !ok {
		t.Fatal("expected the book to cover a sell of 2")
	}
	want = -(100.5 - mid) / mid * 10000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("sell slippage = %v, want %v", got, want)
	}

	// Too thin for the quantity.
	if _, ok := book.SlippageBps(SideBid, 10); ok {
		t.Error("expected false when asks cannot cover the quantity")
	}
	if _, ok := book.SlippageBps(SideBid, 0); ok {
		t.Error("expected false for a zero quantity")
	}
}

func TestBook_ApplyUpdate(t *testing.T) {
	book := newTestBook(t)

	// Insert a new bid between the existing levels.
	if err := book.ApplyUpdate(SideBid, 100.25, 5); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	bids := book.Bids()
	if len(bids) != 3 || bids[1] != (Level{100.25, 5}) {
		t.Errorf("bids after insert = %v", bids)
	}

	// Replace the size at an existing level.
	if err := book.ApplyUpdate(SideAsk, 101, 7); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if asks := book.Asks(); asks[0] != (Level{101, 7}) {
		t.Errorf("asks after replace = %v", asks)
	}

	// Size zero deletes the level.
	if err := book.ApplyUpdate(SideBid, 100.25, 0); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if bids, _ := book.Depth(); bids != 2 {
		t.Errorf("bid depth after delete = %d, want 2", bids)
	}

	// Deleting an absent level is a no-op.
	if err := book.ApplyUpdate(SideAsk, 999, 0); err != nil {
		t.Fatalf("no-op delete failed: %v", err)
	}
}

func TestBook_ApplyUpdateRejectsCross(t *testing.T) {
	book := newTestBook(t)

	if err := book.ApplyUpdate(SideBid, 101.2, 1); err == nil {
		t.Fatal("expected a crossing bid to be rejected")
	}
	// The book is untouched after the rejection.
	best, _ := book.BestBid()
	if best.Price != 100.5 {
		t.Errorf("best bid after rejected update = %v, want 100.5", best.Price)
	}

	if err := book.ApplyUpdate(SideAsk, 100.4, 1); err == nil {
		t.Fatal("expected a crossing ask to be rejected")
	}

	if err := book.ApplyUpdate(SideBid, -5, 1); err == nil {
		t.Error("expected an invalid price to be rejected")
	}
	if err := book.ApplyUpdate(SideBid, 100, -1); err == nil {
		t.Error("expected a negative size to be rejected")
	}
}

func TestBook_RejectedUpdateLeavesBookUntouched(t *testing.T) {
	book := newTestBook(t)

	// Free spare capacity on the bid side before the crossing insert; the
	// rejected update must not leak through the backing array.
	if err := book.ApplyUpdate(SideBid, 100, 0); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := book.ApplyUpdate(SideBid, 101.2, 1); err == nil {
		t.Fatal("expected a crossing bid to be rejected")
	}

	best, ok := book.BestBid()
	if !ok || best.Price != 100.5 {
		t.Errorf("best bid after rejected update = %v, want 100.5", best.Price)
	}
	if bids, _ := book.Depth(); bids != 1 {
		t.Errorf("bid depth after rejected update = %d, want 1", bids)
	}
	for _, lvl := range book.Bids() {
		if lvl.Price == 101.2 {
			t.Error("rejected level must not appear in the book")
		}
	}
}
