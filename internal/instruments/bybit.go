// Package instruments fetches live trading filters from Bybit so the
// brokerage models can validate against the venue's current lot size, tick
// size, minimum notional and leverage limits instead of static defaults.
package instruments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"go.uber.org/zap"

	"github.com/quantfold/brokerage/pkg/types"
)

// Filters is one instrument's venue constraints plus its leverage range.
type Filters struct {
	Symbol      string
	Properties  types.SymbolProperties
	MinLeverage float64
	MaxLeverage float64
	FetchedAt   time.Time
}

// BybitClientConfig holds the credentials and environment for the fetcher.
type BybitClientConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
}

// BybitFetcher retrieves and caches instrument filters from the Bybit v5
// instruments-info endpoint. Safe for concurrent use.
type BybitFetcher struct {
	client *bybit_api.Client
	log    *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Filters
	ttl   time.Duration
}

// NewBybitFetcher creates a fetcher with the given cache TTL.
func NewBybitFetcher(cfg BybitClientConfig, ttl time.Duration, log *zap.Logger) *BybitFetcher {
	baseURL := bybit_api.MAINNET
	if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BybitFetcher{
		client: bybit_api.NewBybitHttpClient(cfg.APIKey, cfg.APISecret, bybit_api.WithBaseURL(baseURL)),
		log:    log,
		cache:  make(map[string]*Filters),
		ttl:    ttl,
	}
}

// Get returns the filters for a symbol, fetching from the API when the cache
// entry is missing or stale. Category is the Bybit product category ("spot",
// "linear", "inverse").
func (f *BybitFetcher) Get(ctx context.Context, category, symbol string) (*Filters, error) {
	f.mu.RLock()
	cached, ok := f.cache[symbol]
	f.mu.RUnlock()
	if ok && time.Since(cached.FetchedAt) < f.ttl {
		return cached, nil
	}

	filters, err := f.fetch(ctx, category, symbol)
	if err != nil {
		// A stale entry beats a hard failure.
		if ok {
			f.log.Warn("instrument refresh failed, serving stale filters",
				zap.String("symbol", symbol), zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	f.mu.Lock()
	f.cache[symbol] = filters
	f.mu.Unlock()

	f.log.Debug("instrument filters refreshed",
		zap.String("symbol", symbol),
		zap.Float64("lot_size", filters.Properties.LotSize),
		zap.Float64("min_notional", filters.Properties.MinNotional))
	return filters, nil
}

func (f *BybitFetcher) fetch(ctx context.Context, category, symbol string) (*Filters, error) {
	params := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}

	result, err := f.client.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch instrument info for %s: %w", symbol, err)
	}
	return parseResponse(result, symbol)
}

type instrumentRow struct {
	Symbol         string `json:"symbol"`
	Status         string `json:"status"`
	LeverageFilter struct {
		MinLeverage string `json:"minLeverage"`
		MaxLeverage string `json:"maxLeverage"`
	} `json:"leverageFilter"`
	PriceFilter struct {
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
	LotSizeFilter struct {
		MinNotionalValue string `json:"minNotionalValue"`
		MaxOrderQty      string `json:"maxOrderQty"`
		MinOrderQty      string `json:"minOrderQty"`
		QtyStep          string `json:"qtyStep"`
	} `json:"lotSizeFilter"`
}

func parseResponse(response interface{}, symbol string) (*Filters, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", response)
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("bybit API error: %s (code %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	var body struct {
		List []instrumentRow `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &body); err != nil {
		return nil, fmt.Errorf("unmarshal instrument list: %w", err)
	}

	for _, row := range body.List {
		if row.Symbol != symbol {
			continue
		}
		return rowToFilters(row), nil
	}
	return nil, fmt.Errorf("symbol %s not present in instrument response", symbol)
}

func rowToFilters(row instrumentRow) *Filters {
	props := types.DefaultSymbolProperties()
	props.TickSize = parseFloat(row.PriceFilter.TickSize)
	props.LotSize = parseFloat(row.LotSizeFilter.QtyStep)
	props.MinNotional = parseFloat(row.LotSizeFilter.MinNotionalValue)
	props.MinOrderQuantity = parseFloat(row.LotSizeFilter.MinOrderQty)
	props.MaxOrderQuantity = parseFloat(row.LotSizeFilter.MaxOrderQty)

	return &Filters{
		Symbol:      row.Symbol,
		Properties:  props,
		MinLeverage: parseFloat(row.LeverageFilter.MinLeverage),
		MaxLeverage: parseFloat(row.LeverageFilter.MaxLeverage),
		FetchedAt:   time.Now(),
	}
}

// parseFloat tolerates the empty strings Bybit sends for unset filters.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
