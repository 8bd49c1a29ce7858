package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/quantfold/brokerage/internal/config"
	"github.com/quantfold/brokerage/internal/logger"
	"github.com/quantfold/brokerage/pkg/bars"
	"github.com/quantfold/brokerage/pkg/orderbook"
	"github.com/quantfold/brokerage/pkg/types"
)

func main() {
	var (
		kind     = flag.String("kind", "trade", "File kind: trade, quote or depth")
		ticker   = flag.String("symbol", "", "Symbol ticker, e.g. BTCUSDT")
		secType  = flag.String("security-type", "crypto", "Security type of the symbol")
		market   = flag.String("market", "binance", "Market the data belongs to")
		dateStr  = flag.String("date", "", "Trading date as yyyymmdd")
		period   = flag.Duration("period", time.Minute, "Bar period of the file")
		filePath = flag.String("file", "", "Explicit file path (overrides the data dir layout)")
		limit    = flag.Int("limit", 20, "Rows to print")
	)
	flag.Parse()

	if *ticker == "" {
		log.Fatal("Please specify a symbol with -symbol")
	}

	cfg := config.Load()
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	st, err := types.ParseSecurityType(*secType)
	if err != nil {
		log.Fatalf("Bad security type: %v", err)
	}
	symbol := types.NewSymbol(*ticker, st, types.Market(*market))

	date := time.Now().UTC()
	if *dateStr != "" {
		date, err = time.Parse("20060102", *dateStr)
		if err != nil {
			log.Fatalf("Bad date %q: %v", *dateStr, err)
		}
	}

	dataTZ, err := time.LoadLocation(cfg.Data.DataTimezone)
	if err != nil {
		log.Fatalf("Bad data timezone: %v", err)
	}
	exchangeTZ, err := time.LoadLocation(cfg.Data.ExchangeTimezone)
	if err != nil {
		log.Fatalf("Bad exchange timezone: %v", err)
	}

	path := *filePath
	switch *kind {
	case "trade", "quote":
		if path == "" {
			path = bars.DataFilePath(cfg.Data.Dir, symbol, date, *kind)
		}
		ctx := bars.LineContext{
			Symbol:           symbol,
			Date:             date,
			Period:           *period,
			DataTimezone:     dataTZ,
			ExchangeTimezone: exchangeTZ,
		}
		if *kind == "trade" {
			dumpTradeBars(path, ctx, zlog, *limit)
		} else {
			dumpQuoteBars(path, ctx, zlog, *limit)
		}
	case "depth":
		if path == "" {
			path = orderbook.DepthFilePath(cfg.Data.Dir, symbol, date)
		}
		dumpDepth(path, symbol.Ticker, zlog, *limit)
	default:
		log.Fatalf("Unknown kind %q (want trade, quote or depth)", *kind)
	}
}

func dumpTradeBars(path string, ctx bars.LineContext, zlog *zap.Logger, limit int) {
	result, err := bars.LoadTradeBarFile(path, ctx, zlog)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADE BARS - %s", ctx.Symbol)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Open", "High", "Low", "Close", "Volume"})
	for i, bar := range result.Bars {
		if i >= limit {
			break
		}
		t.AppendRow(table.Row{
			bar.Time.Format("2006-01-02 15:04:05"),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		})
	}
	t.Render()
	fmt.Printf("%d bars, %d malformed lines skipped\n", len(result.Bars), result.Skipped)
}

func dumpQuoteBars(path string, ctx bars.LineContext, zlog *zap.Logger, limit int) {
	result, err := bars.LoadQuoteBarFile(path, ctx, zlog)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("QUOTE BARS - %s", ctx.Symbol)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Bid Close", "Ask Close", "Mid", "Bid Size", "Ask Size"})
	for i, bar := range result.Bars {
		if i >= limit {
			break
		}
		bidClose, askClose := 0.0, 0.0
		if bar.Bid != nil {
			bidClose = bar.Bid.Close
		}
		if bar.Ask != nil {
			askClose = bar.Ask.Close
		}
		t.AppendRow(table.Row{
			bar.Time.Format("2006-01-02 15:04:05"),
			bidClose, askClose, bar.Value(), bar.LastBidSize, bar.LastAskSize,
		})
	}
	t.Render()
	fmt.Printf("%d bars, %d malformed lines skipped\n", len(result.Bars), result.Skipped)
}

func dumpDepth(path, symbol string, zlog *zap.Logger, limit int) {
	result, err := orderbook.LoadDepthFile(path, symbol, zlog)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DEPTH SNAPSHOTS - %s", symbol)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Best Bid", "Best Ask", "Mid", "Spread (bps)", "Levels"})
	for i, book := range result.Books {
		if i >= limit {
			break
		}
		bid, _ := book.BestBid()
		ask, _ := book.BestAsk()
		nBids, nAsks := book.Depth()
		t.AppendRow(table.Row{
			book.Timestamp.Format("2006-01-02 15:04:05.000"),
			bid.Price, ask.Price, book.MidPrice(),
			fmt.Sprintf("%.2f", book.SpreadBps()),
			fmt.Sprintf("%d/%d", nBids, nAsks),
		})
	}
	t.Render()
	fmt.Printf("%d snapshots, %d malformed lines skipped\n", len(result.Books), result.Skipped)
}
