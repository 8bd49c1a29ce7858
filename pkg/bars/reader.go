package bars

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantfold/brokerage/internal/monitoring"
	"github.com/quantfold/brokerage/pkg/types"
)

// DataFilePath builds the historical data file location:
// <dataDir>/<securityType>/<market>/<symbol>/<yyyymmdd>_<kind>.csv
// where kind is "trade" or "quote". The symbol is lower-cased to match the
// on-disk layout.
func DataFilePath(dataDir string, symbol types.Symbol, date time.Time, kind string) string {
	return filepath.Join(dataDir,
		string(symbol.SecurityType),
		string(symbol.Market),
		strings.ToLower(symbol.Ticker),
		date.Format("20060102")+"_"+kind+".csv")
}

// TradeBarResult is the outcome of reading a trade bar file.
type TradeBarResult struct {
	Bars    []*TradeBar
	Skipped int
}

// QuoteBarResult is the outcome of reading a quote bar file.
type QuoteBarResult struct {
	Bars    []*QuoteBar
	Skipped int
}

// LoadTradeBarFile reads every bar in a trade CSV file. Malformed lines are
// counted, logged and skipped; only I/O failures abort the read.
func LoadTradeBarFile(path string, ctx LineContext, log *zap.Logger) (*TradeBarResult, error) {
	result := &TradeBarResult{}
	err := readCSV(path, log, "trade", func(record []string) error {
		bar, err := ParseTradeBarLine(record, ctx)
		if err != nil {
			result.Skipped++
			return err
		}
		result.Bars = append(result.Bars, bar)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LoadQuoteBarFile reads every bar in a quote CSV file with the same
// skip-and-count discipline as LoadTradeBarFile.
func LoadQuoteBarFile(path string, ctx LineContext, log *zap.Logger) (*QuoteBarResult, error) {
	result := &QuoteBarResult{}
	err := readCSV(path, log, "quote", func(record []string) error {
		bar, err := ParseQuoteBarLine(record, ctx)
		if err != nil {
			result.Skipped++
			return err
		}
		result.Bars = append(result.Bars, bar)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func readCSV(path string, log *zap.Logger, format string, handle func([]string) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s at line %d: %w", path, line+1, err)
		}
		line++

		if err := handle(record); err != nil {
			monitoring.RecordParseError(format)
			log.Warn("skipping malformed line",
				zap.String("file", path),
				zap.String("format", format),
				zap.Int("line", line),
				zap.Error(err))
			continue
		}
		monitoring.RecordLineParsed(format)
	}
}
