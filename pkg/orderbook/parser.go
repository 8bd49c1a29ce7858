package orderbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantfold/brokerage/internal/monitoring"
	"github.com/quantfold/brokerage/pkg/types"
)

// Depth snapshot CSV line layout:
//
//	timestampMs,bidPx1,bidSz1,...,bidPxN,bidSzN,askPx1,askSz1,...,askPxN,askSzN
//
// with bids best-first descending and asks best-first ascending. The field
// count implies the depth; both sides carry the same number of levels.

// ParseSnapshotLine decodes one depth line. Malformed input (wrong field
// count, bad numbers, unsorted or crossed levels, bad timestamp) yields a
// nil book and a diagnostic error.
func ParseSnapshotLine(symbol string, fields []string) (*Book, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("depth line needs a timestamp and at least one level per side, got %d fields", len(fields))
	}
	if (len(fields)-1)%4 != 0 {
		return nil, fmt.Errorf("depth line has %d level fields, want a multiple of 4", len(fields)-1)
	}

	tsMs, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil || tsMs < 0 {
		return nil, fmt.Errorf("bad depth timestamp %q", fields[0])
	}
	ts := time.UnixMilli(tsMs).UTC()

	depth := (len(fields) - 1) / 4
	bids, err := parseLevels(fields[1 : 1+2*depth])
	if err != nil {
		return nil, fmt.Errorf("bid side: %w", err)
	}
	asks, err := parseLevels(fields[1+2*depth:])
	if err != nil {
		return nil, fmt.Errorf("ask side: %w", err)
	}

	return New(symbol, ts, bids, asks)
}

func parseLevels(fields []string) ([]Level, error) {
	levels := make([]Level, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		price, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad price %q", fields[i])
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad size %q", fields[i+1])
		}
		levels = append(levels, Level{Price: price, Size: size})
	}
	return levels, nil
}

// DepthFilePath builds the historical depth file location:
// <dataDir>/<securityType>/<market>/<symbol>/<yyyymmdd>_depth.csv
// with the symbol lower-cased, matching the layout of the data directory.
func DepthFilePath(dataDir string, symbol types.Symbol, date time.Time) string {
	return filepath.Join(dataDir,
		string(symbol.SecurityType),
		string(symbol.Market),
		strings.ToLower(symbol.Ticker),
		date.Format("20060102")+"_depth.csv")
}

// LoadResult is the outcome of reading a depth file: the decoded snapshots
// plus the number of malformed lines skipped.
type LoadResult struct {
	Books   []*Book
	Skipped int
}

// LoadDepthFile reads every snapshot in a depth CSV file. Malformed lines
// are counted, logged and skipped rather than failing the whole file.
func LoadDepthFile(path, symbol string, log *zap.Logger) (*LoadResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	result := &LoadResult{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s at line %d: %w", path, line+1, err)
		}
		line++

		book, err := ParseSnapshotLine(symbol, record)
		if err != nil {
			result.Skipped++
			monitoring.RecordParseError("depth")
			log.Warn("skipping malformed depth line",
				zap.String("file", path), zap.Int("line", line), zap.Error(err))
			continue
		}
		monitoring.RecordLineParsed("depth")
		result.Books = append(result.Books, book)
	}
	return result, nil
}
