// Package symbols translates between canonical symbols and the ticker
// strings each broker expects on the wire.
package symbols

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantfold/brokerage/pkg/types"
)

// Mapper converts symbols to and from a broker's native representation.
type Mapper interface {
	ToBroker(symbol types.Symbol) (string, error)
	FromBroker(ticker string, st types.SecurityType) (types.Symbol, error)
}

// CryptoPair maps concatenated crypto pairs (BTCUSDT) for venues like
// Binance and Bybit. The canonical ticker is already concatenated, so the
// mapping validates rather than rewrites.
type CryptoPair struct {
	market types.Market
}

// NewCryptoPair creates a mapper for the given crypto venue.
func NewCryptoPair(market types.Market) *CryptoPair {
	return &CryptoPair{market: market}
}

func (m *CryptoPair) ToBroker(symbol types.Symbol) (string, error) {
	switch symbol.SecurityType {
	case types.SecurityTypeCrypto, types.SecurityTypeCryptoFuture:
	default:
		return "", fmt.Errorf("%s does not trade %s securities", m.market, symbol.SecurityType)
	}
	if _, _, err := symbol.PairCurrencies(); err != nil {
		return "", err
	}
	return symbol.Ticker, nil
}

func (m *CryptoPair) FromBroker(ticker string, st types.SecurityType) (types.Symbol, error) {
	symbol := types.NewSymbol(ticker, st, m.market)
	if _, _, err := symbol.PairCurrencies(); err != nil {
		return types.Symbol{}, fmt.Errorf("unrecognized %s ticker %q: %w", m.market, ticker, err)
	}
	return symbol, nil
}

// fxcmCfdNames maps canonical CFD tickers to FXCM instrument names.
var fxcmCfdNames = map[string]string{
	"DE30":  "GER30",
	"UK100": "UK100",
	"US30":  "US30",
	"SPX":   "SPX500",
	"NAS":   "NAS100",
	"XAU":   "XAU/USD",
	"XAG":   "XAG/USD",
}

// Fxcm maps forex pairs to FXCM's slash-separated form (EURUSD -> EUR/USD)
// and CFDs through a fixed name table.
type Fxcm struct{}

// NewFxcm creates the FXCM symbol mapper.
func NewFxcm() *Fxcm {
	return &Fxcm{}
}

func (m *Fxcm) ToBroker(symbol types.Symbol) (string, error) {
	switch symbol.SecurityType {
	case types.SecurityTypeForex:
		base, quote, err := symbol.PairCurrencies()
		if err != nil {
			return "", err
		}
		return base + "/" + quote, nil
	case types.SecurityTypeCfd:
		if name, ok := fxcmCfdNames[symbol.Ticker]; ok {
			return name, nil
		}
		return "", fmt.Errorf("no FXCM instrument for CFD %q", symbol.Ticker)
	default:
		return "", fmt.Errorf("FXCM does not trade %s securities", symbol.SecurityType)
	}
}

func (m *Fxcm) FromBroker(ticker string, st types.SecurityType) (types.Symbol, error) {
	switch st {
	case types.SecurityTypeForex:
		parts := strings.Split(ticker, "/")
		if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
			return types.Symbol{}, fmt.Errorf("unrecognized FXCM forex ticker %q", ticker)
		}
		return types.NewSymbol(parts[0]+parts[1], st, types.MarketFXCM), nil
	case types.SecurityTypeCfd:
		for canonical, name := range fxcmCfdNames {
			if name == ticker {
				return types.NewSymbol(canonical, st, types.MarketFXCM), nil
			}
		}
		return types.Symbol{}, fmt.Errorf("unrecognized FXCM CFD %q", ticker)
	default:
		return types.Symbol{}, fmt.Errorf("FXCM does not trade %s securities", st)
	}
}

// OptionContract describes one listed option for OCC symbology.
type OptionContract struct {
	Underlying string
	Expiry     time.Time
	// Call is true for calls, false for puts.
	Call   bool
	Strike float64
}

// Tradier passes equities through unchanged and renders options in OCC
// 21-byte symbology: padded root, yymmdd, C/P, strike in thousandths padded
// to eight digits.
type Tradier struct{}

// NewTradier creates the Tradier symbol mapper.
func NewTradier() *Tradier {
	return &Tradier{}
}

func (m *Tradier) ToBroker(symbol types.Symbol) (string, error) {
	switch symbol.SecurityType {
	case types.SecurityTypeEquity:
		if symbol.Ticker == "" {
			return "", fmt.Errorf("empty equity ticker")
		}
		return symbol.Ticker, nil
	case types.SecurityTypeOption:
		// Canonical option tickers are already OCC strings.
		if _, err := ParseOCC(symbol.Ticker); err != nil {
			return "", err
		}
		return symbol.Ticker, nil
	default:
		return "", fmt.Errorf("Tradier does not trade %s securities", symbol.SecurityType)
	}
}

func (m *Tradier) FromBroker(ticker string, st types.SecurityType) (types.Symbol, error) {
	switch st {
	case types.SecurityTypeEquity:
		if ticker == "" {
			return types.Symbol{}, fmt.Errorf("empty equity ticker")
		}
		return types.NewSymbol(ticker, st, types.MarketTradier), nil
	case types.SecurityTypeOption:
		if _, err := ParseOCC(ticker); err != nil {
			return types.Symbol{}, err
		}
		return types.NewSymbol(ticker, st, types.MarketTradier), nil
	default:
		return types.Symbol{}, fmt.Errorf("Tradier does not trade %s securities", st)
	}
}

// FormatOCC renders an option contract in OCC symbology, e.g.
// SPY240119C00475000.
func FormatOCC(c OptionContract) (string, error) {
	if c.Underlying == "" {
		return "", fmt.Errorf("option contract has no underlying")
	}
	if c.Strike <= 0 {
		return "", fmt.Errorf("option strike must be positive, got %v", c.Strike)
	}
	right := "P"
	if c.Call {
		right = "C"
	}
	strike := int64(c.Strike*1000 + 0.5)
	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(c.Underlying), c.Expiry.Format("060102"), right, strike), nil
}

// ParseOCC decodes an OCC option symbol back into its contract terms.
func ParseOCC(s string) (OptionContract, error) {
	// Root is variable length; the tail is fixed: yymmdd + right + 8 digits.
	const tail = 6 + 1 + 8
	if len(s) <= tail {
		return OptionContract{}, fmt.Errorf("option symbol %q too short for OCC form", s)
	}
	root := s[:len(s)-tail]
	rest := s[len(s)-tail:]

	expiry, err := time.Parse("060102", rest[:6])
	if err != nil {
		return OptionContract{}, fmt.Errorf("bad expiry in option symbol %q: %w", s, err)
	}
	right := rest[6]
	if right != 'C' && right != 'P' {
		return OptionContract{}, fmt.Errorf("bad right %q in option symbol %q", right, s)
	}
	thousandths, err := strconv.ParseInt(rest[7:], 10, 64)
	if err != nil {
		return OptionContract{}, fmt.Errorf("bad strike in option symbol %q: %w", s, err)
	}
	return OptionContract{
		Underlying: root,
		Expiry:     expiry,
		Call:       right == 'C',
		Strike:     float64(thousandths) / 1000,
	}, nil
}
