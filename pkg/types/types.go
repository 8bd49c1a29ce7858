package types

import (
	"fmt"
	"strings"
)

// SecurityType identifies the asset class of a tradable instrument.
type SecurityType string

const (
	SecurityTypeEquity       SecurityType = "equity"
	SecurityTypeForex        SecurityType = "forex"
	SecurityTypeCrypto       SecurityType = "crypto"
	SecurityTypeCfd          SecurityType = "cfd"
	SecurityTypeFuture       SecurityType = "future"
	SecurityTypeOption       SecurityType = "option"
	SecurityTypeCryptoFuture SecurityType = "cryptofuture"
	SecurityTypeIndex        SecurityType = "index"
)

// IsValid reports whether s is one of the known security types.
func (s SecurityType) IsValid() bool {
	switch s {
	case SecurityTypeEquity, SecurityTypeForex, SecurityTypeCrypto,
		SecurityTypeCfd, SecurityTypeFuture, SecurityTypeOption,
		SecurityTypeCryptoFuture, SecurityTypeIndex:
		return true
	}
	return false
}

// ParseSecurityType resolves a case-insensitive security type name.
func ParseSecurityType(s string) (SecurityType, error) {
	st := SecurityType(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown security type %q", s)
	}
	return st, nil
}

// Market names the venue an instrument trades on.
type Market string

const (
	MarketBinance Market = "binance"
	MarketBybit   Market = "bybit"
	MarketFXCM    Market = "fxcm"
	MarketTradier Market = "tradier"
	MarketUSA     Market = "usa"
	MarketOanda   Market = "oanda"
)

// Symbol identifies one tradable instrument on one venue.
type Symbol struct {
	Ticker       string
	SecurityType SecurityType
	Market       Market
}

// NewSymbol builds a symbol with an upper-cased ticker.
func NewSymbol(ticker string, st SecurityType, market Market) Symbol {
	return Symbol{
		Ticker:       strings.ToUpper(strings.TrimSpace(ticker)),
		SecurityType: st,
		Market:       market,
	}
}

// IsZero reports whether the symbol carries no ticker.
func (s Symbol) IsZero() bool {
	return s.Ticker == ""
}

func (s Symbol) String() string {
	return s.Ticker
}

// knownQuoteCurrencies is ordered longest-first so USDT wins over USD when
// splitting concatenated crypto pairs.
var knownQuoteCurrencies = []string{
	"USDT", "USDC", "BUSD", "TUSD", "USD", "EUR", "GBP", "JPY", "BTC", "ETH", "BNB",
}

// PairCurrencies splits a forex or crypto pair ticker into base and quote
// currencies. Forex tickers are the concatenation of two 3-letter codes;
// crypto tickers are matched against the known quote currency table.
func (s Symbol) PairCurrencies() (base, quote string, err error) {
	switch s.SecurityType {
	case SecurityTypeForex, SecurityTypeCfd:
		if len(s.Ticker) != 6 {
			return "", "", fmt.Errorf("forex ticker %q is not a 6-letter pair", s.Ticker)
		}
		return s.Ticker[:3], s.Ticker[3:], nil
	case SecurityTypeCrypto, SecurityTypeCryptoFuture:
		for _, q := range knownQuoteCurrencies {
			if strings.HasSuffix(s.Ticker, q) && len(s.Ticker) > len(q) {
				return s.Ticker[:len(s.Ticker)-len(q)], q, nil
			}
		}
		return "", "", fmt.Errorf("cannot split crypto pair %q into currencies", s.Ticker)
	default:
		return "", "", fmt.Errorf("%s symbols are not currency pairs", s.SecurityType)
	}
}

// AccountType distinguishes cash from margin accounts.
type AccountType string

const (
	AccountTypeCash   AccountType = "cash"
	AccountTypeMargin AccountType = "margin"
)

// TimeInForce controls how long an order rests before expiring.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
	TimeInForceFOK TimeInForce = "fok"
	TimeInForceDay TimeInForce = "day"
)

// SymbolProperties carries the venue trading filters for one instrument.
type SymbolProperties struct {
	LotSize            float64 // quantity step
	TickSize           float64 // price step
	MinNotional        float64 // minimum order value in quote currency
	MinOrderQuantity   float64
	MaxOrderQuantity   float64 // 0 means unbounded
	ContractMultiplier float64
}

// DefaultSymbolProperties returns permissive filters for offline use.
func DefaultSymbolProperties() SymbolProperties {
	return SymbolProperties{
		LotSize:            0,
		TickSize:           0,
		MinNotional:        0,
		MinOrderQuantity:   0,
		MaxOrderQuantity:   0,
		ContractMultiplier: 1,
	}
}
