package brokerage

import (
	"fmt"
	"strings"

	"github.com/quantfold/brokerage/internal/symbols"
	"github.com/quantfold/brokerage/pkg/types"
)

// Factory resolves brokerage models and symbol mappers by broker name.
type Factory struct{}

// NewFactory creates a new brokerage model factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateModel builds the model for a case-insensitive broker name.
func (f *Factory) CreateModel(name string, accountType types.AccountType) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return NewDefault(accountType), nil
	case "binance":
		return NewBinance(accountType), nil
	case "bybit":
		return NewBybit(accountType, 0), nil
	case "fxcm":
		return NewFxcm(), nil
	case "tradier":
		return NewTradier(accountType), nil
	default:
		return nil, fmt.Errorf("unsupported brokerage %q (supported: %s)",
			name, strings.Join(f.SupportedBrokerages(), ", "))
	}
}

// CreateMapper builds the symbol mapper for a broker name.
func (f *Factory) CreateMapper(name string) (symbols.Mapper, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binance":
		return symbols.NewCryptoPair(types.MarketBinance), nil
	case "bybit":
		return symbols.NewCryptoPair(types.MarketBybit), nil
	case "fxcm":
		return symbols.NewFxcm(), nil
	case "tradier", "", "default":
		return symbols.NewTradier(), nil
	default:
		return nil, fmt.Errorf("no symbol mapper for brokerage %q", name)
	}
}

// SupportedBrokerages lists the broker names CreateModel accepts.
func (f *Factory) SupportedBrokerages() []string {
	return []string{"default", "binance", "bybit", "fxcm", "tradier"}
}
