package fees

import "github.com/quantfold/brokerage/pkg/types"

// Broker fee schedules. Rates are the published base tiers without volume
// discounts.

// NewBinanceSpot returns the Binance spot schedule (10 bps / 10 bps).
func NewBinanceSpot() *Percent {
	return NewPercent(0.001, 0.001)
}

// NewBinanceFutures returns the Binance USD-M futures schedule (2 / 5 bps).
func NewBinanceFutures() *Percent {
	return NewPercent(0.0002, 0.0005)
}

// NewBybitSpot returns the Bybit spot schedule (10 bps / 10 bps).
func NewBybitSpot() *Percent {
	return NewPercent(0.001, 0.001)
}

// NewBybitFutures returns the Bybit derivatives schedule (2 / 5.5 bps).
func NewBybitFutures() *Percent {
	return NewPercent(0.0002, 0.00055)
}

// NewFxcm returns the FXCM commission schedule: $0.04 per 1k micro lot.
func NewFxcm() *FxPerLot {
	return NewFxPerLot(0.04, 1000)
}

// Tradier charges nothing on equities and a per-contract rate with a minimum
// on options.
type Tradier struct {
	equity  *Constant
	options *PerShare
}

// NewTradier returns the Tradier commission schedule.
func NewTradier() *Tradier {
	return &Tradier{
		equity:  NewConstant(0),
		options: NewPerShare(0.35, 5),
	}
}

func (t *Tradier) Fee(security *types.Security, order *types.Order) Fee {
	if security.Symbol.SecurityType == types.SecurityTypeOption {
		return t.options.Fee(security, order)
	}
	return t.equity.Fee(security, order)
}

// ForCrypto picks the spot or futures schedule for a crypto security.
func ForCrypto(st types.SecurityType, spot, futures *Percent) *Percent {
	if st == types.SecurityTypeCryptoFuture {
		return futures
	}
	return spot
}
