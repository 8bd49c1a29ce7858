package types

import "math"

// PriceCache holds the most recent market prices for a security.
type PriceCache struct {
	Bid   float64
	Ask   float64
	Last  float64
	Close float64
}

// Mid returns the bid/ask midpoint, falling back to last then close when one
// side of the quote is missing.
func (p PriceCache) Mid() float64 {
	if p.Bid > 0 && p.Ask > 0 {
		return (p.Bid + p.Ask) / 2
	}
	if p.Last > 0 {
		return p.Last
	}
	return p.Close
}

// Security is one instrument plus its current trading state: holdings,
// quote currency, leverage and venue filters.
type Security struct {
	Symbol        Symbol
	QuoteCurrency string
	// Holdings is the signed position in units of the instrument.
	Holdings float64
	// AvgHoldingsPrice is the average entry price of Holdings.
	AvgHoldingsPrice float64
	Leverage         float64
	Properties       SymbolProperties
	Price            PriceCache
}

// NewSecurity builds a security with permissive default filters and 1x leverage.
func NewSecurity(symbol Symbol) *Security {
	return &Security{
		Symbol:        symbol,
		QuoteCurrency: "USD",
		Leverage:      1,
		Properties:    DefaultSymbolProperties(),
	}
}

// MarketPrice is the price used for notional and margin computations.
func (s *Security) MarketPrice() float64 {
	return s.Price.Mid()
}

// QuantityValue is the signed market value of a quantity of the instrument,
// contract multiplier included.
func (s *Security) QuantityValue(quantity float64) float64 {
	return quantity * s.MarketPrice() * s.contractMultiplier()
}

// HoldingsValue is the signed market value of the current position.
func (s *Security) HoldingsValue() float64 {
	return s.QuantityValue(s.Holdings)
}

// AbsHoldings returns the unsigned position size.
func (s *Security) AbsHoldings() float64 {
	return math.Abs(s.Holdings)
}

// IsLong and IsShort report the direction of the open position.
func (s *Security) IsLong() bool  { return s.Holdings > 0 }
func (s *Security) IsShort() bool { return s.Holdings < 0 }

// RoundToLotSize rounds quantity toward zero to the venue quantity step.
// Quantities survive unchanged when no lot size is configured.
func (s *Security) RoundToLotSize(quantity float64) float64 {
	lot := s.Properties.LotSize
	if lot <= 0 {
		return quantity
	}
	lots := math.Trunc(quantity / lot)
	return lots * lot
}

func (s *Security) contractMultiplier() float64 {
	if s.Properties.ContractMultiplier > 0 {
		return s.Properties.ContractMultiplier
	}
	return 1
}

// Portfolio is the minimal account state the buying power models need.
type Portfolio struct {
	// Cash is settled cash in the account currency.
	Cash float64
	// UnsettledCash is proceeds awaiting settlement; spendable on margin
	// accounts only.
	UnsettledCash float64
	AccountType   AccountType
}

// TotalCash returns the cash usable for new positions under the account type.
func (p Portfolio) TotalCash() float64 {
	if p.AccountType == AccountTypeMargin {
		return p.Cash + p.UnsettledCash
	}
	return p.Cash
}
