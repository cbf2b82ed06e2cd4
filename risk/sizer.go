// Package risk converts the account risk budget and a volatility-derived
// stop distance into an executable position size.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fxsentinel/market"
)

// ErrNoConversion means neither the forward nor the inverse conversion pair
// had a usable quote; sizing fails and no trade is placed.
var ErrNoConversion = errors.New("no conversion pair available")

// ErrNonPositiveRisk means the computed loss per lot was zero or negative
// (for example a zero ATR). Sizing fails explicitly instead of silently
// falling back to the minimum tradable size.
var ErrNonPositiveRisk = errors.New("non-positive risk per lot")

// Sizer computes volumes under a fixed fractional risk budget.
type Sizer struct {
	// RiskPct is the fraction of the account balance put at risk per
	// trade, e.g. 0.005 for 0.5%.
	RiskPct float64

	// Quotes resolves currency-conversion pairs when the instrument's
	// quote currency differs from the account currency.
	Quotes market.QuoteSource
}

// NewSizer builds a Sizer.
func NewSizer(riskPct float64, quotes market.QuoteSource) *Sizer {
	return &Sizer{RiskPct: riskPct, Quotes: quotes}
}

// Volume returns the lot size for a trade whose stop sits stopDistance away
// in price terms. The result is clamped to the instrument's volume envelope
// and quantized to its step; after quantization the floor is re-imposed.
func (s *Sizer) Volume(ctx context.Context, acct market.Account, meta market.InstrumentMeta, stopDistance float64) (float64, error) {
	lossPerLot := stopDistance * meta.ContractSize // in quote currency

	lossInAccount := lossPerLot
	if meta.QuoteCurrency != acct.Currency {
		rate, err := s.conversionRate(ctx, meta.QuoteCurrency, acct.Currency)
		if err != nil {
			return 0, fmt.Errorf("size %s: %w", meta.Name, err)
		}
		lossInAccount = lossPerLot * rate
	}

	if lossInAccount <= 0 {
		return 0, fmt.Errorf("size %s: %w (stop distance %.6f)", meta.Name, ErrNonPositiveRisk, stopDistance)
	}

	riskAmount := acct.Balance * s.RiskPct
	desired := riskAmount / lossInAccount

	lot := math.Max(meta.VolumeMin, math.Min(desired, meta.VolumeMax))
	if meta.VolumeStep > 0 {
		lot = math.Round(lot/meta.VolumeStep) * meta.VolumeStep
	}
	lot = math.Max(meta.VolumeMin, lot)
	return lot, nil
}

// conversionRate finds the factor that maps an amount in the quote currency
// to the account currency. It tries the forward pair (QUOTEACCOUNT, ask)
// first and the inverse pair (ACCOUNTQUOTE, bid) second.
func (s *Sizer) conversionRate(ctx context.Context, quote, account string) (float64, error) {
	forward := quote + account
	if tick, err := s.Quotes.Tick(ctx, forward); err == nil && tick.Ask > 0 {
		return tick.Ask, nil
	}

	inverse := account + quote
	if tick, err := s.Quotes.Tick(ctx, inverse); err == nil && tick.Bid > 0 {
		return 1 / tick.Bid, nil
	}

	return 0, fmt.Errorf("%w: tried %s and %s", ErrNoConversion, forward, inverse)
}
