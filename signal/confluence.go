package signal

import (
	"context"
	"fmt"

	"fxsentinel/indicators"
)

// Confluence is the rule-based entry source. A candidate requires three
// conditions to agree on the same bar:
//   - ADX above the trend-strength threshold
//   - MACD histogram sign flipped between the previous and current bar
//   - RSI on the confirming side of its threshold
//
// Any undefined indicator voids the cycle.
type Confluence struct {
	ADXThreshold float64
	RSIBuy       float64
	RSISell      float64
}

// NewConfluence returns the rule with the given thresholds.
func NewConfluence(adxThreshold, rsiBuy, rsiSell float64) *Confluence {
	return &Confluence{ADXThreshold: adxThreshold, RSIBuy: rsiBuy, RSISell: rsiSell}
}

func (c *Confluence) Name() string { return "confluence" }

func (c *Confluence) Decide(_ context.Context, snap indicators.Snapshot) Decision {
	adx, ok := snap.Get(indicators.KeyADX)
	if !ok {
		return Decision{Hold, "ADX undefined"}
	}
	hist, ok := snap.Get(indicators.KeyMACDHist)
	if !ok {
		return Decision{Hold, "MACD histogram undefined"}
	}
	prev, ok := snap.Get(indicators.KeyMACDHistPrev)
	if !ok {
		return Decision{Hold, "previous MACD histogram undefined"}
	}
	rsi, ok := snap.Get(indicators.KeyRSI)
	if !ok {
		return Decision{Hold, "RSI undefined"}
	}

	if adx <= c.ADXThreshold {
		return Decision{Hold, fmt.Sprintf("ADX %.1f below threshold %.1f", adx, c.ADXThreshold)}
	}

	// Entry fires only on an exact sign flip, not a mere threshold breach.
	flipUp := hist > 0 && prev < 0
	flipDown := hist < 0 && prev > 0

	switch {
	case flipUp && rsi > c.RSIBuy:
		return Decision{Buy, fmt.Sprintf("MACD flip %+.6f->%+.6f, RSI %.1f, ADX %.1f", prev, hist, rsi, adx)}
	case flipDown && rsi < c.RSISell:
		return Decision{Sell, fmt.Sprintf("MACD flip %+.6f->%+.6f, RSI %.1f, ADX %.1f", prev, hist, rsi, adx)}
	case flipUp || flipDown:
		return Decision{Hold, fmt.Sprintf("MACD flipped but RSI %.1f does not confirm", rsi)}
	default:
		return Decision{Hold, "no MACD sign flip"}
	}
}
