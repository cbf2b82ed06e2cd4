package signal

import (
	"fmt"

	"fxsentinel/indicators"
	"fxsentinel/market"
)

// ShouldExit evaluates the rule-based exit conditions for an open position.
// It is independent of the entry rule and consulted every cycle:
//   - long positions exit when the bid crosses below the exit EMA, or the
//     MACD histogram turns negative
//   - short positions exit when the ask crosses above the exit EMA, or the
//     MACD histogram turns positive
//
// Undefined indicator values skip their condition; they never force an exit.
func ShouldExit(pos market.Position, snap indicators.Snapshot) (bool, string) {
	isBuy := pos.Side == market.Buy

	ema, emaOK := snap.Get(indicators.KeyExitEMA)
	bid, bidOK := snap.Get(indicators.KeyBid)
	ask, askOK := snap.Get(indicators.KeyAsk)

	if emaOK && bidOK && askOK {
		if isBuy && bid < ema {
			return true, fmt.Sprintf("bid %.5f below exit EMA %.5f", bid, ema)
		}
		if !isBuy && ask > ema {
			return true, fmt.Sprintf("ask %.5f above exit EMA %.5f", ask, ema)
		}
	}

	if hist, ok := snap.Get(indicators.KeyMACDHist); ok {
		if isBuy && hist < 0 {
			return true, fmt.Sprintf("MACD histogram turned negative (%.6f)", hist)
		}
		if !isBuy && hist > 0 {
			return true, fmt.Sprintf("MACD histogram turned positive (%.6f)", hist)
		}
	}

	return false, ""
}
