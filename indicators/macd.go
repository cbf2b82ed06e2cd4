package indicators

import (
	"fmt"

	"fxsentinel/market"
)

// MACDHist returns the last two MACD histogram values (current, previous).
// The histogram is fast EMA minus slow EMA, minus the EMA of that difference
// over the signal period. Both values are needed by the entry rule, which
// fires only on an exact sign flip between the previous and current bar.
func MACDHist(candles []market.Candle, fast, slow, signal int) (cur, prev float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, fmt.Errorf("periods must be positive, got %d/%d/%d", fast, slow, signal)
	}
	need := max(fast, max(slow, signal)) + 1
	if len(candles) < need {
		return 0, 0, insufficient(need, len(candles))
	}

	closes := market.Closes(candles)
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig := emaSeries(macd, signal)

	n := len(closes)
	cur = macd[n-1] - sig[n-1]
	prev = macd[n-2] - sig[n-2]
	return cur, prev, nil
}
