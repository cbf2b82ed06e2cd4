package indicators

import (
	"fmt"

	"fxsentinel/market"
)

// ATR returns the rolling mean of the True Range over the last period bars.
// Needs period+1 candles because TR uses the previous close.
func ATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, insufficient(period+1, len(candles))
	}

	trs := trueRanges(candles)
	sum := 0.0
	for i := len(trs) - period; i < len(trs); i++ {
		sum += trs[i]
	}
	return sum / float64(period), nil
}
