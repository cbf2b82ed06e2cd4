// Package indicators provides the technical indicator functions the signal
// and risk layers consume. Every function is a pure mapping from a bounded
// candle window to a value; none keeps state between calls.
//
// Callers must treat ErrInsufficientData as "undefined", never as zero.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"fxsentinel/market"
)

// ErrInsufficientData marks a window shorter than an indicator's minimum
// required length.
var ErrInsufficientData = errors.New("not enough candles")

func insufficient(need, got int) error {
	return fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, need, got)
}

// epsilon guards the DI/DX divisions in a flat market.
const epsilon = 1e-9

// SMA returns the simple moving average of Close over the last period bars.
func SMA(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, insufficient(period, len(candles))
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period), nil
}

// EMA returns the exponential moving average of Close over the whole window,
// seeded at the first close (span convention, alpha = 2/(period+1)).
func EMA(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, insufficient(period, len(candles))
	}
	return emaLast(market.Closes(candles), period), nil
}

// emaSeries computes the span-convention EMA of values, seeded at values[0].
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

func emaLast(values []float64, period int) float64 {
	alpha := 2.0 / float64(period+1)
	ema := values[0]
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
	}
	return ema
}

// wilderSeries smooths values with alpha = 1/period, seeded at values[0].
func wilderSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 1.0 / float64(period)
	sm := values[0]
	out[0] = sm
	for i := 1; i < len(values); i++ {
		sm = alpha*values[i] + (1-alpha)*sm
		out[i] = sm
	}
	return out
}

// trueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(cur, prev market.Candle) float64 {
	hl := cur.High - cur.Low
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// trueRanges returns the TR series for a window; length is len(candles)-1.
func trueRanges(candles []market.Candle) []float64 {
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		out = append(out, trueRange(candles[i], candles[i-1]))
	}
	return out
}
