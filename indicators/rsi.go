package indicators

import (
	"fmt"

	"fxsentinel/market"
)

// RSI returns Wilder's Relative Strength Index of Close over period.
// Needs period+1 candles (differences require a previous bar).
//
// Flat-market edge case: when the average loss is zero the result is 100 if
// there were any gains and 50 otherwise.
func RSI(candles []market.Candle, period int) (float64, error) {
	return rsiOfSeries(market.Closes(candles), period)
}

// VolumeRSI applies the RSI formula to tick-volume differences.
func VolumeRSI(candles []market.Candle, period int) (float64, error) {
	return rsiOfSeries(market.Volumes(candles), period)
}

func rsiOfSeries(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return 0, insufficient(period+1, len(values))
	}

	gains := make([]float64, 0, len(values)-1)
	losses := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains = append(gains, d)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -d)
		}
	}

	avgGain := wilderAverage(gains, period)
	avgLoss := wilderAverage(losses, period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100, nil
		}
		return 50, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// wilderAverage seeds with the simple mean of the first period values and
// then applies Wilder smoothing (alpha = 1/period) over the remainder.
func wilderAverage(values []float64, period int) float64 {
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	avg := sum / float64(period)
	for i := period; i < len(values); i++ {
		avg = (avg*float64(period-1) + values[i]) / float64(period)
	}
	return avg
}
