package indicators

import (
	"fmt"
	"math"

	"fxsentinel/market"
)

// Bollinger returns the upper and lower Bollinger bands:
// SMA(period) ± dev * stddev(period). A NaN standard deviation (degenerate
// window) is treated as zero.
func Bollinger(candles []market.Candle, period int, dev float64) (upper, lower float64, err error) {
	if period <= 0 {
		return 0, 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, 0, insufficient(period, len(candles))
	}

	window := candles[len(candles)-period:]
	mean := 0.0
	for _, c := range window {
		mean += c.Close
	}
	mean /= float64(period)

	std := 0.0
	if period > 1 {
		ss := 0.0
		for _, c := range window {
			d := c.Close - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(period-1))
	}
	if math.IsNaN(std) {
		std = 0
	}
	return mean + dev*std, mean - dev*std, nil
}

// AwesomeOscillator returns SMA(fast) - SMA(slow) of the bar midpoints.
func AwesomeOscillator(candles []market.Candle, fast, slow int) (float64, error) {
	if fast <= 0 || slow <= 0 || fast >= slow {
		return 0, fmt.Errorf("need 0 < fast < slow, got %d/%d", fast, slow)
	}
	if len(candles) < slow {
		return 0, insufficient(slow, len(candles))
	}
	return smaMid(candles, fast) - smaMid(candles, slow), nil
}

func smaMid(candles []market.Candle, period int) float64 {
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Mid()
	}
	return sum / float64(period)
}

// MFI returns the Money Flow Index over the last period bars. Positive and
// negative flows are split by typical-price direction; a window with zero
// negative flow yields 100 when any positive flow exists and 50 otherwise.
func MFI(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, insufficient(period+1, len(candles))
	}

	var pos, neg float64
	for i := len(candles) - period; i < len(candles); i++ {
		tp := candles[i].TypicalPrice()
		prevTP := candles[i-1].TypicalPrice()
		flow := tp * candles[i].Volume
		if tp > prevTP {
			pos += flow
		} else if tp < prevTP {
			neg += flow
		}
	}

	if neg == 0 {
		if pos > 0 {
			return 100, nil
		}
		return 50, nil
	}
	return 100 - 100/(1+pos/neg), nil
}

// VWAP returns cumulative(close*volume)/cumulative(volume) over the whole
// supplied window. It is undefined for a window with zero total volume.
func VWAP(candles []market.Candle) (float64, error) {
	var pv, vol float64
	for _, c := range candles {
		pv += c.Close * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		return 0, fmt.Errorf("%w: window has zero volume", ErrInsufficientData)
	}
	return pv / vol, nil
}

// CCI returns the Commodity Channel Index of the typical price over the
// last period bars. A zero mean absolute deviation yields 0.
func CCI(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, insufficient(period, len(candles))
	}

	window := candles[len(candles)-period:]
	mean := 0.0
	for _, c := range window {
		mean += c.TypicalPrice()
	}
	mean /= float64(period)

	md := 0.0
	for _, c := range window {
		md += math.Abs(c.TypicalPrice() - mean)
	}
	md /= float64(period)
	if md == 0 {
		return 0, nil
	}
	last := window[len(window)-1].TypicalPrice()
	return (last - mean) / (0.015 * md), nil
}
