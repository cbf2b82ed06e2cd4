// Package market defines the value types shared by the trading engine:
// candles, ticks, instruments, positions and account snapshots.
package market

import "time"

// Candle represents one OHLCV price bar.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

// Mid returns the midpoint of the bar's range, (high+low)/2.
func (c Candle) Mid() float64 {
	return (c.High + c.Low) / 2
}

// TypicalPrice returns (high+low+close)/3, the basis for MFI and CCI.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Closes extracts the close series from a candle window.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the tick-volume series from a candle window.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
