package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxsentinel/indicators"
	"fxsentinel/market"
)

func snap(vals map[string]float64) indicators.Snapshot {
	s := indicators.Snapshot{}
	for k, v := range vals {
		s[k] = v
	}
	return s
}

func TestConfluenceBuyCandidate(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	d := c.Decide(context.Background(), snap(map[string]float64{
		indicators.KeyADX:          25,
		indicators.KeyMACDHist:     0.0002,
		indicators.KeyMACDHistPrev: -0.0003,
		indicators.KeyRSI:          55,
	}))
	assert.Equal(t, Buy, d.Signal)
	assert.NotEmpty(t, d.Reason)
}

func TestConfluenceSellCandidate(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	d := c.Decide(context.Background(), snap(map[string]float64{
		indicators.KeyADX:          28,
		indicators.KeyMACDHist:     -0.0002,
		indicators.KeyMACDHistPrev: 0.0004,
		indicators.KeyRSI:          44,
	}))
	assert.Equal(t, Sell, d.Signal)
}

func TestConfluenceMomentumNotConfirmed(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	d := c.Decide(context.Background(), snap(map[string]float64{
		indicators.KeyADX:          25,
		indicators.KeyMACDHist:     0.0002,
		indicators.KeyMACDHistPrev: -0.0003,
		indicators.KeyRSI:          45, // wrong side of 50 for a buy
	}))
	assert.Equal(t, Hold, d.Signal)
}

func TestConfluenceWeakTrendHolds(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	d := c.Decide(context.Background(), snap(map[string]float64{
		indicators.KeyADX:          15,
		indicators.KeyMACDHist:     0.0002,
		indicators.KeyMACDHistPrev: -0.0003,
		indicators.KeyRSI:          60,
	}))
	assert.Equal(t, Hold, d.Signal)
}

func TestConfluenceNoFlipHolds(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	// Histogram positive on both bars: momentum continues, no flip event.
	d := c.Decide(context.Background(), snap(map[string]float64{
		indicators.KeyADX:          30,
		indicators.KeyMACDHist:     0.0004,
		indicators.KeyMACDHistPrev: 0.0002,
		indicators.KeyRSI:          60,
	}))
	assert.Equal(t, Hold, d.Signal)
}

func TestConfluenceUndefinedInputVoidsCycle(t *testing.T) {
	c := NewConfluence(20, 50, 50)
	for _, missing := range []string{
		indicators.KeyADX, indicators.KeyMACDHist,
		indicators.KeyMACDHistPrev, indicators.KeyRSI,
	} {
		vals := map[string]float64{
			indicators.KeyADX:          25,
			indicators.KeyMACDHist:     0.0002,
			indicators.KeyMACDHistPrev: -0.0003,
			indicators.KeyRSI:          55,
		}
		delete(vals, missing)
		d := c.Decide(context.Background(), snap(vals))
		require.Equal(t, Hold, d.Signal, "missing %s must void the cycle", missing)
	}
}

func TestShouldExitLong(t *testing.T) {
	pos := market.Position{Ticket: 1, Symbol: "EURUSD", Side: market.Buy, PriceOpen: 1.1000}

	exit, reason := ShouldExit(pos, snap(map[string]float64{
		indicators.KeyBid:      1.0990,
		indicators.KeyAsk:      1.0992,
		indicators.KeyExitEMA:  1.0995,
		indicators.KeyMACDHist: 0.0001,
	}))
	assert.True(t, exit)
	assert.Contains(t, reason, "exit EMA")

	exit, _ = ShouldExit(pos, snap(map[string]float64{
		indicators.KeyBid:      1.1010,
		indicators.KeyAsk:      1.1012,
		indicators.KeyExitEMA:  1.1005,
		indicators.KeyMACDHist: -0.0001,
	}))
	assert.True(t, exit, "negative histogram should close a long")

	exit, _ = ShouldExit(pos, snap(map[string]float64{
		indicators.KeyBid:      1.1010,
		indicators.KeyAsk:      1.1012,
		indicators.KeyExitEMA:  1.1005,
		indicators.KeyMACDHist: 0.0001,
	}))
	assert.False(t, exit)
}

func TestShouldExitShort(t *testing.T) {
	pos := market.Position{Ticket: 2, Symbol: "EURUSD", Side: market.Sell, PriceOpen: 1.1000}

	exit, _ := ShouldExit(pos, snap(map[string]float64{
		indicators.KeyBid:      1.1010,
		indicators.KeyAsk:      1.1012,
		indicators.KeyExitEMA:  1.1005,
		indicators.KeyMACDHist: -0.0001,
	}))
	assert.True(t, exit, "ask above exit EMA should close a short")
}

func TestShouldExitUndefinedIndicatorsNeverExit(t *testing.T) {
	pos := market.Position{Ticket: 3, Symbol: "EURUSD", Side: market.Buy}
	exit, _ := ShouldExit(pos, snap(map[string]float64{}))
	assert.False(t, exit)
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())
}
