package risk

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxsentinel/market"
)

// quoteMap serves canned ticks by symbol.
type quoteMap map[string]market.Tick

func (q quoteMap) Tick(_ context.Context, symbol string) (market.Tick, error) {
	t, ok := q[symbol]
	if !ok {
		return market.Tick{}, fmt.Errorf("no tick for %s", symbol)
	}
	return t, nil
}

var (
	usdAccount = market.Account{Balance: 10000, Currency: "USD"}
	eurusd     = market.Instruments["EURUSD"]
	usdjpy     = market.Instruments["USDJPY"]
)

func TestVolumeSameCurrency(t *testing.T) {
	s := NewSizer(0.005, quoteMap{})

	// Risk budget 50 USD; stop distance 0.0050 over 100k contract = 500
	// USD loss per lot => 0.1 lots.
	lot, err := s.Volume(context.Background(), usdAccount, eurusd, 0.0050)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, lot, 1e-9)
}

func TestVolumeForwardConversion(t *testing.T) {
	// USDJPY quote currency is JPY; account is USD. Forward pair JPYUSD.
	s := NewSizer(0.005, quoteMap{
		"JPYUSD": {Symbol: "JPYUSD", Bid: 0.00668, Ask: 0.00670},
	})

	// Stop 0.50 JPY * 100k = 50000 JPY = 335 USD per lot; budget 50 USD
	// => 0.149 lots, quantized to 0.15.
	lot, err := s.Volume(context.Background(), usdAccount, usdjpy, 0.50)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, lot, 1e-9)
}

func TestVolumeInverseConversionFallback(t *testing.T) {
	// Only the inverse pair USDJPY is quoted; 1 JPY = 1/149.50 USD.
	s := NewSizer(0.005, quoteMap{
		"USDJPY": {Symbol: "USDJPY", Bid: 149.50, Ask: 149.52},
	})

	lot, err := s.Volume(context.Background(), usdAccount, usdjpy, 0.50)
	require.NoError(t, err)

	// 50000 JPY / 149.50 = 334.45 USD per lot; 50/334.45 = 0.1495 => 0.15.
	assert.InDelta(t, 0.15, lot, 1e-9)
}

func TestVolumeNoConversionPathFails(t *testing.T) {
	s := NewSizer(0.005, quoteMap{})
	_, err := s.Volume(context.Background(), usdAccount, usdjpy, 0.50)
	require.ErrorIs(t, err, ErrNoConversion)
}

func TestVolumeNonPositiveRiskFails(t *testing.T) {
	s := NewSizer(0.005, quoteMap{})
	_, err := s.Volume(context.Background(), usdAccount, eurusd, 0)
	require.ErrorIs(t, err, ErrNonPositiveRisk, "zero ATR must fail sizing, not trade the minimum")
}

func TestVolumeClampedToEnvelope(t *testing.T) {
	s := NewSizer(0.005, quoteMap{})

	// Tiny stop distance => enormous desired volume => clamp to max.
	lot, err := s.Volume(context.Background(), usdAccount, eurusd, 0.0000001)
	require.NoError(t, err)
	assert.Equal(t, eurusd.VolumeMax, lot)

	// Huge stop distance => sub-minimum desired volume => floor at min.
	lot, err = s.Volume(context.Background(), usdAccount, eurusd, 10)
	require.NoError(t, err)
	assert.Equal(t, eurusd.VolumeMin, lot)
}

func TestVolumeQuantizedToStep(t *testing.T) {
	s := NewSizer(0.005, quoteMap{})

	// Pick a stop distance that produces an off-step desired volume.
	lot, err := s.Volume(context.Background(), usdAccount, eurusd, 0.0037)
	require.NoError(t, err)

	steps := lot / eurusd.VolumeStep
	assert.InDelta(t, math.Round(steps), steps, 1e-6, "volume %f is not a step multiple", lot)
	assert.GreaterOrEqual(t, lot, eurusd.VolumeMin)
	assert.LessOrEqual(t, lot, eurusd.VolumeMax)
}
