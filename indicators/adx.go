package indicators

import (
	"fmt"
	"math"

	"fxsentinel/market"
)

// ADX computes Wilder's Average Directional Index together with +DI and -DI.
// Directional movement and TR are smoothed with the same constant
// (alpha = 1/period); DX is smoothed once more to produce ADX. Needs at
// least 2*period candles for the double smoothing to settle.
func ADX(candles []market.Candle, period int) (adx, plusDI, minusDI float64, err error) {
	if period <= 0 {
		return 0, 0, 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < 2*period {
		return 0, 0, 0, insufficient(2*period, len(candles))
	}

	n := len(candles) - 1
	trs := make([]float64, n)
	pdms := make([]float64, n)
	mdms := make([]float64, n)
	for i := 1; i < len(candles); i++ {
		cur, prev := candles[i], candles[i-1]
		trs[i-1] = trueRange(cur, prev)

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		if upMove > downMove && upMove > 0 {
			pdms[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			mdms[i-1] = downMove
		}
	}

	smTR := wilderSeries(trs, period)
	smPDM := wilderSeries(pdms, period)
	smMDM := wilderSeries(mdms, period)

	dxs := make([]float64, n)
	for i := 0; i < n; i++ {
		pdi := 100 * smPDM[i] / (smTR[i] + epsilon)
		mdi := 100 * smMDM[i] / (smTR[i] + epsilon)
		dxs[i] = 100 * math.Abs(pdi-mdi) / (pdi + mdi + epsilon)
		if i == n-1 {
			plusDI, minusDI = pdi, mdi
		}
	}

	smDX := wilderSeries(dxs, period)
	return smDX[n-1], plusDI, minusDI, nil
}
