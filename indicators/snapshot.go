package indicators

import "fxsentinel/market"

// Snapshot holds one cycle's indicator values keyed by name. A key that is
// absent means the window was too short for that indicator — consumers must
// check presence and treat absence as disqualifying, never as zero.
type Snapshot map[string]float64

// Snapshot keys.
const (
	KeyBid          = "bid"
	KeyAsk          = "ask"
	KeyRSI          = "rsi"
	KeyVolumeRSI    = "vrsi"
	KeyCCI          = "cci"
	KeyExitEMA      = "ema_exit"
	KeyMACDHist     = "macd_hist"
	KeyMACDHistPrev = "macd_hist_prev"
	KeyBBUpper      = "bb_upper"
	KeyBBLower      = "bb_lower"
	KeyATR          = "atr"
	KeyATRNorm      = "atr_norm"
	KeyADX          = "adx"
	KeyPlusDI       = "di_plus"
	KeyMinusDI      = "di_minus"
	KeyAO           = "ao"
	KeyMFI          = "mfi"
	KeyVWAP         = "vwap"
)

// Get returns the named value and whether it is defined.
func (s Snapshot) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Params fixes the indicator periods used to build a snapshot.
type Params struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	ADXPeriod  int
	ATRPeriod  int
	AOFast     int
	AOSlow     int
	BBPeriod   int
	BBStdDev   float64
	CCIPeriod  int
	MFIPeriod  int
	ExitEMA    int
}

// MinBars returns the shortest window that leaves every indicator in the
// snapshot defined.
func (p Params) MinBars() int {
	need := p.RSIPeriod + 1
	for _, n := range []int{
		p.MACDSlow + 1, 2 * p.ADXPeriod, p.ATRPeriod + 1,
		p.AOSlow, p.BBPeriod, p.CCIPeriod, p.MFIPeriod + 1, p.ExitEMA,
	} {
		if n > need {
			need = n
		}
	}
	return need
}

// BuildSnapshot derives every configured indicator from the window plus the
// live quote. Indicators whose window is too short are simply left out.
func BuildSnapshot(candles []market.Candle, tick market.Tick, p Params) Snapshot {
	snap := Snapshot{
		KeyBid: tick.Bid,
		KeyAsk: tick.Ask,
	}

	put := func(key string, v float64, err error) {
		if err == nil {
			snap[key] = v
		}
	}

	v, err := RSI(candles, p.RSIPeriod)
	put(KeyRSI, v, err)
	v, err = VolumeRSI(candles, p.RSIPeriod)
	put(KeyVolumeRSI, v, err)
	v, err = CCI(candles, p.CCIPeriod)
	put(KeyCCI, v, err)
	v, err = EMA(candles, p.ExitEMA)
	put(KeyExitEMA, v, err)

	cur, prev, err := MACDHist(candles, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err == nil {
		snap[KeyMACDHist] = cur
		snap[KeyMACDHistPrev] = prev
	}

	upper, lower, err := Bollinger(candles, p.BBPeriod, p.BBStdDev)
	if err == nil {
		snap[KeyBBUpper] = upper
		snap[KeyBBLower] = lower
	}

	atr, err := ATR(candles, p.ATRPeriod)
	if err == nil {
		snap[KeyATR] = atr
		if last := candles[len(candles)-1].Close; last > 0 {
			snap[KeyATRNorm] = atr / last
		}
	}

	adx, pdi, mdi, err := ADX(candles, p.ADXPeriod)
	if err == nil {
		snap[KeyADX] = adx
		snap[KeyPlusDI] = pdi
		snap[KeyMinusDI] = mdi
	}

	v, err = AwesomeOscillator(candles, p.AOFast, p.AOSlow)
	put(KeyAO, v, err)
	v, err = MFI(candles, p.MFIPeriod)
	put(KeyMFI, v, err)
	v, err = VWAP(candles)
	put(KeyVWAP, v, err)

	return snap
}
