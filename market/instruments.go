package market

import "fmt"

// InstrumentMeta describes the trading constraints of a symbol as reported
// by the terminal: contract size, quote currency and the volume envelope
// used by position sizing.
type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	ContractSize  float64
	VolumeMin     float64
	VolumeMax     float64
	VolumeStep    float64
	Digits        int
}

// Instruments holds the metadata for the symbols this engine trades.
var Instruments = map[string]InstrumentMeta{
	"EURUSD": {
		Name:          "EURUSD",
		BaseCurrency:  "EUR",
		QuoteCurrency: "USD",
		ContractSize:  100000,
		VolumeMin:     0.01,
		VolumeMax:     100,
		VolumeStep:    0.01,
		Digits:        5,
	},
	"GBPUSD": {
		Name:          "GBPUSD",
		BaseCurrency:  "GBP",
		QuoteCurrency: "USD",
		ContractSize:  100000,
		VolumeMin:     0.01,
		VolumeMax:     100,
		VolumeStep:    0.01,
		Digits:        5,
	},
	"USDJPY": {
		Name:          "USDJPY",
		BaseCurrency:  "USD",
		QuoteCurrency: "JPY",
		ContractSize:  100000,
		VolumeMin:     0.01,
		VolumeMax:     100,
		VolumeStep:    0.01,
		Digits:        3,
	},
}

// Lookup returns the metadata for a symbol or an error for unknown symbols.
func Lookup(symbol string) (InstrumentMeta, error) {
	m, ok := Instruments[symbol]
	if !ok {
		return InstrumentMeta{}, fmt.Errorf("unknown instrument: %s", symbol)
	}
	return m, nil
}
