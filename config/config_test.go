package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
symbols: [EURUSD, USDJPY]
candle_count: 120
cycle_seconds: 30
journal_path: ./test.db
risk:
  risk_percent: 0.01
  sl_atr_mult: 1.5
  tp_atr_mult: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"EURUSD", "USDJPY"}, cfg.Symbols)
	assert.Equal(t, 30, cfg.CycleSeconds)
	assert.Equal(t, 0.01, cfg.Risk.RiskPercent)

	// Unset sections keep their defaults.
	assert.Equal(t, 19, cfg.Indicators.RSIPeriod)
	assert.Equal(t, int64(123456), cfg.Execution.Magic)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"symbols": ["GBPUSD"], "cycle_seconds": 15, "journal_path": "./j.db"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"GBPUSD"}, cfg.Symbols)
	assert.Equal(t, 15, cfg.CycleSeconds)
}

func TestLoadUnknownSymbolFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols: [DOGEUSD]\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown symbol")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cycle", func(c *Config) { c.CycleSeconds = 0 }},
		{"risk too big", func(c *Config) { c.Risk.RiskPercent = 1.5 }},
		{"short candle window", func(c *Config) { c.CandleCount = 10 }},
		{"macd fast >= slow", func(c *Config) { c.Indicators.MACDFast = 30 }},
		{"threshold out of range", func(c *Config) { c.Filter.Threshold = 1.0 }},
		{"no model without advisor", func(c *Config) { c.Filter.ModelPath = "" }},
		{"trailing without state file", func(c *Config) { c.Trailing.StateFile = "" }},
		{"bad retry pause", func(c *Config) { c.Execution.RetryPause = "soon" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAdvisorModeSkipsModelRequirement(t *testing.T) {
	cfg := Default()
	cfg.Strategy.UseAdvisor = true
	cfg.Filter.ModelPath = ""
	require.NoError(t, cfg.Validate())
}

func TestParsePause(t *testing.T) {
	d, err := ExecutionConfig{RetryPause: "500ms"}.ParsePause()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	d, err = ExecutionConfig{}.ParsePause()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Symbols = []string{"USDJPY"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Symbols, loaded.Symbols)
	assert.Equal(t, cfg.Risk, loaded.Risk)
}
