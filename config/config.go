package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fxsentinel/market"
)

// Config represents the complete engine configuration
type Config struct {
	Symbols      []string `json:"symbols" yaml:"symbols"`
	CandleCount  int      `json:"candle_count" yaml:"candle_count"`
	CycleSeconds int      `json:"cycle_seconds" yaml:"cycle_seconds"`
	BridgeURL    string   `json:"bridge_url" yaml:"bridge_url"`
	MetricsAddr  string   `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	JournalPath  string   `json:"journal_path" yaml:"journal_path"`

	Indicators IndicatorConfig `json:"indicators" yaml:"indicators"`
	Strategy   StrategyConfig  `json:"strategy" yaml:"strategy"`
	Risk       RiskConfig      `json:"risk" yaml:"risk"`
	Filter     FilterConfig    `json:"filter" yaml:"filter"`
	Trailing   TrailingConfig  `json:"trailing" yaml:"trailing"`
	Execution  ExecutionConfig `json:"execution" yaml:"execution"`
	Advisor    AdvisorConfig   `json:"advisor" yaml:"advisor"`
}

// IndicatorConfig contains the indicator window lengths
type IndicatorConfig struct {
	RSIPeriod  int     `json:"rsi_period" yaml:"rsi_period"`
	MACDFast   int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int     `json:"macd_signal" yaml:"macd_signal"`
	ATRPeriod  int     `json:"atr_period" yaml:"atr_period"`
	ADXPeriod  int     `json:"adx_period" yaml:"adx_period"`
	BBPeriod   int     `json:"bb_period" yaml:"bb_period"`
	BBStdDev   float64 `json:"bb_std_dev" yaml:"bb_std_dev"`
	AOFast     int     `json:"ao_fast" yaml:"ao_fast"`
	AOSlow     int     `json:"ao_slow" yaml:"ao_slow"`
	MFIPeriod  int     `json:"mfi_period" yaml:"mfi_period"`
	CCIPeriod  int     `json:"cci_period" yaml:"cci_period"`
	ExitEMA    int     `json:"exit_ema" yaml:"exit_ema"`
}

// StrategyConfig contains entry and exit thresholds
type StrategyConfig struct {
	ADXThreshold float64 `json:"adx_threshold" yaml:"adx_threshold"`
	RSIBuy       float64 `json:"rsi_buy" yaml:"rsi_buy"`
	RSISell      float64 `json:"rsi_sell" yaml:"rsi_sell"`
	UseAdvisor   bool    `json:"use_advisor" yaml:"use_advisor"`
}

// RiskConfig contains position sizing and bracket parameters
type RiskConfig struct {
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent"`
	SLATRMult   float64 `json:"sl_atr_mult" yaml:"sl_atr_mult"`
	TPATRMult   float64 `json:"tp_atr_mult" yaml:"tp_atr_mult"`
}

// FilterConfig contains the confidence gate parameters
type FilterConfig struct {
	ModelPath string  `json:"model_path" yaml:"model_path"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// TrailingConfig contains trailing stop parameters in ATR multiples
type TrailingConfig struct {
	Enabled       bool    `json:"enabled" yaml:"enabled"`
	DistanceATR   float64 `json:"distance_atr" yaml:"distance_atr"`
	ActivationATR float64 `json:"activation_atr" yaml:"activation_atr"`
	StateFile     string  `json:"state_file" yaml:"state_file"`
}

// ExecutionConfig contains order submission parameters
type ExecutionConfig struct {
	MaxRetries int    `json:"max_retries" yaml:"max_retries"`
	RetryPause string `json:"retry_pause" yaml:"retry_pause"` // e.g., "2s", "500ms"
	Deviation  int    `json:"deviation" yaml:"deviation"`
	Magic      int64  `json:"magic" yaml:"magic"`
}

// ParsePause converts the retry pause string to time.Duration
func (e ExecutionConfig) ParsePause() (time.Duration, error) {
	if e.RetryPause == "" {
		return 2 * time.Second, nil
	}
	return time.ParseDuration(e.RetryPause)
}

// AdvisorConfig contains the optional chat-completion advisor settings.
// The API key is taken from the environment, never from the file.
type AdvisorConfig struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols is required")
	}
	for _, s := range c.Symbols {
		if _, ok := market.Instruments[s]; !ok {
			return fmt.Errorf("unknown symbol: %s", s)
		}
	}
	if c.CandleCount < 2*c.Indicators.ADXPeriod {
		return fmt.Errorf("candle_count %d is too small for adx_period %d", c.CandleCount, c.Indicators.ADXPeriod)
	}
	if c.CycleSeconds <= 0 {
		return fmt.Errorf("cycle_seconds must be positive")
	}
	if c.JournalPath == "" {
		return fmt.Errorf("journal_path is required")
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 1 {
		return fmt.Errorf("risk.risk_percent must be between 0 and 1")
	}
	if c.Risk.SLATRMult <= 0 || c.Risk.TPATRMult <= 0 {
		return fmt.Errorf("risk ATR multiples must be positive")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be less than macd_slow")
	}
	if c.Indicators.AOFast >= c.Indicators.AOSlow {
		return fmt.Errorf("indicators.ao_fast must be less than ao_slow")
	}
	if c.Filter.Threshold < 0 || c.Filter.Threshold >= 1 {
		return fmt.Errorf("filter.threshold must be in [0, 1)")
	}
	if !c.Strategy.UseAdvisor && c.Filter.ModelPath == "" {
		return fmt.Errorf("filter.model_path is required when the advisor is disabled")
	}
	if c.Trailing.Enabled {
		if c.Trailing.DistanceATR <= 0 || c.Trailing.ActivationATR <= 0 {
			return fmt.Errorf("trailing ATR multiples must be positive")
		}
		if c.Trailing.StateFile == "" {
			return fmt.Errorf("trailing.state_file is required when trailing is enabled")
		}
	}
	if c.Execution.MaxRetries < 1 {
		return fmt.Errorf("execution.max_retries must be at least 1")
	}
	if _, err := c.Execution.ParsePause(); err != nil {
		return fmt.Errorf("execution.retry_pause: %w", err)
	}
	return nil
}

// Default returns a configuration with the optimized parameter set
func Default() *Config {
	return &Config{
		Symbols:      []string{"EURUSD"},
		CandleCount:  100,
		CycleSeconds: 60,
		BridgeURL:    "http://127.0.0.1:8787",
		JournalPath:  "./fxsentinel.db",
		Indicators: IndicatorConfig{
			RSIPeriod:  19,
			MACDFast:   20,
			MACDSlow:   26,
			MACDSignal: 6,
			ATRPeriod:  14,
			ADXPeriod:  19,
			BBPeriod:   20,
			BBStdDev:   2.0,
			AOFast:     5,
			AOSlow:     34,
			MFIPeriod:  14,
			CCIPeriod:  20,
			ExitEMA:    20,
		},
		Strategy: StrategyConfig{
			ADXThreshold: 20,
			RSIBuy:       50,
			RSISell:      50,
		},
		Risk: RiskConfig{
			RiskPercent: 0.005,
			SLATRMult:   1.5441864660177191,
			TPATRMult:   2.504770076551997,
		},
		Filter: FilterConfig{
			ModelPath: "./signal_classifier.onnx",
			Threshold: 0.60,
		},
		Trailing: TrailingConfig{
			Enabled:       true,
			DistanceATR:   1.0,
			ActivationATR: 0.5,
			StateFile:     "trailing_stops_state.json",
		},
		Execution: ExecutionConfig{
			MaxRetries: 3,
			RetryPause: "2s",
			Deviation:  20,
			Magic:      123456,
		},
	}
}
