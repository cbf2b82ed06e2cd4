package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fxsentinel/advisor"
	"fxsentinel/broker"
	"fxsentinel/broker/bridge"
	"fxsentinel/config"
	"fxsentinel/engine"
	"fxsentinel/journal"
	"fxsentinel/metrics"
	"fxsentinel/mlfilter"
	"fxsentinel/pkg/id"
	"fxsentinel/risk"
	sig "fxsentinel/signal"
	"fxsentinel/trailing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading engine against a terminal bridge",
	Long: `Run the recurring trading cycle using settings from a configuration file.

The config file specifies the symbols, indicator periods, risk parameters
and the bridge URL of the MetaTrader 5 terminal sidecar. Secrets such as
OPENAI_API_KEY are read from the environment (a local .env file is loaded
when present).

Example:
  fxsentinel run -f config.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Secrets live in the environment; a .env file is a convenience for
	// development and its absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := id.New()
	log.Printf("fxsentinel run %s, symbols %v", runID, cfg.Symbols)

	terminal := bridge.New(cfg.BridgeURL)

	pause, err := cfg.Execution.ParsePause()
	if err != nil {
		return err
	}
	exec := broker.NewExecutor(terminal, cfg.Execution.MaxRetries, pause)

	var source sig.Source
	var filter *mlfilter.Filter

	if cfg.Strategy.UseAdvisor {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("advisor enabled but OPENAI_API_KEY is not set")
		}
		source = advisor.New(cfg.Advisor.Endpoint, cfg.Advisor.Model, apiKey)
	} else {
		source = sig.NewConfluence(cfg.Strategy.ADXThreshold, cfg.Strategy.RSIBuy, cfg.Strategy.RSISell)

		// The classifier gate is mandatory for rule-based entries.
		// Refuse to start rather than trade unfiltered.
		if err := mlfilter.Initialize(); err != nil {
			return fmt.Errorf("initialize onnx runtime: %w", err)
		}
		model, err := mlfilter.Load(cfg.Filter.ModelPath)
		if err != nil {
			return fmt.Errorf("load confidence model: %w", err)
		}
		filter = mlfilter.NewFilter(model, cfg.Filter.Threshold)
		defer filter.Close()
	}

	var trail *trailing.Manager
	if cfg.Trailing.Enabled {
		trail, err = trailing.NewManager(
			exec, trailing.NewStore(cfg.Trailing.StateFile),
			cfg.Trailing.ActivationATR, cfg.Trailing.DistanceATR,
			cfg.Execution.Deviation, cfg.Execution.Magic,
		)
		if err != nil {
			return fmt.Errorf("trailing state: %w", err)
		}
	}

	j, err := journal.NewSQLite(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	metrics.Serve(cfg.MetricsAddr)

	eng := engine.New(cfg, engine.Deps{
		Broker:  terminal,
		Exec:    exec,
		Sizer:   risk.NewSizer(cfg.Risk.RiskPercent, terminal),
		Source:  source,
		Filter:  filter,
		Trail:   trail,
		Journal: j,
	}, runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
