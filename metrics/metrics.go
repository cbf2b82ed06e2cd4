// Package metrics exposes the engine's operational counters over
// Prometheus. Everything registers on the default registry at init.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxsentinel_cycles_total",
		Help: "Completed trading cycles.",
	})

	CycleRecoveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxsentinel_cycle_recoveries_total",
		Help: "Cycles that panicked and were recovered.",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_decisions_total",
		Help: "Entry decisions by signal.",
	}, []string{"signal"})

	FilterRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxsentinel_filter_rejections_total",
		Help: "Entry signals discarded by the confidence filter.",
	})

	Orders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxsentinel_orders_total",
		Help: "Order submissions by action and outcome.",
	}, []string{"action", "result"})

	TrailingUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxsentinel_trailing_updates_total",
		Help: "Accepted trailing stop advances.",
	})

	Balance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fxsentinel_account_balance",
		Help: "Last observed account balance.",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs the scrape endpoint on addr in a background goroutine. An
// empty addr disables metrics.
func Serve(addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("metrics: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics: server stopped: %v", err)
		}
	}()
}
