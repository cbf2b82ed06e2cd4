// Package engine drives the recurring trading cycle: read market state,
// evaluate entries and exits per symbol, size and submit orders, and
// advance trailing stops. Everything runs on one goroutine at a fixed
// interval; a panic in one cycle is recovered and the next cycle starts
// on schedule.
package engine

import (
	"context"
	"log"
	"time"

	"fxsentinel/broker"
	"fxsentinel/config"
	"fxsentinel/indicators"
	"fxsentinel/journal"
	"fxsentinel/market"
	"fxsentinel/metrics"
	"fxsentinel/mlfilter"
	"fxsentinel/risk"
	"fxsentinel/signal"
	"fxsentinel/trailing"
)

// Deps collects the engine's collaborators. Filter and Trail are optional;
// the rest are required.
type Deps struct {
	Broker  broker.Broker
	Exec    *broker.Executor
	Sizer   *risk.Sizer
	Source  signal.Source
	Filter  *mlfilter.Filter
	Trail   *trailing.Manager
	Journal journal.Journal
}

// Engine is the cycle orchestrator.
type Engine struct {
	cfg    *config.Config
	deps   Deps
	params indicators.Params
	runID  string
}

// New wires an engine from validated configuration. The confidence filter
// only applies to the rule-based source; the advisor carries its own
// hold-on-doubt bias, so gating it again would double-filter.
func New(cfg *config.Config, deps Deps, runID string) *Engine {
	e := &Engine{
		cfg:  cfg,
		deps: deps,
		params: indicators.Params{
			RSIPeriod:  cfg.Indicators.RSIPeriod,
			MACDFast:   cfg.Indicators.MACDFast,
			MACDSlow:   cfg.Indicators.MACDSlow,
			MACDSignal: cfg.Indicators.MACDSignal,
			ADXPeriod:  cfg.Indicators.ADXPeriod,
			ATRPeriod:  cfg.Indicators.ATRPeriod,
			AOFast:     cfg.Indicators.AOFast,
			AOSlow:     cfg.Indicators.AOSlow,
			BBPeriod:   cfg.Indicators.BBPeriod,
			BBStdDev:   cfg.Indicators.BBStdDev,
			CCIPeriod:  cfg.Indicators.CCIPeriod,
			MFIPeriod:  cfg.Indicators.MFIPeriod,
			ExitEMA:    cfg.Indicators.ExitEMA,
		},
		runID: runID,
	}
	if deps.Trail != nil {
		deps.Trail.OnAdvance = e.journalStopMove
	}
	return e
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately; subsequent cycles follow at the configured interval,
// measured from the end of the previous cycle.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.CycleSeconds) * time.Second
	log.Printf("engine: run %s starting, %d symbols, cycle every %s", e.runID, len(e.cfg.Symbols), interval)

	for {
		e.Cycle(ctx)

		select {
		case <-ctx.Done():
			log.Printf("engine: run %s stopping: %v", e.runID, ctx.Err())
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Cycle performs one full pass over all symbols. Any panic is contained
// here so a single poisoned cycle cannot take the process down.
func (e *Engine) Cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CycleRecoveries.Inc()
			log.Printf("engine: recovered cycle panic: %v", r)
		}
	}()

	acct, err := e.deps.Broker.Account(ctx)
	if err != nil {
		log.Printf("engine: account unavailable, skipping cycle: %v", err)
		return
	}
	metrics.Balance.Set(acct.Balance)

	// Tickets still open after this cycle, across every symbol. Trailing
	// state is pruned against this union, never a single symbol's slice.
	live := make(map[int64]bool)

	for _, symbol := range e.cfg.Symbols {
		e.runSymbol(ctx, acct, symbol, live)
	}

	if e.deps.Trail != nil {
		e.deps.Trail.Prune(live)
	}
	metrics.Cycles.Inc()
}

// runSymbol evaluates one symbol: exits first, then a possible entry,
// then trailing maintenance. Failures are logged and abort this symbol
// only; the cycle moves on.
func (e *Engine) runSymbol(ctx context.Context, acct market.Account, symbol string, live map[int64]bool) {
	meta, err := market.Lookup(symbol)
	if err != nil {
		log.Printf("[%s] %v", symbol, err)
		return
	}

	candles, err := e.deps.Broker.Candles(ctx, symbol, e.cfg.CandleCount)
	if err != nil {
		log.Printf("[%s] candles unavailable: %v", symbol, err)
		return
	}
	if len(candles) < e.params.MinBars() {
		log.Printf("[%s] only %d bars, need %d, skipping", symbol, len(candles), e.params.MinBars())
		return
	}

	tick, err := e.deps.Broker.Tick(ctx, symbol)
	if err != nil {
		log.Printf("[%s] tick unavailable: %v", symbol, err)
		return
	}

	snap := indicators.BuildSnapshot(candles, tick, e.params)

	positions, err := e.deps.Broker.Positions(ctx, symbol, e.cfg.Execution.Magic)
	if err != nil {
		log.Printf("[%s] positions unavailable: %v", symbol, err)
		return
	}

	open := e.closeExited(ctx, positions, snap, tick)

	// A symbol that entered the cycle with positions only manages them;
	// a fresh entry waits for the next cycle even if everything closed.
	if len(positions) == 0 {
		if pos, ok := e.tryEnter(ctx, acct, meta, snap, tick); ok {
			open = append(open, pos)
		}
	}

	for _, pos := range open {
		live[pos.Ticket] = true
	}

	if e.deps.Trail != nil && len(open) > 0 {
		if atr, ok := snap.Get(indicators.KeyATR); ok {
			advanced := e.deps.Trail.ManageSymbol(ctx, open, tick, atr)
			metrics.TrailingUpdates.Add(float64(advanced))
		}
	}
}

// closeExited applies the exit rule to every open position and returns
// the positions that remain open.
func (e *Engine) closeExited(ctx context.Context, positions []market.Position, snap indicators.Snapshot, tick market.Tick) []market.Position {
	open := positions[:0]
	for _, pos := range positions {
		exit, reason := signal.ShouldExit(pos, snap)
		if !exit {
			open = append(open, pos)
			continue
		}

		log.Printf("[%s] exit ticket %d: %s", pos.Symbol, pos.Ticket, reason)

		price := tick.Bid
		if pos.Side == market.Sell {
			price = tick.Ask
		}
		req := broker.TradeRequest{
			Action:    broker.ActionClose,
			Symbol:    pos.Symbol,
			Side:      pos.Side.Opposite(),
			Volume:    pos.Volume,
			Price:     price,
			Ticket:    pos.Ticket,
			Deviation: e.cfg.Execution.Deviation,
			Magic:     e.cfg.Execution.Magic,
		}

		res, err := e.deps.Exec.Submit(ctx, req)
		e.journalOrder(req, res, reason)
		if err != nil {
			metrics.Orders.WithLabelValues(broker.ActionClose, "failed").Inc()
			log.Printf("[%s] close ticket %d failed, position stays open: %v", pos.Symbol, pos.Ticket, err)
			open = append(open, pos)
			continue
		}
		metrics.Orders.WithLabelValues(broker.ActionClose, res.Retcode.String()).Inc()
	}
	return open
}

// tryEnter runs the entry pipeline: decision, confidence gate, sizing,
// submission. Returns the opened position when an order was accepted.
func (e *Engine) tryEnter(ctx context.Context, acct market.Account, meta market.InstrumentMeta, snap indicators.Snapshot, tick market.Tick) (market.Position, bool) {
	decision := e.deps.Source.Decide(ctx, snap)
	metrics.Decisions.WithLabelValues(decision.Signal.String()).Inc()
	if decision.Signal == signal.Hold {
		return market.Position{}, false
	}
	log.Printf("[%s] %s candidate from %s: %s", meta.Name, decision.Signal, e.deps.Source.Name(), decision.Reason)

	if e.deps.Filter != nil {
		features, err := mlfilter.Features(snap)
		if err != nil {
			log.Printf("[%s] candidate discarded, features incomplete: %v", meta.Name, err)
			return market.Position{}, false
		}
		prob, ok, err := e.deps.Filter.Approve(features)
		if err != nil {
			log.Printf("[%s] candidate discarded, filter error: %v", meta.Name, err)
			return market.Position{}, false
		}
		if !ok {
			metrics.FilterRejections.Inc()
			log.Printf("[%s] candidate discarded, confidence %.3f <= %.2f", meta.Name, prob, e.deps.Filter.Threshold())
			return market.Position{}, false
		}
		log.Printf("[%s] candidate approved, confidence %.3f", meta.Name, prob)
	}

	atr, ok := snap.Get(indicators.KeyATR)
	if !ok || atr <= 0 {
		log.Printf("[%s] candidate discarded, ATR unusable", meta.Name)
		return market.Position{}, false
	}

	stopDistance := atr * e.cfg.Risk.SLATRMult
	volume, err := e.deps.Sizer.Volume(ctx, acct, meta, stopDistance)
	if err != nil {
		log.Printf("[%s] sizing failed, no trade: %v", meta.Name, err)
		return market.Position{}, false
	}

	var price, sl, tp float64
	side := market.Buy
	if decision.Signal == signal.Buy {
		price = tick.Ask
		sl = price - stopDistance
		tp = price + atr*e.cfg.Risk.TPATRMult
	} else {
		side = market.Sell
		price = tick.Bid
		sl = price + stopDistance
		tp = price - atr*e.cfg.Risk.TPATRMult
	}

	req := broker.TradeRequest{
		Action:     broker.ActionDeal,
		Symbol:     meta.Name,
		Side:       side,
		Volume:     volume,
		Price:      price,
		StopLoss:   sl,
		TakeProfit: tp,
		Deviation:  e.cfg.Execution.Deviation,
		Magic:      e.cfg.Execution.Magic,
		Comment:    e.deps.Source.Name(),
	}

	res, err := e.deps.Exec.Submit(ctx, req)
	e.journalOrder(req, res, decision.Reason)
	if err != nil {
		metrics.Orders.WithLabelValues(broker.ActionDeal, "failed").Inc()
		log.Printf("[%s] entry failed definitively, no position: %v", meta.Name, err)
		return market.Position{}, false
	}
	metrics.Orders.WithLabelValues(broker.ActionDeal, res.Retcode.String()).Inc()

	pos := market.Position{
		Ticket:     res.Ticket,
		Symbol:     meta.Name,
		Side:       side,
		Volume:     volume,
		PriceOpen:  price,
		StopLoss:   sl,
		TakeProfit: tp,
		Magic:      e.cfg.Execution.Magic,
	}
	if e.deps.Trail != nil {
		e.deps.Trail.Adopt(pos.Ticket, sl)
	}
	return pos, true
}

func (e *Engine) journalOrder(req broker.TradeRequest, res broker.TradeResult, reason string) {
	if e.deps.Journal == nil {
		return
	}
	rec := journal.OrderRecord{
		RunID:      e.runID,
		Time:       time.Now().UTC(),
		Symbol:     req.Symbol,
		Action:     req.Action,
		Side:       req.Side,
		Volume:     req.Volume,
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Ticket:     res.Ticket,
		Retcode:    res.Retcode,
		Reason:     reason,
	}
	if err := e.deps.Journal.RecordOrder(rec); err != nil {
		log.Printf("journal: record order: %v", err)
	}
}

func (e *Engine) journalStopMove(symbol string, ticket int64, oldStop, newStop float64) {
	if e.deps.Journal == nil {
		return
	}
	rec := journal.StopMove{
		RunID:   e.runID,
		Time:    time.Now().UTC(),
		Symbol:  symbol,
		Ticket:  ticket,
		OldStop: oldStop,
		NewStop: newStop,
	}
	if err := e.deps.Journal.RecordStopMove(rec); err != nil {
		log.Printf("journal: record stop move: %v", err)
	}
}
