package trailing

import (
	"context"
	"log"

	"fxsentinel/broker"
	"fxsentinel/market"
)

// Submitter places trade requests through the retry policy.
type Submitter interface {
	Submit(ctx context.Context, req broker.TradeRequest) (broker.TradeResult, error)
}

// Manager owns the trailing lifecycle for one run: adopt positions into
// the state, advance stops when price moves far enough, prune dead
// tickets, and keep the state file in sync.
//
// Both thresholds are in ATR multiples. Activation is the minimum open
// profit before a stop may trail; Distance is how far behind price the
// stop follows.
type Manager struct {
	exec  Submitter
	store *Store
	state State

	Activation float64
	Distance   float64
	Deviation  int
	Magic      int64

	// OnAdvance, when set, observes every accepted stop move.
	OnAdvance func(symbol string, ticket int64, oldStop, newStop float64)
}

// NewManager loads the persisted state and wires the manager. A corrupt
// or unreadable state file is fatal at startup rather than silently
// discarded.
func NewManager(exec Submitter, store *Store, activation, distance float64, deviation int, magic int64) (*Manager, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if len(state) > 0 {
		log.Printf("trailing: resumed %d tracked stops", len(state))
	}
	return &Manager{
		exec:       exec,
		store:      store,
		state:      state,
		Activation: activation,
		Distance:   distance,
		Deviation:  deviation,
		Magic:      magic,
	}, nil
}

// Tracked returns the tracked stop for ticket.
func (m *Manager) Tracked(ticket int64) (float64, bool) {
	return m.state.Get(ticket)
}

// Adopt starts tracking a freshly opened position at its initial stop and
// persists the state.
func (m *Manager) Adopt(ticket int64, stop float64) {
	if m.state.Adopt(ticket, stop) {
		m.persist()
	}
}

// ManageSymbol walks the open positions for one symbol and advances any
// stop whose trade has earned enough room. Stops only move in the
// trade's favor; an unfavorable candidate leaves the tracked stop alone.
// Returns how many stops were advanced.
func (m *Manager) ManageSymbol(ctx context.Context, positions []market.Position, tick market.Tick, atr float64) int {
	if atr <= 0 {
		return 0
	}

	changed := false
	advanced := 0
	for _, pos := range positions {
		if m.state.Adopt(pos.Ticket, pos.StopLoss) {
			log.Printf("[%s] trailing: adopted ticket %d at stop %.5f", pos.Symbol, pos.Ticket, pos.StopLoss)
			changed = true
		}

		tracked, _ := m.state.Get(pos.Ticket)
		candidate, ok := m.candidate(pos, tick, atr, tracked)
		if !ok {
			continue
		}

		res, err := m.exec.Submit(ctx, broker.TradeRequest{
			Action:     broker.ActionModify,
			Symbol:     pos.Symbol,
			Ticket:     pos.Ticket,
			StopLoss:   candidate,
			TakeProfit: pos.TakeProfit,
			Deviation:  m.Deviation,
			Magic:      m.Magic,
		})
		if err != nil {
			log.Printf("[%s] trailing: stop move for ticket %d failed: %v", pos.Symbol, pos.Ticket, err)
			continue
		}
		if !res.Accepted() {
			continue
		}

		log.Printf("[%s] trailing: ticket %d stop %.5f -> %.5f", pos.Symbol, pos.Ticket, tracked, candidate)
		m.state.Advance(pos.Ticket, candidate)
		if m.OnAdvance != nil {
			m.OnAdvance(pos.Symbol, pos.Ticket, tracked, candidate)
		}
		changed = true
		advanced++
	}

	if changed {
		m.persist()
	}
	return advanced
}

// candidate computes the proposed stop for pos and reports whether it
// qualifies: enough open profit, strictly better than the tracked stop,
// and strictly on the favorable side of the current price.
func (m *Manager) candidate(pos market.Position, tick market.Tick, atr, tracked float64) (float64, bool) {
	activation := atr * m.Activation
	distance := atr * m.Distance

	switch pos.Side {
	case market.Buy:
		if tick.Bid-pos.PriceOpen < activation {
			return 0, false
		}
		candidate := tick.Bid - distance
		if candidate <= tracked || candidate >= tick.Bid {
			return 0, false
		}
		return candidate, true
	case market.Sell:
		if pos.PriceOpen-tick.Ask < activation {
			return 0, false
		}
		candidate := tick.Ask + distance
		if (tracked > 0 && candidate >= tracked) || candidate <= tick.Ask {
			return 0, false
		}
		return candidate, true
	}
	return 0, false
}

// Prune drops tickets no longer open anywhere and persists if anything
// was removed. The live set must span every traded symbol; pruning
// against a single symbol's positions would discard stops for the rest.
func (m *Manager) Prune(live map[int64]bool) {
	if removed := m.state.Prune(live); removed > 0 {
		log.Printf("trailing: pruned %d closed tickets", removed)
		m.persist()
	}
}

func (m *Manager) persist() {
	// A failed write is logged, not fatal: the in-memory state still
	// guards this run, and the next successful save catches up.
	if err := m.store.Save(m.state); err != nil {
		log.Printf("trailing: persist failed: %v", err)
	}
}
