package trailing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxsentinel/broker"
	"fxsentinel/market"
)

// fakeSubmitter records modify requests and answers with a canned result.
type fakeSubmitter struct {
	reqs []broker.TradeRequest
	res  broker.TradeResult
	err  error
}

func (f *fakeSubmitter) Submit(_ context.Context, req broker.TradeRequest) (broker.TradeResult, error) {
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

func newTestManager(t *testing.T, exec Submitter) *Manager {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "stops.json"))
	m, err := NewManager(exec, store, 0.5, 1.0, 20, 123456)
	require.NoError(t, err)
	return m
}

func longPosition(ticket int64, open, stop float64) market.Position {
	return market.Position{
		Ticket:    ticket,
		Symbol:    "EURUSD",
		Side:      market.Buy,
		Volume:    0.10,
		PriceOpen: open,
		StopLoss:  stop,
		Magic:     123456,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "stops.json"))

	state := State{101: 1.0950, 202: 149.20}
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded, "tickets must survive the string-key JSON round trip")
}

func TestStoreMissingFileIsEmptyState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-written.json"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestStoreCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stops.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
}

func TestManagerAdoptsUntrackedPosition(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)

	// Not enough excursion to trail, so the only effect is adoption.
	tick := market.Tick{Symbol: "EURUSD", Bid: 1.1001, Ask: 1.1003}
	m.ManageSymbol(context.Background(), []market.Position{longPosition(7, 1.1000, 1.0950)}, tick, 0.0010)

	stop, ok := m.Tracked(7)
	require.True(t, ok)
	assert.Equal(t, 1.0950, stop)
	assert.Empty(t, exec.reqs)
}

func TestManagerAdvancesLongStop(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)
	m.Adopt(7, 1.0950)

	// ATR 0.0010, activation 0.5 ATR. Bid 1.1020 puts the trade 20 pips
	// in profit; candidate stop is bid - 1.0 ATR = 1.1010.
	tick := market.Tick{Symbol: "EURUSD", Bid: 1.1020, Ask: 1.1022}
	advanced := m.ManageSymbol(context.Background(), []market.Position{longPosition(7, 1.1000, 1.0950)}, tick, 0.0010)

	assert.Equal(t, 1, advanced)
	require.Len(t, exec.reqs, 1)
	assert.Equal(t, broker.ActionModify, exec.reqs[0].Action)
	assert.InDelta(t, 1.1010, exec.reqs[0].StopLoss, 1e-9)

	stop, _ := m.Tracked(7)
	assert.InDelta(t, 1.1010, stop, 1e-9)
}

func TestManagerAdvancesLongStopBelowEntry(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)
	m.Adopt(7, 1.0950)

	// Excursion 0.0006 clears the 0.5 ATR activation but the candidate
	// bid - 1.0 ATR = 1.0996 still sits below the 1.1000 entry. The stop
	// must advance anyway: the rule compares against price, not entry.
	tick := market.Tick{Symbol: "EURUSD", Bid: 1.1006, Ask: 1.1008}
	advanced := m.ManageSymbol(context.Background(), []market.Position{longPosition(7, 1.1000, 1.0950)}, tick, 0.0010)

	assert.Equal(t, 1, advanced)
	stop, _ := m.Tracked(7)
	assert.InDelta(t, 1.0996, stop, 1e-9)
}

func TestManagerAdvancesShortStopAboveEntry(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)

	pos := market.Position{
		Ticket: 9, Symbol: "USDJPY", Side: market.Sell,
		Volume: 0.10, PriceOpen: 150.00, StopLoss: 150.50, Magic: 123456,
	}
	m.Adopt(9, 150.50)

	// Ask 149.88 is 0.12 in profit with ATR 0.20; the candidate 150.08
	// improves the tracked 150.50 even though it is above the entry.
	tick := market.Tick{Symbol: "USDJPY", Bid: 149.86, Ask: 149.88}
	advanced := m.ManageSymbol(context.Background(), []market.Position{pos}, tick, 0.20)

	assert.Equal(t, 1, advanced)
	stop, _ := m.Tracked(9)
	assert.InDelta(t, 150.08, stop, 1e-9)
}

func TestManagerNeverRetreats(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)
	m.Adopt(7, 1.1000)

	// Price has pulled back: candidate 1.0995 sits below the tracked
	// 1.1000 and must be refused outright.
	tick := market.Tick{Symbol: "EURUSD", Bid: 1.1005, Ask: 1.1007}
	advanced := m.ManageSymbol(context.Background(), []market.Position{longPosition(7, 1.0990, 1.1000)}, tick, 0.0010)

	assert.Zero(t, advanced)
	assert.Empty(t, exec.reqs)
	stop, _ := m.Tracked(7)
	assert.Equal(t, 1.1000, stop)
}

func TestManagerAdvancesShortStop(t *testing.T) {
	exec := &fakeSubmitter{res: broker.TradeResult{Retcode: broker.RetDone}}
	m := newTestManager(t, exec)

	pos := market.Position{
		Ticket: 9, Symbol: "USDJPY", Side: market.Sell,
		Volume: 0.10, PriceOpen: 150.00, StopLoss: 150.50, Magic: 123456,
	}
	m.Adopt(9, 150.50)

	// Ask 149.40 is 0.60 in profit with ATR 0.20; candidate 149.60.
	tick := market.Tick{Symbol: "USDJPY", Bid: 149.38, Ask: 149.40}
	advanced := m.ManageSymbol(context.Background(), []market.Position{pos}, tick, 0.20)

	assert.Equal(t, 1, advanced)
	stop, _ := m.Tracked(9)
	assert.InDelta(t, 149.60, stop, 1e-9)
}

func TestManagerKeepsStateOnRejectedModify(t *testing.T) {
	exec := &fakeSubmitter{err: errors.New("retries exhausted")}
	m := newTestManager(t, exec)
	m.Adopt(7, 1.0950)

	tick := market.Tick{Symbol: "EURUSD", Bid: 1.1020, Ask: 1.1022}
	advanced := m.ManageSymbol(context.Background(), []market.Position{longPosition(7, 1.1000, 1.0950)}, tick, 0.0010)

	assert.Zero(t, advanced)
	stop, _ := m.Tracked(7)
	assert.Equal(t, 1.0950, stop, "a failed modify must not advance the tracked stop")
}

func TestManagerPrunesClosedTickets(t *testing.T) {
	m := newTestManager(t, &fakeSubmitter{})
	m.Adopt(1, 1.10)
	m.Adopt(2, 1.20)
	m.Adopt(3, 1.30)

	m.Prune(map[int64]bool{2: true})

	_, ok := m.Tracked(1)
	assert.False(t, ok)
	_, ok = m.Tracked(2)
	assert.True(t, ok)
	_, ok = m.Tracked(3)
	assert.False(t, ok)
}

func TestManagerStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "stops.json"))

	m1, err := NewManager(&fakeSubmitter{}, store, 0.5, 1.0, 20, 123456)
	require.NoError(t, err)
	m1.Adopt(42, 1.0980)

	m2, err := NewManager(&fakeSubmitter{}, NewStore(filepath.Join(dir, "stops.json")), 0.5, 1.0, 20, 123456)
	require.NoError(t, err)

	stop, ok := m2.Tracked(42)
	require.True(t, ok)
	assert.Equal(t, 1.0980, stop)
}
