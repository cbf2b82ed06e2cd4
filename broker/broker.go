// Package broker defines the trading-terminal contract: account and market
// data reads, order submission, and the bounded-retry executor that wraps it.
package broker

import (
	"context"

	"fxsentinel/market"
)

// Broker is the terminal collaborator. All calls are synchronous; the
// terminal enforces its own per-call timeouts.
type Broker interface {
	// Account returns the current account snapshot.
	Account(ctx context.Context) (market.Account, error)

	// Candles returns the most recent count closed bars for symbol,
	// oldest first.
	Candles(ctx context.Context, symbol string, count int) ([]market.Candle, error)

	// Tick returns the live bid/ask quote for symbol.
	Tick(ctx context.Context, symbol string) (market.Tick, error)

	// Positions returns the open positions for symbol carrying the given
	// magic number. magic 0 returns all positions for the symbol.
	Positions(ctx context.Context, symbol string, magic int64) ([]market.Position, error)

	// OrderSend submits a trade request and returns the terminal's
	// verdict. A non-nil error means transport failure; rejections are
	// expressed through TradeResult.Retcode.
	OrderSend(ctx context.Context, req TradeRequest) (TradeResult, error)
}

// Trade request actions.
const (
	ActionDeal   = "deal"  // open a position at market
	ActionClose  = "close" // close an existing position at market
	ActionModify = "sltp"  // modify stop loss / take profit in place
)

// TradeRequest is a trade intent sent to the terminal.
type TradeRequest struct {
	Action     string      `json:"action"`
	Symbol     string      `json:"symbol"`
	Side       market.Side `json:"side"`
	Volume     float64     `json:"volume"`
	Price      float64     `json:"price"`
	StopLoss   float64     `json:"sl"`
	TakeProfit float64     `json:"tp"`
	Deviation  int         `json:"deviation"`
	Magic      int64       `json:"magic"`
	Ticket     int64       `json:"ticket,omitempty"` // close/modify target
	ClientID   string      `json:"client_id"`
	Comment    string      `json:"comment,omitempty"`
}

// TradeResult is the terminal's verdict on a request.
type TradeResult struct {
	Retcode Retcode `json:"retcode"`
	Ticket  int64   `json:"ticket"`
	Comment string  `json:"comment"`
}

// Accepted reports whether the terminal applied the request, either by
// executing it or by confirming there was nothing to change.
func (r TradeResult) Accepted() bool {
	return r.Retcode == RetDone || r.Retcode == RetNoChanges
}

// Retcode is the terminal's numeric outcome code (MT5 numbering).
type Retcode int

const (
	RetRequote   Retcode = 10004 // transient: price moved, retry
	RetDone      Retcode = 10009 // request executed
	RetNoChanges Retcode = 10025 // idempotent no-op: already applied
)

func (r Retcode) String() string {
	switch r {
	case RetDone:
		return "done"
	case RetRequote:
		return "requote"
	case RetNoChanges:
		return "no_changes"
	default:
		return "rejected"
	}
}
