// Package signal turns an indicator snapshot into a directional decision.
package signal

import (
	"context"

	"fxsentinel/indicators"
)

// Signal is the terminal outcome of one evaluation: hold, buy or sell.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Decision is the structured outcome of a signal source. Reason is a
// human-readable account of why the signal fired or was withheld; it is a
// derived view of the same evaluation, not separate logic.
type Decision struct {
	Signal Signal
	Reason string
}

// Source produces an entry decision from a snapshot. Implementations must
// never return an error: an unusable snapshot or a failed collaborator is a
// Hold with a reason.
type Source interface {
	Name() string
	Decide(ctx context.Context, snap indicators.Snapshot) Decision
}
