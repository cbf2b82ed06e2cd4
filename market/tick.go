package market

import (
	"context"
	"time"
)

// Tick is a live bid/ask quote for a symbol.
type Tick struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

// Mid returns the quote midpoint.
func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Spread returns ask minus bid.
func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// QuoteSource supplies live ticks by symbol. The broker implements this;
// the risk sizer uses it to resolve currency-conversion pairs.
type QuoteSource interface {
	Tick(ctx context.Context, symbol string) (Tick, error)
}
