package market

// Side is the direction of a trade or open position.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

// Opposite returns the closing side for a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Position is an open position as reported by the terminal. The terminal
// owns positions; the engine only reads them and proposes stop changes.
type Position struct {
	Ticket     int64
	Symbol     string
	Side       Side
	Volume     float64
	PriceOpen  float64
	StopLoss   float64
	TakeProfit float64
	Magic      int64
}

// Account is the per-cycle account snapshot.
type Account struct {
	Balance  float64
	Equity   float64
	Currency string
}
