// Package journal keeps a durable record of everything the engine sent
// to the terminal: order submissions with their verdicts, and trailing
// stop moves. Records are keyed by ULID so they sort by time.
package journal

import (
	"time"

	"fxsentinel/broker"
	"fxsentinel/market"
)

// OrderRecord is one submitted order and the terminal's verdict on it.
type OrderRecord struct {
	OrderID    string
	RunID      string
	Time       time.Time
	Symbol     string
	Action     string
	Side       market.Side
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Ticket     int64
	Retcode    broker.Retcode
	Reason     string
}

// StopMove is one accepted trailing stop advance.
type StopMove struct {
	MoveID  string
	RunID   string
	Time    time.Time
	Symbol  string
	Ticket  int64
	OldStop float64
	NewStop float64
}

// ReportRow is one symbol's aggregate for a calendar day.
type ReportRow struct {
	Symbol    string
	Orders    int
	Volume    float64
	StopMoves int
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordStopMove(StopMove) error
	DailyReport(day time.Time) ([]ReportRow, error)
	Close() error
}
