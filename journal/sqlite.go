package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fxsentinel/pkg/id"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(o OrderRecord) error {
	if o.OrderID == "" {
		o.OrderID = id.New()
	}
	if o.Time.IsZero() {
		o.Time = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, run_id, time, symbol, action, side, volume, price, stop_loss, take_profit, ticket, retcode, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.RunID, o.Time, o.Symbol, o.Action, o.Side.String(),
		o.Volume, o.Price, o.StopLoss, o.TakeProfit, o.Ticket, int(o.Retcode), o.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordStopMove(m StopMove) error {
	if m.MoveID == "" {
		m.MoveID = id.New()
	}
	if m.Time.IsZero() {
		m.Time = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO stop_moves
		(move_id, run_id, time, symbol, ticket, old_stop, new_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.MoveID, m.RunID, m.Time, m.Symbol, m.Ticket, m.OldStop, m.NewStop,
	)
	return err
}

// DailyReport aggregates per symbol over the UTC calendar day of day.
func (j *SQLiteJournal) DailyReport(day time.Time) ([]ReportRow, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := j.db.Query(`
		SELECT o.symbol,
		       COUNT(*),
		       COALESCE(SUM(o.volume), 0),
		       (SELECT COUNT(*) FROM stop_moves s
		        WHERE s.symbol = o.symbol AND s.time >= ? AND s.time < ?)
		FROM orders o
		WHERE o.time >= ? AND o.time < ?
		GROUP BY o.symbol
		ORDER BY o.symbol`,
		start, end, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var r ReportRow
		if err := rows.Scan(&r.Symbol, &r.Orders, &r.Volume, &r.StopMoves); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
