package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(id, time, symbol, direction, timeframe, notional, approved, reason, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Time, d.Symbol, d.Direction, d.Timeframe,
		d.Notional, d.Approved, d.Reason, d.Source,
	)
	return err
}

func (j *SQLiteJournal) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(client_order_id, time, symbol, direction, notional, venue, ok, trade_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ClientOrderID, o.Time, o.Symbol, o.Direction,
		o.Notional, o.Venue, o.OK, o.TradeID, o.Detail,
	)
	return err
}

// RecentDecisions returns the newest n decisions, newest first. Used by the
// status command.
func (j *SQLiteJournal) RecentDecisions(n int) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, time, symbol, direction, timeframe, notional, approved, reason, source
		FROM decisions ORDER BY time DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		if err := rows.Scan(&d.ID, &d.Time, &d.Symbol, &d.Direction, &d.Timeframe,
			&d.Notional, &d.Approved, &d.Reason, &d.Source); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
