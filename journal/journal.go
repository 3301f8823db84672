// Package journal persists the audit trail: every gate decision and every
// dispatched order, with its client order id. The engine works fine with the
// Discard journal; operators running live want the SQLite one.
package journal

import "time"

// DecisionRecord is one gate verdict on one candidate signal.
type DecisionRecord struct {
	ID        string
	Time      time.Time
	Symbol    string
	Direction string
	Timeframe string
	Notional  float64
	Approved  bool
	Reason    string
	Source    string
}

// OrderRecord is one order handed to a venue connector.
type OrderRecord struct {
	ClientOrderID string
	Time          time.Time
	Symbol        string
	Direction     string
	Notional      float64
	Venue         string
	OK            bool
	TradeID       string
	Detail        string
}

type Journal interface {
	RecordDecision(DecisionRecord) error
	RecordOrder(OrderRecord) error
	Close() error
}

// Discard is a no-op journal.
type Discard struct{}

func (Discard) RecordDecision(DecisionRecord) error { return nil }
func (Discard) RecordOrder(OrderRecord) error       { return nil }
func (Discard) Close() error                        { return nil }
