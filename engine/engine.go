// Package engine runs the single-threaded control loop: fetch a signal,
// rebuild the portfolio view, gate it, dispatch. Nothing in the loop spawns
// goroutines; a background lifecycle manager may mutate venue-side positions
// concurrently, which is why the portfolio is re-fetched every iteration and
// never cached.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cmorgan-fx/helm/journal"
	"github.com/cmorgan-fx/helm/pkg/id"
	"github.com/cmorgan-fx/helm/risk"
	"github.com/cmorgan-fx/helm/router"
	"github.com/cmorgan-fx/helm/signal"
)

// SignalSource yields the next candidate signal, or nil when there is
// nothing to trade this tick.
type SignalSource interface {
	Next(ctx context.Context) *signal.Signal
}

// Outcome classifies one loop iteration.
type Outcome int

const (
	// Idle: no signal this tick.
	Idle Outcome = iota
	// Halted: portfolio health failed; the loop backs off before retrying.
	Halted
	// Rejected: the signal failed charter validation.
	Rejected
	// Dispatched: the order reached a venue and filled.
	Dispatched
	// Failed: routing or submission failed, or the venue rejected the order.
	Failed
)

type Engine struct {
	source  SignalSource
	gate    *risk.Gate
	router  *router.Router
	journal journal.Journal

	tick time.Duration
	halt time.Duration
}

// New wires the loop. journal may be nil, which disables the audit trail.
func New(source SignalSource, gate *risk.Gate, r *router.Router, j journal.Journal, tick, halt time.Duration) *Engine {
	if j == nil {
		j = journal.Discard{}
	}
	return &Engine{source: source, gate: gate, router: r, journal: j, tick: tick, halt: halt}
}

// Run loops until ctx is cancelled. In-flight venue I/O finishes or times
// out on its own; cancellation is only checked between iterations.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().Dur("tick", e.tick).Dur("halt", e.halt).Msg("engine started")

	for {
		outcome := e.Step(ctx)

		delay := e.tick
		if outcome == Halted {
			delay = e.halt
		}
		if err := sleep(ctx, delay); err != nil {
			log.Info().Msg("engine stopped")
			return nil
		}
	}
}

// Step runs one iteration of the control loop.
func (e *Engine) Step(ctx context.Context) Outcome {
	s := e.source.Next(ctx)
	if s == nil {
		return Idle
	}

	// Always a fresh view: the loop is not the sole writer of positions.
	state := e.router.GetPortfolioState(ctx)

	if d := e.gate.CheckPortfolio(*state); !d.Approved {
		e.recordDecision(*s, d)
		return Halted
	}

	d := e.gate.ValidateSignal(*s, state.Positions)
	e.recordDecision(*s, d)
	if !d.Approved {
		return Rejected
	}

	clientOrderID := id.OrderID()
	res, err := e.router.ExecuteOrder(ctx, s.Packet(), clientOrderID)

	rec := journal.OrderRecord{
		ClientOrderID: clientOrderID,
		Time:          time.Now().UTC(),
		Symbol:        s.Symbol,
		Direction:     string(s.Direction),
		Notional:      s.NotionalValue,
		Venue:         router.ResolveVenue(s.Symbol),
	}

	switch {
	case err != nil:
		rec.Detail = err.Error()
		log.Error().Err(err).Str("symbol", s.Symbol).Msg("order dispatch failed")
	case !res.OK:
		rec.Detail = res.Reason
		log.Warn().Str("symbol", s.Symbol).Str("reason", res.Reason).Msg("venue rejected order")
	default:
		rec.OK = true
		rec.TradeID = res.TradeID
		log.Info().
			Str("symbol", s.Symbol).
			Str("trade_id", res.TradeID).
			Float64("price", res.Price).
			Msg("order filled")
	}

	if jerr := e.journal.RecordOrder(rec); jerr != nil {
		log.Error().Err(jerr).Msg("journal order record failed")
	}

	if err != nil || !res.OK {
		return Failed
	}
	return Dispatched
}

func (e *Engine) recordDecision(s signal.Signal, d risk.Decision) {
	rec := journal.DecisionRecord{
		ID:        id.New(),
		Time:      time.Now().UTC(),
		Symbol:    s.Symbol,
		Direction: string(s.Direction),
		Timeframe: s.Timeframe,
		Notional:  s.NotionalValue,
		Approved:  d.Approved,
		Reason:    d.Reason,
		Source:    s.Source,
	}
	if err := e.journal.RecordDecision(rec); err != nil {
		log.Error().Err(err).Msg("journal decision record failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
