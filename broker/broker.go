// Package broker defines the venue connector contract. Every execution venue
// (live or paper) sits behind this interface; nothing above it knows about
// wire formats, signing, or venue-specific payload shapes.
package broker

import (
	"context"

	"github.com/cmorgan-fx/helm/signal"
)

// State is the connector lifecycle state machine. There is no ad hoc "is it
// connected" probing anywhere in the engine; connectors report their state
// explicitly.
type State int

const (
	Disconnected State = iota
	Connected
	// Degraded means the connector is configured and was reachable, but
	// recent calls are failing (e.g. its circuit breaker is open).
	Degraded
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Degraded:
		return "degraded"
	}
	return "disconnected"
}

// Position is one open venue-side position. Read-only to the gate.
type Position struct {
	ID           string           `json:"id"`
	Symbol       string           `json:"symbol"`
	Side         signal.Direction `json:"side"`
	Units        float64          `json:"units"`
	UnrealizedPL float64          `json:"unrealized_pl"`
	Venue        string           `json:"venue"`
}

// OrderSpec is the venue-shaped order a connector submits. The router fills
// in whichever sizing field the venue trades in: signed base units for
// FX-style venues, quote size for spot venues, share quantity for equity
// venues. ClientOrderID is the caller-generated idempotency token; a venue
// that has already seen it must not fill twice.
type OrderSpec struct {
	Symbol        string
	Side          signal.Direction
	Units         float64 // signed base units (FX)
	QuoteSize     float64 // quote-currency size (spot)
	Quantity      float64 // share/contract count (equities)
	SL            float64
	TP            float64
	ClientOrderID string
}

// OrderResult is the structured outcome of an order submission. Venue
// rejections come back as OK=false with Reason set; transport failures come
// back as an error from PlaceOrder. Neither ever panics past the boundary.
type OrderResult struct {
	OK      bool    `json:"ok"`
	TradeID string  `json:"trade_id,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Raw     string  `json:"raw,omitempty"`
}

// Connector is the contract every venue implementation provides. All
// operations are fallible and must return structured failures; the engine
// treats a connector error as a zero contribution, never as a crash.
type Connector interface {
	Name() string
	Connect(ctx context.Context) error
	State() State
	Heartbeat(ctx context.Context) (bool, string)

	Balance(ctx context.Context, currency string) (float64, error)
	NAV(ctx context.Context) (float64, error)
	MarginUsed(ctx context.Context) (float64, error)
	MarginAvailable(ctx context.Context) (float64, error)
	OpenPositions(ctx context.Context) ([]Position, error)

	PlaceOrder(ctx context.Context, spec OrderSpec) (OrderResult, error)
	CloseTrade(ctx context.Context, tradeID string) error
	CurrentPrice(ctx context.Context, instrument string) (float64, error)
}

// PortfolioState is the unified cross-venue exposure view. It is rebuilt
// fresh on every gate check by summing all configured venues; it is never
// cached across ticks because a background lifecycle manager may be
// mutating venue-side positions concurrently.
type PortfolioState struct {
	TotalBalance     float64    `json:"total_balance"`
	TotalNAV         float64    `json:"total_nav"`
	MarginUsed       float64    `json:"margin_used"`
	MarginAvailable  float64    `json:"margin_available"`
	MarginUsedPct    float64    `json:"margin_used_pct"`
	DailyDrawdownPct float64    `json:"daily_drawdown_pct"`
	Positions        []Position `json:"open_positions"`
	Symbols          []string   `json:"position_symbols"`
}

// Finalize computes the derived fields. MarginUsedPct is defined as
// MarginUsed / TotalNAV when NAV is positive, else zero.
func (p *PortfolioState) Finalize() {
	if p.TotalNAV > 0 {
		p.MarginUsedPct = p.MarginUsed / p.TotalNAV
	} else {
		p.MarginUsedPct = 0
	}
}
