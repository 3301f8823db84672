// Package router owns symbol→venue resolution, cross-venue portfolio
// aggregation, and order dispatch. It is the only code that knows which
// venue a symbol trades on.
package router

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/signal"
)

// Venue names as used in routing rules and config.
const (
	VenueOANDA    = "OANDA"
	VenueCoinbase = "COINBASE"
	VenueIBKR     = "IBKR"
)

// ResolveVenue applies the structural routing rules in fixed order: an
// underscore marks an FX pair (OANDA), a dash marks a crypto product
// (Coinbase), and a bare symbol is an equity (IBKR). First match wins.
func ResolveVenue(symbol string) string {
	switch {
	case strings.Contains(symbol, "_"):
		return VenueOANDA
	case strings.Contains(symbol, "-"):
		return VenueCoinbase
	default:
		return VenueIBKR
	}
}

// Router dispatches orders to configured venue connectors and aggregates
// their account state into one PortfolioState.
type Router struct {
	venues map[string]broker.Connector

	// Day-open NAV anchor for drawdown tracking. Reset when the UTC day
	// rolls over.
	anchorDay time.Time
	anchorNAV float64
}

func New(venues ...broker.Connector) *Router {
	r := &Router{venues: make(map[string]broker.Connector)}
	for _, v := range venues {
		r.venues[v.Name()] = v
	}
	return r
}

// Venues returns the configured venue names, sorted.
func (r *Router) Venues() []string {
	names := make([]string, 0, len(r.venues))
	for name := range r.venues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Connector returns the connector for a configured venue.
func (r *Router) Connector(venue string) (broker.Connector, bool) {
	c, ok := r.venues[venue]
	return c, ok
}

// Route resolves the owning connector for a symbol. A symbol whose venue is
// not configured is a hard failure, never a silent default.
func (r *Router) Route(symbol string) (broker.Connector, error) {
	venue := ResolveVenue(symbol)
	conn, ok := r.venues[venue]
	if !ok {
		return nil, fmt.Errorf("route %q: venue %s not configured", symbol, venue)
	}
	return conn, nil
}

// GetPortfolioState queries every configured venue and sums the numeric
// fields. It never fails: a venue that errors contributes zero and is
// logged. Aggregation order is deterministic (sorted venue names).
func (r *Router) GetPortfolioState(ctx context.Context) *broker.PortfolioState {
	state := &broker.PortfolioState{}

	for _, name := range r.Venues() {
		conn := r.venues[name]

		bal, err := conn.Balance(ctx, "")
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("balance query failed, zero contribution")
			continue
		}
		nav, err := conn.NAV(ctx)
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("nav query failed, zero contribution")
			continue
		}
		used, err := conn.MarginUsed(ctx)
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("margin query failed, zero contribution")
			continue
		}
		avail, err := conn.MarginAvailable(ctx)
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("margin query failed, zero contribution")
			continue
		}

		state.TotalBalance += bal
		state.TotalNAV += nav
		state.MarginUsed += used
		state.MarginAvailable += avail

		positions, err := conn.OpenPositions(ctx)
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("positions query failed, zero contribution")
			continue
		}
		state.Positions = append(state.Positions, positions...)
	}

	seen := make(map[string]bool)
	for _, p := range state.Positions {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			state.Symbols = append(state.Symbols, p.Symbol)
		}
	}

	state.DailyDrawdownPct = r.trackDrawdown(state.TotalNAV)
	state.Finalize()
	return state
}

// trackDrawdown anchors NAV at the first observation of each UTC day and
// reports the fractional decline from that anchor. Gains report zero.
func (r *Router) trackDrawdown(nav float64) float64 {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !r.anchorDay.Equal(today) || r.anchorNAV == 0 {
		r.anchorDay = today
		r.anchorNAV = nav
	}
	if r.anchorNAV <= 0 || nav >= r.anchorNAV {
		return 0
	}
	return (r.anchorNAV - nav) / r.anchorNAV
}

// ExecuteOrder adapts an approved packet into the venue's native sizing and
// dispatches it. FX venues get signed base units, spot venues get quote
// size, equity venues get a share quantity; base sizes derive from the
// venue's current price.
func (r *Router) ExecuteOrder(ctx context.Context, pkt signal.OrderPacket, clientOrderID string) (broker.OrderResult, error) {
	conn, err := r.Route(pkt.Symbol)
	if err != nil {
		return broker.OrderResult{}, err
	}

	spec := broker.OrderSpec{
		Symbol:        pkt.Symbol,
		Side:          pkt.Direction,
		SL:            pkt.SL,
		TP:            pkt.TP,
		ClientOrderID: clientOrderID,
	}

	switch conn.Name() {
	case VenueCoinbase:
		// Spot buys are sized in quote currency; sells liquidate base
		// units, so the notional converts at the current price.
		if pkt.Direction == signal.Sell {
			price, err := conn.CurrentPrice(ctx, pkt.Symbol)
			if err != nil {
				return broker.OrderResult{}, fmt.Errorf("size order %q: %w", pkt.Symbol, err)
			}
			spec.Units = pkt.NotionalValue / price
		} else {
			spec.QuoteSize = pkt.NotionalValue
		}
	case VenueOANDA:
		price, err := conn.CurrentPrice(ctx, pkt.Symbol)
		if err != nil {
			return broker.OrderResult{}, fmt.Errorf("size order %q: %w", pkt.Symbol, err)
		}
		spec.Units = math.Round(pkt.NotionalValue / price)
	default:
		price, err := conn.CurrentPrice(ctx, pkt.Symbol)
		if err != nil {
			return broker.OrderResult{}, fmt.Errorf("size order %q: %w", pkt.Symbol, err)
		}
		spec.Quantity = math.Floor(pkt.NotionalValue / price)
	}

	log.Info().
		Str("venue", conn.Name()).
		Str("symbol", pkt.Symbol).
		Str("direction", string(pkt.Direction)).
		Float64("notional", pkt.NotionalValue).
		Str("client_order_id", clientOrderID).
		Msg("dispatching order")

	return conn.PlaceOrder(ctx, spec)
}

// FlattenAll closes every open position reachable through configured
// venues. Best effort: failures are logged and counted against no venue.
// Returns the number of positions closed per venue.
func (r *Router) FlattenAll(ctx context.Context) map[string]int {
	closed := make(map[string]int)

	for _, name := range r.Venues() {
		conn := r.venues[name]
		closed[name] = 0

		positions, err := conn.OpenPositions(ctx)
		if err != nil {
			log.Warn().Err(err).Str("venue", name).Msg("flatten: cannot list positions")
			continue
		}
		for _, p := range positions {
			if err := conn.CloseTrade(ctx, p.ID); err != nil {
				log.Warn().Err(err).Str("venue", name).Str("trade_id", p.ID).Msg("flatten: close failed")
				continue
			}
			closed[name]++
		}
	}
	return closed
}
