// Package paper is the in-memory execution venue used for paper mode and for
// engine tests. It fills market orders instantly at the last stored price and
// tracks balance, margin, and open positions the way a real venue would.
package paper

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/pkg/id"
	"github.com/cmorgan-fx/helm/signal"
)

const defaultMarginRate = 0.05

var _ broker.Connector = (*Venue)(nil)

type Venue struct {
	mu         sync.Mutex
	name       string
	state      broker.State
	balance    float64
	marginRate float64
	prices     map[string]float64
	positions  map[string]*broker.Position
	entries    map[string]float64
	seenOrders map[string]broker.OrderResult
}

// New builds a paper venue with the given starting balance. The name shows up
// as the Venue field on positions it reports.
func New(name string, balance float64) *Venue {
	return &Venue{
		name:       name,
		balance:    balance,
		marginRate: defaultMarginRate,
		prices:     make(map[string]float64),
		positions:  make(map[string]*broker.Position),
		entries:    make(map[string]float64),
		seenOrders: make(map[string]broker.OrderResult),
	}
}

// SetPrice stores the fill price for an instrument. Orders for an instrument
// with no stored price are rejected, not filled at zero.
func (v *Venue) SetPrice(instrument string, price float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prices[instrument] = price
}

func (v *Venue) Name() string { return v.name }

func (v *Venue) Connect(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = broker.Connected
	return nil
}

func (v *Venue) State() broker.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Venue) Heartbeat(context.Context) (bool, string) {
	if v.State() != broker.Connected {
		return false, "not connected"
	}
	return true, ""
}

func (v *Venue) Balance(_ context.Context, _ string) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balance, nil
}

func (v *Venue) NAV(ctx context.Context) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	nav := v.balance
	for _, p := range v.positions {
		nav += p.UnrealizedPL
	}
	return nav, nil
}

func (v *Venue) MarginUsed(context.Context) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.marginUsedLocked(), nil
}

func (v *Venue) MarginAvailable(ctx context.Context) (float64, error) {
	nav, err := v.NAV(ctx)
	if err != nil {
		return 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	avail := nav - v.marginUsedLocked()
	if avail < 0 {
		avail = 0
	}
	return avail, nil
}

func (v *Venue) marginUsedLocked() float64 {
	var used float64
	for _, p := range v.positions {
		price := v.prices[p.Symbol]
		used += math.Abs(p.Units) * price * v.marginRate
	}
	return used
}

func (v *Venue) OpenPositions(context.Context) ([]broker.Position, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]broker.Position, 0, len(v.positions))
	for _, p := range v.positions {
		out = append(out, *p)
	}
	return out, nil
}

// PlaceOrder fills at the stored price. A ClientOrderID the venue has already
// seen returns the original result without opening a second position.
func (v *Venue) PlaceOrder(_ context.Context, spec broker.OrderSpec) (broker.OrderResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if spec.ClientOrderID != "" {
		if prior, ok := v.seenOrders[spec.ClientOrderID]; ok {
			return prior, nil
		}
	}

	price, ok := v.prices[spec.Symbol]
	if !ok || price <= 0 {
		res := broker.OrderResult{OK: false, Reason: "NO_PRICE"}
		v.rememberLocked(spec.ClientOrderID, res)
		return res, nil
	}

	units := spec.Units
	if units == 0 && spec.QuoteSize > 0 {
		units = spec.QuoteSize / price
	}
	if units == 0 && spec.Quantity > 0 {
		units = spec.Quantity
	}
	if spec.Side == signal.Sell && units > 0 {
		units = -units
	}
	if units == 0 {
		res := broker.OrderResult{OK: false, Reason: "ZERO_UNITS"}
		v.rememberLocked(spec.ClientOrderID, res)
		return res, nil
	}

	tradeID := id.New()
	v.entries[tradeID] = price
	v.positions[tradeID] = &broker.Position{
		ID:     tradeID,
		Symbol: spec.Symbol,
		Side:   spec.Side,
		Units:  units,
		Venue:  v.name,
	}

	res := broker.OrderResult{OK: true, TradeID: tradeID, Price: price}
	v.rememberLocked(spec.ClientOrderID, res)
	return res, nil
}

func (v *Venue) rememberLocked(clientOrderID string, res broker.OrderResult) {
	if clientOrderID != "" {
		v.seenOrders[clientOrderID] = res
	}
}

func (v *Venue) CloseTrade(_ context.Context, tradeID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.positions[tradeID]
	if !ok {
		return fmt.Errorf("close trade: %q not found", tradeID)
	}
	v.balance += p.UnrealizedPL
	delete(v.positions, tradeID)
	delete(v.entries, tradeID)
	return nil
}

func (v *Venue) CurrentPrice(_ context.Context, instrument string) (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	price, ok := v.prices[instrument]
	if !ok {
		return 0, fmt.Errorf("no price for %q", instrument)
	}
	return price, nil
}

// MarkPrice revalues open positions in an instrument against a new price.
func (v *Venue) MarkPrice(instrument string, price float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for tradeID, p := range v.positions {
		if p.Symbol != instrument {
			continue
		}
		if entry := v.entries[tradeID]; entry > 0 {
			p.UnrealizedPL = (price - entry) * p.Units
		}
	}
	v.prices[instrument] = price
}
