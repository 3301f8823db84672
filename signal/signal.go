// Package signal defines the canonical trade signal schema shared by the
// strategy ensemble, the brain, the risk gate and the venue router. Signals
// are value objects: built once, validated at the boundary, optionally
// rescaled by the regime adjuster, then approved or discarded. Nothing
// mutates a signal after gate approval.
package signal

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Direction is a directional trading opinion.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Opposite returns the opposing tradable direction. Hold has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Buy:
		return Sell
	case Sell:
		return Buy
	}
	return Hold
}

// Tradable reports whether the direction can back an order.
func (d Direction) Tradable() bool {
	return d == Buy || d == Sell
}

var validate = validator.New()

// Signal is the canonical tradable signal. Entry/SL/TP are prices in the
// instrument's native units; NotionalValue is quote-currency exposure.
type Signal struct {
	Symbol        string    `json:"symbol" validate:"required"`
	Direction     Direction `json:"direction" validate:"required,oneof=BUY SELL"`
	Timeframe     string    `json:"timeframe" validate:"required"`
	NotionalValue float64   `json:"notional_value" validate:"gt=0"`
	Entry         float64   `json:"entry,omitempty" validate:"gte=0"`
	SL            float64   `json:"sl,omitempty" validate:"gte=0"`
	TP            float64   `json:"tp,omitempty" validate:"gte=0"`
	Confidence    float64   `json:"confidence" validate:"gte=0,lte=1"`
	Source        string    `json:"source" validate:"required"`
	Note          string    `json:"note,omitempty"`
}

// Validate rejects malformed signals at construction time, so the gate only
// ever reasons about well-formed ones.
func (s Signal) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}
	return nil
}

// RR returns the reward/risk ratio when entry, stop and target are all set.
// ok is false when the ratio is not computable (missing level or zero risk).
func (s Signal) RR() (rr float64, ok bool) {
	if s.Entry == 0 || s.SL == 0 || s.TP == 0 {
		return 0, false
	}
	risk := math.Abs(s.Entry - s.SL)
	if risk == 0 {
		return 0, false
	}
	return math.Abs(s.TP-s.Entry) / risk, true
}

// Packet derives the router-facing order request from an approved signal.
func (s Signal) Packet() OrderPacket {
	return OrderPacket{
		Symbol:        s.Symbol,
		Direction:     s.Direction,
		NotionalValue: s.NotionalValue,
		SL:            s.SL,
		TP:            s.TP,
	}
}

// OrderPacket is the venue-agnostic order request handed to the router.
type OrderPacket struct {
	Symbol        string    `json:"symbol" validate:"required"`
	Direction     Direction `json:"direction" validate:"required,oneof=BUY SELL"`
	NotionalValue float64   `json:"notional_value" validate:"gt=0"`
	SL            float64   `json:"sl,omitempty"`
	TP            float64   `json:"tp,omitempty"`
}

// Validate rejects malformed packets before they reach a connector.
func (p OrderPacket) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid order packet: %w", err)
	}
	return nil
}

// Consensus is the aggregated opinion of the strategy ensemble. It carries
// no price levels, so it is never tradable on its own.
type Consensus struct {
	Direction  Direction         `json:"direction"`
	Confidence float64           `json:"confidence"`
	Votes      map[Direction]int `json:"votes"`
	Source     string            `json:"source"`
}
