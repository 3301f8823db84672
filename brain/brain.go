// Package brain coordinates signal sourcing. An external inference service
// (an opaque ML collaborator) is always preferred because it carries price
// levels; the detector ensemble is polled as a fallback, but a bare
// directional consensus has no entry/stop/target and can never satisfy the
// gate's mandatory-stop rule, so it is logged and not traded.
package brain

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/regime"
	"github.com/cmorgan-fx/helm/signal"
	"github.com/cmorgan-fx/helm/strategies"
)

// Defaults applied when the inference payload omits a field.
const (
	DefaultNotional   = 16000
	DefaultTimeframe  = "M15"
	DefaultConfidence = 0.75
)

// Inference is the raw payload from the external inference source, in its
// native field names. The brain normalizes it into the canonical schema.
type Inference struct {
	Pair       string  `json:"pair"`
	Direction  string  `json:"direction"`
	Timeframe  string  `json:"timeframe"`
	Entry      float64 `json:"entry"`
	SL         float64 `json:"sl"`
	TP         float64 `json:"tp"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"ml_note"`
}

// InferenceSource yields the next available inference, or nil when the
// service has nothing. Errors are connectivity problems, not empty results.
type InferenceSource interface {
	Fetch(ctx context.Context) (*Inference, error)
}

// Brain is the top-level signal coordinator.
type Brain struct {
	inference InferenceSource
	ensemble  *strategies.Aggregator
	regimes   regime.Source
}

// New builds a brain. inference may be nil (ensemble-only operation);
// regimes may be nil, which pins hedge adjustment to the triage row.
func New(inference InferenceSource, ensemble *strategies.Aggregator, regimes regime.Source) *Brain {
	return &Brain{inference: inference, ensemble: ensemble, regimes: regimes}
}

// GetSignal returns the next tradable signal, or nil when neither source
// yields one. The returned signal is already regime-adjusted; the caller
// hands it straight to the gate.
func (b *Brain) GetSignal(ctx context.Context, snap *market.Snapshot) *signal.Signal {
	reg, vol := b.currentRegime()
	params := regime.Params(reg, vol)

	if b.inference != nil {
		inf, err := b.inference.Fetch(ctx)
		if err != nil {
			// Connectivity trouble at the inference source is routine; fall
			// through to the ensemble.
			log.Warn().Err(err).Msg("inference source unavailable")
		} else if inf != nil {
			if s := b.normalize(inf); s != nil {
				adjusted := params.Adjust(*s)
				log.Info().
					Str("symbol", adjusted.Symbol).
					Str("direction", string(adjusted.Direction)).
					Str("regime", string(reg)).
					Float64("notional", adjusted.NotionalValue).
					Msg("inference signal")
				return &adjusted
			}
		}
	}

	if b.ensemble != nil && snap != nil {
		cons := b.ensemble.Consensus(snap)
		if cons.Direction.Tradable() {
			// Deliberate: a consensus without price levels is an opinion,
			// not an order. It would fail the mandatory-stop rule anyway.
			log.Info().
				Str("symbol", snap.Symbol).
				Str("direction", string(cons.Direction)).
				Float64("confidence", cons.Confidence).
				Interface("votes", cons.Votes).
				Msg("ensemble consensus (no price levels, not tradable)")
		}
	}

	return nil
}

func (b *Brain) currentRegime() (regime.Regime, float64) {
	if b.regimes == nil {
		return regime.Triage, 0
	}
	raw, vol := b.regimes.Detect()
	return regime.Normalize(raw), vol
}

// normalize converts an inference payload into the canonical signal schema,
// applying defaults for omitted fields. Malformed payloads are dropped at
// this boundary with a log record, never passed into the gate.
func (b *Brain) normalize(inf *Inference) *signal.Signal {
	s := signal.Signal{
		Symbol:        inf.Pair,
		Direction:     signal.Direction(strings.ToUpper(strings.TrimSpace(inf.Direction))),
		Timeframe:     inf.Timeframe,
		NotionalValue: DefaultNotional,
		Entry:         inf.Entry,
		SL:            inf.SL,
		TP:            inf.TP,
		Confidence:    inf.Confidence,
		Source:        "inference",
		Note:          inf.Note,
	}
	if s.Timeframe == "" {
		s.Timeframe = DefaultTimeframe
	}
	if s.Confidence == 0 {
		s.Confidence = DefaultConfidence
	}
	if err := s.Validate(); err != nil {
		log.Warn().Err(err).Str("pair", inf.Pair).Msg("dropping malformed inference payload")
		return nil
	}
	return &s
}
