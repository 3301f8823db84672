// Package risk is the final authority on whether an order may leave the
// system. Rejections here are expected, named outcomes, not errors: the
// engine logs them and carries on.
package risk

import (
	"github.com/rs/zerolog/log"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/signal"
)

// Closed set of gate reason codes. Everything the gate ever says is one of
// these (plus the correlation monitor's group-tagged code).
const (
	ReasonApproved         = "APPROVED"
	ReasonDailyLossBreaker = "DAILY_LOSS_BREAKER_ACTIVE"
	ReasonMarginCap        = "MARGIN_CAP_HIT"
	ReasonMaxPositions     = "MAX_POSITIONS_REACHED"
	ReasonTimeframeTooLow  = "TIMEFRAME_TOO_LOW"
	ReasonSizeTooSmall     = "SIZE_TOO_SMALL"
	ReasonMissingOCO       = "MISSING_OCO_SL_TP"
	ReasonRRTooLow         = "RR_RATIO_TOO_LOW"
)

// Decision is the gate's verdict on one check.
type Decision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

func approve() Decision {
	return Decision{Approved: true, Reason: ReasonApproved}
}

func reject(reason string) Decision {
	return Decision{Approved: false, Reason: reason}
}

// Gate validates signals against the charter and checks aggregate portfolio
// health. It holds no mutable state; both checks are pure functions of their
// inputs and the immutable charter.
type Gate struct {
	charter     Charter
	live        bool
	minNotional float64
	corr        *Monitor
}

// NewGate builds a gate for the given mode. The correlation monitor may be
// nil, which disables the concentration check (used by some tests).
func NewGate(c Charter, live bool, corr *Monitor) *Gate {
	return &Gate{
		charter:     c,
		live:        live,
		minNotional: c.MinNotional(live),
		corr:        corr,
	}
}

// CheckPortfolio decides whether the account is healthy enough to trade at
// all. Called once per tick with a freshly aggregated state, before any
// per-signal validation. Passing health approves nothing by itself.
func (g *Gate) CheckPortfolio(p broker.PortfolioState) Decision {
	// Strictly greater than: a drawdown of exactly the cap still trades.
	if p.DailyDrawdownPct > g.charter.MaxDailyDrawdownPct {
		log.Warn().Float64("drawdown_pct", p.DailyDrawdownPct).Msg("daily loss breaker active")
		return reject(ReasonDailyLossBreaker)
	}
	if p.MarginUsedPct > g.charter.MaxMarginUsedPct {
		log.Warn().Float64("margin_used_pct", p.MarginUsedPct).Msg("margin cap hit")
		return reject(ReasonMarginCap)
	}
	if len(p.Positions) >= g.charter.MaxOpenPositions {
		log.Warn().Int("open_positions", len(p.Positions)).Msg("max positions reached")
		return reject(ReasonMaxPositions)
	}
	return approve()
}

// ValidateSignal runs the charter rules against one candidate signal, in
// fixed order, first failure wins. positions are the currently open
// cross-venue positions for the correlation check.
func (g *Gate) ValidateSignal(s signal.Signal, positions []broker.Position) Decision {
	// 1. Timeframe floor.
	if timeframeBelow(s.Timeframe, g.charter.MinTimeframe) {
		return g.rejected(s, reject(ReasonTimeframeTooLow))
	}

	// 2. Notional floor for the mode.
	if s.NotionalValue < g.minNotional {
		return g.rejected(s, reject(ReasonSizeTooSmall))
	}

	// 3. Mandatory OCO bracket.
	if g.charter.OCOMandatory && (s.SL == 0 || s.TP == 0) {
		return g.rejected(s, reject(ReasonMissingOCO))
	}

	// 4. Reward/risk floor, only when all three levels are present. Zero
	// risk makes the ratio non-computable, which fails the rule.
	if s.Entry != 0 && s.SL != 0 && s.TP != 0 {
		rr, ok := s.RR()
		if !ok || rr < g.charter.MinRewardRisk {
			return g.rejected(s, reject(ReasonRRTooLow))
		}
	}

	// 5. Exposure concentration.
	if g.corr != nil {
		if d := g.corr.Check(s.Symbol, s.Direction, positions); !d.Approved {
			return g.rejected(s, d)
		}
	}

	log.Info().Str("symbol", s.Symbol).Str("direction", string(s.Direction)).Msg("gate approved")
	return approve()
}

func (g *Gate) rejected(s signal.Signal, d Decision) Decision {
	log.Info().
		Str("symbol", s.Symbol).
		Str("direction", string(s.Direction)).
		Str("reason", d.Reason).
		Msg("gate blocked")
	return d
}

// Status describes the active gate configuration for operator tooling.
type Status struct {
	Mode          string  `json:"mode"`
	MinNotional   float64 `json:"min_notional"`
	MaxMarginPct  float64 `json:"max_margin_pct"`
	MaxRisk       float64 `json:"max_risk_per_trade"`
	OCOMandatory  bool    `json:"oco_mandatory"`
	MinTimeframe  string  `json:"min_timeframe"`
	MinRewardRisk float64 `json:"min_reward_risk"`
}

func (g *Gate) Status() Status {
	mode := "PAPER"
	if g.live {
		mode = "LIVE"
	}
	return Status{
		Mode:          mode,
		MinNotional:   g.minNotional,
		MaxMarginPct:  g.charter.MaxMarginUsedPct,
		MaxRisk:       g.charter.MaxRiskPerTrade,
		OCOMandatory:  g.charter.OCOMandatory,
		MinTimeframe:  g.charter.MinTimeframe,
		MinRewardRisk: g.charter.MinRewardRisk,
	}
}
