package risk

import "fmt"

// Charter is the immutable rulebook the gate enforces. It is loaded once at
// process start and never mutated afterwards; external tooling may rewrite
// the numbers between runs, not during one.
type Charter struct {
	// Timeframe floor: signals on a finer timeframe are rejected.
	MinTimeframe string `json:"min_timeframe" yaml:"min_timeframe"`

	// Notional floors in quote currency, per trading mode.
	MinNotionalLive  float64 `json:"min_notional_live" yaml:"min_notional_live"`
	MinNotionalPaper float64 `json:"min_notional_paper" yaml:"min_notional_paper"`

	// Portfolio-health circuit breakers.
	MaxDailyDrawdownPct float64 `json:"max_daily_drawdown_pct" yaml:"max_daily_drawdown_pct"`
	MaxMarginUsedPct    float64 `json:"max_margin_used_pct" yaml:"max_margin_used_pct"`
	MaxOpenPositions    int     `json:"max_open_positions" yaml:"max_open_positions"`

	// Per-trade constraints.
	MaxRiskPerTrade float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
	OCOMandatory    bool    `json:"oco_mandatory" yaml:"oco_mandatory"`
	MinRewardRisk   float64 `json:"min_reward_risk" yaml:"min_reward_risk"`

	// Exposure concentration.
	MaxCorrelated int `json:"max_correlated" yaml:"max_correlated"`
}

// DefaultCharter returns the institutional defaults.
func DefaultCharter() Charter {
	return Charter{
		MinTimeframe:        "M15",
		MinNotionalLive:     15000,
		MinNotionalPaper:    1000,
		MaxDailyDrawdownPct: 0.05,
		MaxMarginUsedPct:    0.35,
		MaxOpenPositions:    5,
		MaxRiskPerTrade:     0.02,
		OCOMandatory:        true,
		MinRewardRisk:       3.0,
		MaxCorrelated:       2,
	}
}

// MinNotional returns the size floor for the trading mode.
func (c Charter) MinNotional(live bool) float64 {
	if live {
		return c.MinNotionalLive
	}
	return c.MinNotionalPaper
}

// Validate rejects charters that would disable the gate outright.
func (c Charter) Validate() error {
	if _, ok := timeframeRank[c.MinTimeframe]; !ok {
		return fmt.Errorf("charter: unknown min_timeframe %q", c.MinTimeframe)
	}
	if c.MinNotionalLive <= 0 || c.MinNotionalPaper <= 0 {
		return fmt.Errorf("charter: notional floors must be positive")
	}
	if c.MaxDailyDrawdownPct <= 0 || c.MaxDailyDrawdownPct >= 1 {
		return fmt.Errorf("charter: max_daily_drawdown_pct must be in (0,1)")
	}
	if c.MaxMarginUsedPct <= 0 || c.MaxMarginUsedPct >= 1 {
		return fmt.Errorf("charter: max_margin_used_pct must be in (0,1)")
	}
	if c.MaxOpenPositions <= 0 {
		return fmt.Errorf("charter: max_open_positions must be positive")
	}
	if c.MinRewardRisk <= 0 {
		return fmt.Errorf("charter: min_reward_risk must be positive")
	}
	if c.MaxCorrelated <= 0 {
		return fmt.Errorf("charter: max_correlated must be positive")
	}
	return nil
}

// timeframeRank orders granularities from finest to coarsest. A signal whose
// timeframe ranks below the charter floor is rejected; an unknown timeframe
// ranks below everything, which keeps the gate conservative.
var timeframeRank = map[string]int{
	"M1": 1, "M5": 2, "M15": 3, "M30": 4,
	"H1": 5, "H4": 6, "D": 7, "W": 8,
}

func timeframeBelow(tf, floor string) bool {
	return timeframeRank[tf] < timeframeRank[floor]
}
