package risk

import (
	"strings"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/signal"
)

// CorrelationPolicy decides which open positions count as correlated with a
// candidate. The grouping rule is deliberately pluggable configuration, not
// a hardwired law: different desks group by currency, sector, or asset
// class. Correlated returns whether the two symbols belong together and the
// group label used in the rejection code.
type CorrelationPolicy struct {
	MaxCorrelated int
	Correlated    func(candidate, open string) (bool, string)
}

// DefaultCorrelationPolicy groups separator-delimited symbols (FX pairs,
// crypto products) by any shared currency token, and bare symbols by exact
// match. Conservative "same instrument family" starting point.
func DefaultCorrelationPolicy(maxCorrelated int) CorrelationPolicy {
	if maxCorrelated <= 0 {
		maxCorrelated = DefaultCharter().MaxCorrelated
	}
	return CorrelationPolicy{
		MaxCorrelated: maxCorrelated,
		Correlated:    sharedToken,
	}
}

func symbolTokens(symbol string) []string {
	f := func(r rune) bool { return r == '_' || r == '-' || r == '/' }
	return strings.FieldsFunc(strings.ToUpper(symbol), f)
}

func sharedToken(candidate, open string) (bool, string) {
	ct := symbolTokens(candidate)
	ot := symbolTokens(open)

	// Bare symbols (no separator) correlate only with themselves.
	if len(ct) <= 1 || len(ot) <= 1 {
		if strings.EqualFold(candidate, open) {
			return true, strings.ToUpper(candidate)
		}
		return false, ""
	}

	for _, c := range ct {
		for _, o := range ot {
			if c == o {
				return true, c
			}
		}
	}
	return false, ""
}

// Monitor enforces the exposure-concentration cap for the gate.
type Monitor struct {
	policy CorrelationPolicy
}

func NewMonitor(policy CorrelationPolicy) *Monitor {
	if policy.Correlated == nil {
		policy = DefaultCorrelationPolicy(policy.MaxCorrelated)
	}
	return &Monitor{policy: policy}
}

// Check counts open positions correlated with the candidate. Hitting the cap
// rejects with a code naming the correlation group.
func (m *Monitor) Check(symbol string, _ signal.Direction, positions []broker.Position) Decision {
	count := 0
	group := ""
	for _, p := range positions {
		if ok, g := m.policy.Correlated(symbol, p.Symbol); ok {
			count++
			if group == "" {
				group = g
			}
		}
	}
	if count >= m.policy.MaxCorrelated {
		return reject("CORRELATION_LIMIT_" + group)
	}
	return approve()
}
