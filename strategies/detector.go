// Package strategies holds the detector ensemble: small, independent
// heuristics that each map a market snapshot to a directional vote. Detectors
// share no state, never error, and treat missing data as a HOLD.
package strategies

import (
	"fmt"
	"strings"

	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

// Detector is the capability every ensemble member implements.
type Detector interface {
	Name() string
	Vote(snap *market.Snapshot) signal.Direction
}

var registry = make(map[string]Detector)

// Register adds a detector to the package registry under its name.
func Register(d Detector) {
	registry[d.Name()] = d
}

// Get returns a registered detector, or nil if the name is unknown.
func Get(name string) Detector {
	return registry[name]
}

// ByNames resolves an ordered detector list from the registry.
func ByNames(names []string) ([]Detector, error) {
	out := make([]Detector, 0, len(names))
	for _, n := range names {
		d := Get(strings.ToLower(strings.TrimSpace(n)))
		if d == nil {
			return nil, fmt.Errorf("unknown detector %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}

// Ensemble returns the full default detector set in a stable order.
func Ensemble() []Detector {
	return []Detector{
		Momentum{},
		MeanReversion{},
		Breakout{},
		TrendFollow{},
		Range{},
		NewSwingRetrace(50),
		NewGapFill(20),
	}
}

func init() {
	for _, d := range Ensemble() {
		Register(d)
	}
}
