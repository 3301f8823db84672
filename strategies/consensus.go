package strategies

import (
	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

// DefaultMinAgreement is how many detectors must agree before the ensemble
// declares a direction.
const DefaultMinAgreement = 2

// Aggregator polls an ensemble and tallies its votes. It holds no state
// between calls; two polls with the same snapshot produce the same result.
type Aggregator struct {
	detectors    []Detector
	minAgreement int
}

// NewAggregator builds an aggregator over the given detectors. A
// non-positive minAgreement falls back to DefaultMinAgreement.
func NewAggregator(detectors []Detector, minAgreement int) *Aggregator {
	if minAgreement <= 0 {
		minAgreement = DefaultMinAgreement
	}
	return &Aggregator{detectors: detectors, minAgreement: minAgreement}
}

// Size returns the ensemble size.
func (a *Aggregator) Size() int { return len(a.detectors) }

// Consensus polls every detector with the same snapshot and returns the
// winning direction. A direction wins only with at least minAgreement votes
// AND strictly more votes than the opposite direction; anything else is a
// HOLD with zero confidence.
func (a *Aggregator) Consensus(snap *market.Snapshot) signal.Consensus {
	votes := map[signal.Direction]int{
		signal.Buy:  0,
		signal.Sell: 0,
		signal.Hold: 0,
	}
	for _, d := range a.detectors {
		votes[d.Vote(snap)]++
	}

	res := signal.Consensus{
		Direction: signal.Hold,
		Votes:     votes,
		Source:    "ensemble",
	}

	size := len(a.detectors)
	if size == 0 {
		return res
	}

	switch {
	case votes[signal.Buy] >= a.minAgreement && votes[signal.Buy] > votes[signal.Sell]:
		res.Direction = signal.Buy
		res.Confidence = float64(votes[signal.Buy]) / float64(size)
	case votes[signal.Sell] >= a.minAgreement && votes[signal.Sell] > votes[signal.Buy]:
		res.Direction = signal.Sell
		res.Confidence = float64(votes[signal.Sell]) / float64(size)
	}
	return res
}
