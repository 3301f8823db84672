package regime

import (
	"math"

	"github.com/cmorgan-fx/helm/market"
)

// Source supplies the current raw regime classification and a volatility
// scalar. Implementations may be external detectors (emitting free-form
// strings) or the snapshot heuristic below; either way the brain normalizes
// the string through Normalize before using it.
type Source interface {
	Detect() (raw string, volatility float64)
}

// crash threshold: a drop this deep across the window is treated as a
// crisis regardless of trend structure.
const crashDrawdown = -0.08

// SnapshotDetector classifies the regime from the most recently observed
// snapshot. Update it from the data feed; Detect reads the latest state.
type SnapshotDetector struct {
	raw string
	vol float64
}

func NewSnapshotDetector() *SnapshotDetector {
	return &SnapshotDetector{raw: string(Triage)}
}

// Observe reclassifies from a fresh snapshot.
func (d *SnapshotDetector) Observe(s *market.Snapshot) {
	d.vol = windowVolatility(s.Candles)
	d.raw = classify(s)
}

// Detect returns the last observed classification.
func (d *SnapshotDetector) Detect() (string, float64) {
	return d.raw, d.vol
}

func classify(s *market.Snapshot) string {
	if n := len(s.Candles); n >= 2 {
		first := s.Candles[0].Close
		if first > 0 && (s.Price-first)/first < crashDrawdown {
			return string(Crash)
		}
	}
	if s.SMA20 == 0 || s.SMA50 == 0 {
		return string(Triage)
	}
	if s.ADX != 0 && s.ADX < 25 {
		return string(Sideways)
	}
	switch {
	case s.SMA20 > s.SMA50*1.005:
		return string(Bull)
	case s.SMA20 < s.SMA50*0.995:
		return string(Bear)
	}
	return string(Sideways)
}

// windowVolatility is the standard deviation of close-to-close returns
// across the candle window.
func windowVolatility(bars []market.Candle) float64 {
	if len(bars) < 2 {
		return 0
	}
	rets := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		rets = append(rets, (bars[i].Close-prev)/prev)
	}
	if len(rets) == 0 {
		return 0
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var ss float64
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss / float64(len(rets)))
}
