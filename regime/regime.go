// Package regime owns the market-regime classification shared by the whole
// engine. Every upstream detector, whatever it emits, gets normalized into
// this one enumeration at the boundary; raw regime strings never travel
// further into the pipeline.
package regime

import "strings"

// Regime is a coarse market-condition classification used to scale risk.
type Regime string

const (
	Bull     Regime = "BULL"
	Bear     Regime = "BEAR"
	Sideways Regime = "SIDEWAYS"
	Crash    Regime = "CRASH"
	// Triage is the default when nothing else matches: unknown conditions
	// get the most conservative treatment.
	Triage Regime = "TRIAGE"
)

// Normalize maps a raw classification from any detector onto the canonical
// enum via case-insensitive keyword matching. Unmatched input is Triage.
func Normalize(raw string) Regime {
	r := strings.ToLower(raw)
	switch {
	case strings.Contains(r, "bull"):
		return Bull
	case strings.Contains(r, "bear"):
		return Bear
	case strings.Contains(r, "crash"), strings.Contains(r, "crisis"):
		return Crash
	case strings.Contains(r, "side"):
		return Sideways
	}
	return Triage
}

// VolBucket groups a raw volatility scalar into the buckets the hedge table
// is keyed by.
type VolBucket string

const (
	VolLow    VolBucket = "LOW"
	VolNormal VolBucket = "NORMAL"
	VolHigh   VolBucket = "HIGH"
)

// Volatility scalar cutoffs (fractional, e.g. 0.01 = 1%).
const (
	volLowMax    = 0.010
	volNormalMax = 0.030
)

// BucketVolatility maps a volatility scalar to its bucket.
func BucketVolatility(v float64) VolBucket {
	switch {
	case v < volLowMax:
		return VolLow
	case v < volNormalMax:
		return VolNormal
	}
	return VolHigh
}
