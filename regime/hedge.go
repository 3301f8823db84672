package regime

import (
	"math"

	"github.com/cmorgan-fx/helm/signal"
)

// HedgeParams scale a candidate signal for the prevailing regime before it
// reaches the gate. SizeMult rescales notional exposure; StopMult rescales
// the stop distance from entry (take-profit is left alone, which tightens or
// loosens the effective reward/risk the gate will see).
type HedgeParams struct {
	SizeMult float64
	StopMult float64
}

type hedgeKey struct {
	regime Regime
	vol    VolBucket
}

// The hedge table. Crash zeroes size in every bucket: no new risk goes on
// during a crisis, and the gate's size floor rejects whatever remains.
var hedgeTable = map[hedgeKey]HedgeParams{
	{Bull, VolLow}:     {SizeMult: 1.2, StopMult: 1.0},
	{Bull, VolNormal}:  {SizeMult: 1.0, StopMult: 1.0},
	{Bull, VolHigh}:    {SizeMult: 0.8, StopMult: 1.3},
	{Bear, VolLow}:     {SizeMult: 1.0, StopMult: 1.0},
	{Bear, VolNormal}:  {SizeMult: 0.8, StopMult: 1.2},
	{Bear, VolHigh}:    {SizeMult: 0.6, StopMult: 1.5},
	{Sideways, VolLow}: {SizeMult: 0.8, StopMult: 0.8},
	{Crash, VolLow}:    {SizeMult: 0, StopMult: 1.0},
	{Crash, VolNormal}: {SizeMult: 0, StopMult: 1.0},
	{Crash, VolHigh}:   {SizeMult: 0, StopMult: 1.0},
}

// defaults per regime when the (regime, bucket) pair has no dedicated row.
var hedgeDefaults = map[Regime]HedgeParams{
	Bull:     {SizeMult: 1.0, StopMult: 1.0},
	Bear:     {SizeMult: 0.8, StopMult: 1.2},
	Sideways: {SizeMult: 0.7, StopMult: 0.8},
	Crash:    {SizeMult: 0, StopMult: 1.0},
	Triage:   {SizeMult: 0.5, StopMult: 1.0},
}

// Params returns the hedge parameters for a regime and volatility scalar.
func Params(r Regime, volatility float64) HedgeParams {
	if p, ok := hedgeTable[hedgeKey{r, BucketVolatility(volatility)}]; ok {
		return p
	}
	if p, ok := hedgeDefaults[r]; ok {
		return p
	}
	return hedgeDefaults[Triage]
}

// Adjust applies hedge parameters to a candidate signal and returns the
// adjusted copy. This runs strictly before the gate; approved signals are
// never rescaled.
func (p HedgeParams) Adjust(s signal.Signal) signal.Signal {
	s.NotionalValue = math.Round(s.NotionalValue * p.SizeMult)

	if s.Entry != 0 && s.SL != 0 && p.StopMult != 1.0 {
		// Keep the stop on its original side of entry, scale its distance.
		s.SL = s.Entry - (s.Entry-s.SL)*p.StopMult
	}
	return s
}
