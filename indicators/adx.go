package indicators

import (
	"math"

	"github.com/cmorgan-fx/helm/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
// Usage:
//
//	adx := indicators.NewADX(14)
//	adx.Update(candle)
//	if adx.Ready() && adx.Value() < 25 { ... }
type ADX struct {
	Period int

	prev     market.Candle
	havePrev bool

	// Wilder-smoothed values after warmup.
	tr14  float64
	pdm14 float64
	mdm14 float64

	adx   float64
	dxSum float64

	// count of candles processed (including the first prev seed)
	count int
	ready bool
}

func NewADX(period int) *ADX {
	return &ADX{Period: period}
}

func (a *ADX) Name() string {
	return "ADX"
}

func (a *ADX) Warmup() int {
	// Period candles to seed smoothed TR/+DM/-DM, then Period DX values for
	// the first ADX, plus the initial prev seed.
	return 2*a.Period + 1
}

func (a *ADX) Value() float64 {
	return a.adx
}

func (a *ADX) Ready() bool {
	return a.ready
}

func (a *ADX) Reset() {
	*a = ADX{Period: a.Period}
}

// Update consumes the next candle.
func (a *ADX) Update(c market.Candle) {
	if !a.havePrev {
		a.prev = c
		a.havePrev = true
		a.count = 1
		return
	}

	upMove := c.High - a.prev.High
	downMove := a.prev.Low - c.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	tr := math.Max(c.High-c.Low,
		math.Max(math.Abs(c.High-a.prev.Close), math.Abs(c.Low-a.prev.Close)))

	a.prev = c
	a.count++
	n := a.count - 1 // candles with a TR reading

	switch {
	case n <= a.Period:
		// Accumulate raw sums for the initial smoothed values.
		a.tr14 += tr
		a.pdm14 += pdm
		a.mdm14 += mdm
		if n < a.Period {
			return
		}
	default:
		p := float64(a.Period)
		a.tr14 = a.tr14 - a.tr14/p + tr
		a.pdm14 = a.pdm14 - a.pdm14/p + pdm
		a.mdm14 = a.mdm14 - a.mdm14/p + mdm
	}

	if a.tr14 == 0 {
		return
	}
	pdi := 100 * a.pdm14 / a.tr14
	mdi := 100 * a.mdm14 / a.tr14
	if pdi+mdi == 0 {
		return
	}
	dx := 100 * math.Abs(pdi-mdi) / (pdi + mdi)

	dxCount := n - a.Period + 1
	switch {
	case dxCount < a.Period:
		a.dxSum += dx
	case dxCount == a.Period:
		a.dxSum += dx
		a.adx = a.dxSum / float64(a.Period)
		a.ready = true
	default:
		a.adx = (a.adx*float64(a.Period-1) + dx) / float64(a.Period)
	}
}
