package market

// Snapshot is one frozen view of a symbol's market state: an ordered candle
// window (oldest first) plus the scalar indicators the detectors vote on.
//
// A Snapshot is owned by whoever built it and is read-only to every consumer.
// Detectors must never mutate it or keep a reference past the call.
type Snapshot struct {
	Symbol  string
	Candles []Candle

	Price     float64
	PrevPrice float64

	// Momentum is the fractional price change over the last period. Zero
	// means "not provided"; consumers may derive it from Price/PrevPrice.
	Momentum float64

	SMA20 float64
	SMA50 float64

	High20 float64
	Low20  float64

	Support    float64
	Resistance float64

	Volume    float64
	AvgVolume float64

	// ADX is Wilder's trend-strength reading; below ~25 means no real trend.
	ADX float64
}

// LastCandles returns the trailing n candles, oldest first, and whether the
// window actually holds n of them.
func (s *Snapshot) LastCandles(n int) ([]Candle, bool) {
	if n <= 0 || len(s.Candles) < n {
		return nil, false
	}
	return s.Candles[len(s.Candles)-n:], true
}
