package indicators

import "github.com/cmorgan-fx/helm/market"

// SnapshotBuilder folds a candle stream into market.Snapshot values, deriving
// the scalar indicators the strategy ensemble votes on. One builder per
// symbol; feed candles in chronological order.
type SnapshotBuilder struct {
	symbol string

	sma20 *SimpleMA
	sma50 *SimpleMA
	hilo  *RollingExtreme // 20-bar breakout window
	band  *RollingExtreme // wider support/resistance band
	vol   *SimpleMA
	adx   *ADX

	candles   []market.Candle
	maxWindow int
	prevClose float64
}

// NewSnapshotBuilder creates a builder for one symbol. window bounds how many
// candles each Snapshot carries for the pattern detectors.
func NewSnapshotBuilder(symbol string, window int) *SnapshotBuilder {
	if window < 50 {
		window = 50
	}
	return &SnapshotBuilder{
		symbol:    symbol,
		sma20:     NewMA(20),
		sma50:     NewMA(50),
		hilo:      NewRollingExtreme(20),
		band:      NewRollingExtreme(50),
		vol:       NewMA(20),
		adx:       NewADX(14),
		maxWindow: window,
	}
}

// Update consumes the next candle and returns the snapshot as of that candle.
// Indicators that have not warmed up yet read as zero; the detectors treat
// zero as "missing" and hold.
func (b *SnapshotBuilder) Update(c market.Candle) market.Snapshot {
	prev := b.prevClose
	if prev == 0 {
		prev = c.Close
	}

	b.sma20.Update(c)
	b.sma50.Update(c)
	b.hilo.Update(c)
	b.band.Update(c)
	b.vol.UpdateValue(c.Volume)
	b.adx.Update(c)

	b.candles = append(b.candles, c)
	if len(b.candles) > b.maxWindow {
		b.candles = b.candles[1:]
	}

	snap := market.Snapshot{
		Symbol:    b.symbol,
		Candles:   append([]market.Candle(nil), b.candles...),
		Price:     c.Close,
		PrevPrice: prev,
		Volume:    c.Volume,
	}
	if b.sma20.Ready() {
		snap.SMA20 = b.sma20.Value()
	}
	if b.sma50.Ready() {
		snap.SMA50 = b.sma50.Value()
	}
	if b.hilo.Ready() {
		snap.High20 = b.hilo.High()
		snap.Low20 = b.hilo.Low()
	}
	if b.band.Ready() {
		snap.Support = b.band.Low()
		snap.Resistance = b.band.High()
	}
	if b.vol.Ready() {
		snap.AvgVolume = b.vol.Value()
	}
	if b.adx.Ready() {
		snap.ADX = b.adx.Value()
	}

	b.prevClose = c.Close
	return snap
}
