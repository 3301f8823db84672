package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Regime
	}{
		{"bull", Bull},
		{"BULL_STRONG", Bull},
		{"strongly bullish", Bull},
		{"bear", Bear},
		{"Bearish drift", Bear},
		{"crash", Crash},
		{"CRISIS_MODE", Crash},
		{"sideways", Sideways},
		{"side", Sideways},
		{"chop", Triage},
		{"", Triage},
		{"unknown regime", Triage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestBucketVolatility(t *testing.T) {
	t.Parallel()

	assert.Equal(t, VolLow, BucketVolatility(0.005))
	assert.Equal(t, VolNormal, BucketVolatility(0.010))
	assert.Equal(t, VolNormal, BucketVolatility(0.02))
	assert.Equal(t, VolHigh, BucketVolatility(0.030))
	assert.Equal(t, VolHigh, BucketVolatility(0.5))
}

func TestParams_CrashZeroesSize(t *testing.T) {
	t.Parallel()

	for _, vol := range []float64{0.001, 0.02, 0.2} {
		p := Params(Crash, vol)
		assert.Zero(t, p.SizeMult, "no new risk during a crash (vol=%v)", vol)
	}
}

func TestParams_FallsBackToRegimeDefault(t *testing.T) {
	t.Parallel()

	// Sideways has no dedicated high-vol row.
	p := Params(Sideways, 0.10)
	assert.Equal(t, hedgeDefaults[Sideways], p)

	// Unknown regimes act like triage.
	p = Params(Regime("???"), 0.02)
	assert.Equal(t, hedgeDefaults[Triage], p)
}

func TestAdjust_ScalesNotionalAndStop(t *testing.T) {
	t.Parallel()

	s := signal.Signal{
		Symbol: "EUR_USD", Direction: signal.Buy, Timeframe: "M15",
		NotionalValue: 16000, Entry: 1.1000, SL: 1.0950, TP: 1.1150,
		Confidence: 0.75, Source: "inference",
	}

	adj := HedgeParams{SizeMult: 0.5, StopMult: 2.0}.Adjust(s)
	assert.InDelta(t, 8000.0, adj.NotionalValue, 1e-9)
	assert.InDelta(t, 1.0900, adj.SL, 1e-9, "stop distance doubles, same side")
	assert.InDelta(t, 1.1150, adj.TP, 1e-9, "take-profit untouched")

	// Original signal is unchanged: signals are value objects.
	assert.InDelta(t, 16000.0, s.NotionalValue, 1e-9)
	assert.InDelta(t, 1.0950, s.SL, 1e-9)
}

func TestAdjust_SellStopStaysAboveEntry(t *testing.T) {
	t.Parallel()

	s := signal.Signal{
		Symbol: "EUR_USD", Direction: signal.Sell, Timeframe: "M15",
		NotionalValue: 16000, Entry: 1.1000, SL: 1.1050, TP: 1.0850,
		Confidence: 0.75, Source: "inference",
	}
	adj := HedgeParams{SizeMult: 1.0, StopMult: 1.5}.Adjust(s)
	assert.InDelta(t, 1.1075, adj.SL, 1e-9)
	assert.Greater(t, adj.SL, adj.Entry)
}

func TestSnapshotDetector(t *testing.T) {
	t.Parallel()

	d := NewSnapshotDetector()
	raw, vol := d.Detect()
	assert.Equal(t, Triage, Normalize(raw), "unobserved detector triages")
	assert.Zero(t, vol)

	t.Run("bull structure", func(t *testing.T) {
		d := NewSnapshotDetector()
		d.Observe(&market.Snapshot{
			Price: 1.10, SMA20: 1.08, SMA50: 1.05, ADX: 30,
			Candles: []market.Candle{{Close: 1.05}, {Close: 1.10}},
		})
		raw, _ := d.Detect()
		assert.Equal(t, Bull, Normalize(raw))
	})

	t.Run("bear structure", func(t *testing.T) {
		d := NewSnapshotDetector()
		d.Observe(&market.Snapshot{
			Price: 1.00, SMA20: 1.02, SMA50: 1.05, ADX: 30,
			Candles: []market.Candle{{Close: 1.05}, {Close: 1.00}},
		})
		raw, _ := d.Detect()
		assert.Equal(t, Bear, Normalize(raw))
	})

	t.Run("deep drop is a crash whatever the averages say", func(t *testing.T) {
		d := NewSnapshotDetector()
		d.Observe(&market.Snapshot{
			Price: 0.90, SMA20: 1.02, SMA50: 1.00, ADX: 40,
			Candles: []market.Candle{{Close: 1.00}, {Close: 0.90}},
		})
		raw, _ := d.Detect()
		assert.Equal(t, Crash, Normalize(raw))
	})

	t.Run("weak adx reads sideways", func(t *testing.T) {
		d := NewSnapshotDetector()
		d.Observe(&market.Snapshot{
			Price: 1.05, SMA20: 1.06, SMA50: 1.05, ADX: 15,
			Candles: []market.Candle{{Close: 1.05}, {Close: 1.05}},
		})
		raw, _ := d.Detect()
		assert.Equal(t, Sideways, Normalize(raw))
	})

	t.Run("volatility reflects dispersion", func(t *testing.T) {
		d := NewSnapshotDetector()
		d.Observe(&market.Snapshot{
			Price: 1.00, SMA20: 1.0, SMA50: 1.0, ADX: 30,
			Candles: []market.Candle{
				{Close: 1.00}, {Close: 1.05}, {Close: 0.98}, {Close: 1.04},
			},
		})
		_, vol := d.Detect()
		require.Greater(t, vol, 0.0)
		assert.Equal(t, VolHigh, BucketVolatility(vol))
	})
}
