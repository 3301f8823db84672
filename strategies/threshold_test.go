package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

func TestMomentum_Vote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap market.Snapshot
		want signal.Direction
	}{
		{"explicit momentum up", market.Snapshot{Momentum: 0.003}, signal.Buy},
		{"explicit momentum down", market.Snapshot{Momentum: -0.003}, signal.Sell},
		{"below threshold", market.Snapshot{Momentum: 0.001}, signal.Hold},
		{"exactly threshold holds", market.Snapshot{Momentum: momentumThreshold}, signal.Hold},
		{"derived from prices up", market.Snapshot{Price: 1.003, PrevPrice: 1.000}, signal.Buy},
		{"derived from prices down", market.Snapshot{Price: 0.997, PrevPrice: 1.000}, signal.Sell},
		{"no data", market.Snapshot{}, signal.Hold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Momentum{}.Vote(&tt.snap))
		})
	}
}

func TestMomentum_Deterministic(t *testing.T) {
	t.Parallel()

	snap := market.Snapshot{Price: 1.005, PrevPrice: 1.000}
	first := Momentum{}.Vote(&snap)
	second := Momentum{}.Vote(&snap)
	assert.Equal(t, first, second)
}

func TestMeanReversion_Vote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap market.Snapshot
		want signal.Direction
	}{
		{"stretched above fades", market.Snapshot{Price: 1.020, SMA20: 1.000}, signal.Sell},
		{"stretched below fades", market.Snapshot{Price: 0.980, SMA20: 1.000}, signal.Buy},
		{"near mean", market.Snapshot{Price: 1.005, SMA20: 1.000}, signal.Hold},
		{"missing mean", market.Snapshot{Price: 1.020}, signal.Hold},
		{"missing price", market.Snapshot{SMA20: 1.000}, signal.Hold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MeanReversion{}.Vote(&tt.snap))
		})
	}
}

func TestBreakout_Vote(t *testing.T) {
	t.Parallel()

	base := market.Snapshot{High20: 1.1000, Low20: 1.0800, AvgVolume: 1000}

	tests := []struct {
		name   string
		price  float64
		volume float64
		want   signal.Direction
	}{
		{"breakout up with volume", 1.1010, 1600, signal.Buy},
		{"breakout up exactly 1.5x volume", 1.1010, 1500, signal.Buy},
		{"breakout up thin volume", 1.1010, 1400, signal.Hold},
		{"breakdown with volume", 1.0790, 1600, signal.Sell},
		{"inside the range", 1.0900, 2000, signal.Hold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap := base
			snap.Price = tt.price
			snap.Volume = tt.volume
			assert.Equal(t, tt.want, Breakout{}.Vote(&snap))
		})
	}

	t.Run("missing window holds", func(t *testing.T) {
		t.Parallel()
		snap := market.Snapshot{Price: 1.2, Volume: 9999, AvgVolume: 1000}
		assert.Equal(t, signal.Hold, Breakout{}.Vote(&snap))
	})
}

func TestTrendFollow_Vote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap market.Snapshot
		want signal.Direction
	}{
		{"uptrend confirmed", market.Snapshot{Price: 1.060, SMA20: 1.050, SMA50: 1.040}, signal.Buy},
		{"uptrend without price confirm", market.Snapshot{Price: 1.045, SMA20: 1.050, SMA50: 1.040}, signal.Hold},
		{"downtrend confirmed", market.Snapshot{Price: 1.020, SMA20: 1.030, SMA50: 1.040}, signal.Sell},
		{"averages too close", market.Snapshot{Price: 1.060, SMA20: 1.0401, SMA50: 1.040}, signal.Hold},
		{"missing averages", market.Snapshot{Price: 1.060}, signal.Hold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TrendFollow{}.Vote(&tt.snap))
		})
	}
}

func TestRange_Vote(t *testing.T) {
	t.Parallel()

	base := market.Snapshot{Support: 1.0000, Resistance: 1.1000, ADX: 18}

	tests := []struct {
		name   string
		mutate func(*market.Snapshot)
		want   signal.Direction
	}{
		{"near support buys", func(s *market.Snapshot) { s.Price = 1.0100 }, signal.Buy},
		{"near resistance sells", func(s *market.Snapshot) { s.Price = 1.0950 }, signal.Sell},
		{"mid-band holds", func(s *market.Snapshot) { s.Price = 1.0500 }, signal.Hold},
		{"trending market disables range trades", func(s *market.Snapshot) { s.Price = 1.0100; s.ADX = 30 }, signal.Hold},
		{"adx at the cutoff disables", func(s *market.Snapshot) { s.Price = 1.0100; s.ADX = 25 }, signal.Hold},
		{"missing adx holds", func(s *market.Snapshot) { s.Price = 1.0100; s.ADX = 0 }, signal.Hold},
		{"inverted band holds", func(s *market.Snapshot) { s.Price = 1.0100; s.Resistance = 0.9 }, signal.Hold},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap := base
			tt.mutate(&snap)
			assert.Equal(t, tt.want, Range{}.Vote(&snap))
		})
	}
}
