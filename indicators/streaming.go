package indicators

import (
	"fmt"

	"github.com/cmorgan-fx/helm/market"
)

// Streaming indicators share one shape: feed candles through Update, check
// Ready once the warmup window is full, read Value.

// SimpleMA is a streaming Simple Moving Average over candle closes.
type SimpleMA struct {
	period  int
	window  []float64
	rolling float64
}

// NewMA creates a Simple Moving Average indicator with the given period.
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
	m.rolling = 0
}

func (m *SimpleMA) Update(c market.Candle) {
	m.push(c.Close)
}

// UpdateValue feeds a raw value instead of a candle close (e.g. volume).
func (m *SimpleMA) UpdateValue(v float64) {
	m.push(v)
}

func (m *SimpleMA) push(v float64) {
	m.window = append(m.window, v)
	m.rolling += v
	if len(m.window) > m.period {
		m.rolling -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.rolling / float64(len(m.window))
}

// RollingExtreme tracks the highest high and lowest low over a fixed window.
type RollingExtreme struct {
	period int
	highs  []float64
	lows   []float64
}

// NewRollingExtreme creates a high/low window tracker with the given period.
func NewRollingExtreme(period int) *RollingExtreme {
	return &RollingExtreme{
		period: period,
		highs:  make([]float64, 0, period),
		lows:   make([]float64, 0, period),
	}
}

func (r *RollingExtreme) Name() string {
	return fmt.Sprintf("HiLo(%d)", r.period)
}

func (r *RollingExtreme) Warmup() int {
	return r.period
}

func (r *RollingExtreme) Reset() {
	r.highs = r.highs[:0]
	r.lows = r.lows[:0]
}

func (r *RollingExtreme) Update(c market.Candle) {
	r.highs = append(r.highs, c.High)
	r.lows = append(r.lows, c.Low)
	if len(r.highs) > r.period {
		r.highs = r.highs[1:]
		r.lows = r.lows[1:]
	}
}

func (r *RollingExtreme) Ready() bool {
	return len(r.highs) >= r.period
}

// High returns the highest high in the window.
func (r *RollingExtreme) High() float64 {
	if len(r.highs) == 0 {
		return 0
	}
	m := r.highs[0]
	for _, v := range r.highs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Low returns the lowest low in the window.
func (r *RollingExtreme) Low() float64 {
	if len(r.lows) == 0 {
		return 0
	}
	m := r.lows[0]
	for _, v := range r.lows[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
