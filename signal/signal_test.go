package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Signal {
	return Signal{
		Symbol:        "EUR_USD",
		Direction:     Buy,
		Timeframe:     "M15",
		NotionalValue: 16000,
		Entry:         1.1000,
		SL:            1.0950,
		TP:            1.1150,
		Confidence:    0.75,
		Source:        "inference",
	}
}

func TestSignal_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Signal)
		ok     bool
	}{
		{"valid", func(s *Signal) {}, true},
		{"missing symbol", func(s *Signal) { s.Symbol = "" }, false},
		{"hold not tradable", func(s *Signal) { s.Direction = Hold }, false},
		{"bogus direction", func(s *Signal) { s.Direction = "LONG" }, false},
		{"missing timeframe", func(s *Signal) { s.Timeframe = "" }, false},
		{"zero notional", func(s *Signal) { s.NotionalValue = 0 }, false},
		{"confidence above one", func(s *Signal) { s.Confidence = 1.2 }, false},
		{"missing source", func(s *Signal) { s.Source = "" }, false},
		{"no levels is still well-formed", func(s *Signal) { s.Entry, s.SL, s.TP = 0, 0, 0 }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSignal_RR(t *testing.T) {
	t.Parallel()

	s := valid()
	rr, ok := s.RR()
	require.True(t, ok)
	assert.InDelta(t, 3.0, rr, 1e-9)

	s.TP = 1.1100
	rr, ok = s.RR()
	require.True(t, ok)
	assert.InDelta(t, 2.0, rr, 1e-9)

	// Zero risk is not computable, never +Inf.
	s.SL = s.Entry
	_, ok = s.RR()
	assert.False(t, ok)

	s = valid()
	s.TP = 0
	_, ok = s.RR()
	assert.False(t, ok)
}

func TestSignal_Packet(t *testing.T) {
	t.Parallel()

	p := valid().Packet()
	assert.Equal(t, "EUR_USD", p.Symbol)
	assert.Equal(t, Buy, p.Direction)
	assert.InDelta(t, 16000.0, p.NotionalValue, 1e-9)
	assert.InDelta(t, 1.0950, p.SL, 1e-9)
	assert.InDelta(t, 1.1150, p.TP, 1e-9)
	assert.NoError(t, p.Validate())
}

func TestSignal_JSONSchema(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(valid())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"symbol", "direction", "timeframe", "notional_value", "entry", "sl", "tp", "confidence", "source"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "note", "empty note must be omitted")
}

func TestDirection_Opposite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
	assert.Equal(t, Hold, Hold.Opposite())
	assert.True(t, Buy.Tradable())
	assert.False(t, Hold.Tradable())
}
