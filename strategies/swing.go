package strategies

import (
	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

// Retracement levels measured from the impulse extreme. 0.618-0.65 is the
// classic golden pocket; 0.5 bounds the shallow side of the entry band.
const (
	fibHalf   = 0.5
	fibGolden = 0.618
	fibDeep   = 0.65
)

// SwingRetrace looks for an impulse swing inside the lookback window and
// votes when price has pulled back into the retracement band.
type SwingRetrace struct {
	Lookback int
}

func NewSwingRetrace(lookback int) SwingRetrace {
	return SwingRetrace{Lookback: lookback}
}

func (SwingRetrace) Name() string { return "swing" }

func (d SwingRetrace) Vote(s *market.Snapshot) signal.Direction {
	bars, ok := s.LastCandles(d.Lookback)
	if !ok {
		return signal.Hold
	}

	idxHigh, idxLow := 0, 0
	for i, b := range bars {
		if b.High > bars[idxHigh].High {
			idxHigh = i
		}
		if b.Low < bars[idxLow].Low {
			idxLow = i
		}
	}
	if idxHigh == idxLow {
		return signal.Hold
	}

	high := bars[idxHigh].High
	low := bars[idxLow].Low
	span := high - low
	price := s.Price

	if idxHigh > idxLow {
		// Up-impulse: low first, high later. Entry band is the pullback
		// from the high, inclusive at both edges.
		upper := high - span*fibHalf
		lower := high - span*fibDeep
		if price >= lower && price <= upper {
			return signal.Buy
		}
		return signal.Hold
	}

	// Down-impulse: mirrored band measured up from the low.
	lower := low + span*fibHalf
	upper := low + span*fibDeep
	if price >= lower && price <= upper {
		return signal.Sell
	}
	return signal.Hold
}
