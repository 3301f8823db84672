package strategies

import (
	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

// GapFill hunts for unfilled price gaps (three-bar imbalances) in the recent
// window and votes when price is currently trading inside one. The scan runs
// backwards so the nearest gap wins.
type GapFill struct {
	Lookback int
}

func NewGapFill(lookback int) GapFill {
	return GapFill{Lookback: lookback}
}

func (GapFill) Name() string { return "gapfill" }

func (d GapFill) Vote(s *market.Snapshot) signal.Direction {
	bars := s.Candles
	if n := d.Lookback; n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	if len(bars) < 3 {
		return signal.Hold
	}

	price := s.Price
	for i := len(bars) - 1; i >= 2; i-- {
		first := bars[i-2]
		third := bars[i]

		// Bullish gap: the move up left untraded space between the first
		// bar's high and the third bar's low.
		if third.Low > first.High {
			if price >= first.High && price <= third.Low {
				return signal.Buy
			}
			continue
		}

		// Bearish gap, mirrored.
		if third.High < first.Low {
			if price >= third.High && price <= first.Low {
				return signal.Sell
			}
		}
	}
	return signal.Hold
}
