package strategies

import (
	"github.com/cmorgan-fx/helm/market"
	"github.com/cmorgan-fx/helm/signal"
)

// Fixed thresholds for the scalar detectors. These are charter-reviewed
// numbers, not tunables; changing one means re-validating the ensemble.
const (
	momentumThreshold  = 0.002 // 0.2% move
	deviationThreshold = 0.015 // 1.5% from the 20-period mean
	volumeConfirmRatio = 1.5   // breakout needs 1.5x average volume
	trendGapRatio      = 0.005 // short MA must clear long MA by 0.5%
	rangeMaxADX        = 25.0  // no range trades in a trending market
	rangeLowerQuintile = 0.2
	rangeUpperQuintile = 0.8
)

// Momentum votes with the direction of the most recent price change.
type Momentum struct{}

func (Momentum) Name() string { return "momentum" }

func (Momentum) Vote(s *market.Snapshot) signal.Direction {
	m := s.Momentum
	if m == 0 && s.Price > 0 && s.PrevPrice > 0 {
		m = (s.Price - s.PrevPrice) / s.PrevPrice
	}
	switch {
	case m > momentumThreshold:
		return signal.Buy
	case m < -momentumThreshold:
		return signal.Sell
	}
	return signal.Hold
}

// MeanReversion fades extreme deviations from the 20-period mean.
type MeanReversion struct{}

func (MeanReversion) Name() string { return "meanrev" }

func (MeanReversion) Vote(s *market.Snapshot) signal.Direction {
	if s.Price == 0 || s.SMA20 == 0 {
		return signal.Hold
	}
	dev := (s.Price - s.SMA20) / s.SMA20
	switch {
	case dev > deviationThreshold:
		return signal.Sell
	case dev < -deviationThreshold:
		return signal.Buy
	}
	return signal.Hold
}

// Breakout trades a close beyond the 20-period extreme, but only with
// volume confirmation.
type Breakout struct{}

func (Breakout) Name() string { return "breakout" }

func (Breakout) Vote(s *market.Snapshot) signal.Direction {
	if s.High20 == 0 || s.Low20 == 0 || s.AvgVolume <= 0 {
		return signal.Hold
	}
	if s.Volume < s.AvgVolume*volumeConfirmRatio {
		return signal.Hold
	}
	switch {
	case s.Price > s.High20:
		return signal.Buy
	case s.Price < s.Low20:
		return signal.Sell
	}
	return signal.Hold
}

// TrendFollow rides moving-average alignment with price confirmation.
type TrendFollow struct{}

func (TrendFollow) Name() string { return "trendfollow" }

func (TrendFollow) Vote(s *market.Snapshot) signal.Direction {
	if s.SMA20 == 0 || s.SMA50 == 0 {
		return signal.Hold
	}
	switch {
	case s.SMA20 > s.SMA50*(1+trendGapRatio) && s.Price > s.SMA20:
		return signal.Buy
	case s.SMA20 < s.SMA50*(1-trendGapRatio) && s.Price < s.SMA20:
		return signal.Sell
	}
	return signal.Hold
}

// Range trades the outer quintiles of the support/resistance band, and only
// when ADX says there is no trend to fight.
type Range struct{}

func (Range) Name() string { return "range" }

func (Range) Vote(s *market.Snapshot) signal.Direction {
	if s.ADX == 0 || s.ADX >= rangeMaxADX {
		return signal.Hold
	}
	if s.Support <= 0 || s.Resistance <= s.Support {
		return signal.Hold
	}
	pos := (s.Price - s.Support) / (s.Resistance - s.Support)
	switch {
	case pos < rangeLowerQuintile:
		return signal.Buy
	case pos > rangeUpperQuintile:
		return signal.Sell
	}
	return signal.Hold
}
