// Package indicator derives rolling and exponential statistics from a
// normalized price series.
package indicator

import (
	"errors"

	"TrendScope/internal/model"
)

// Lookback settings of the indicator frame.
const (
	FastSMAWindow    = 10
	SlowSMAWindow    = 50
	EMASpan          = 20
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignal       = 9
	VolatilityWindow = 20
)

// Compute returns the indicator frame of s. The series is copied; the
// caller's bars are never touched.
func Compute(s *model.PriceSeries) (*model.IndicatorFrame, error) {
	if s == nil || !s.HasColumn(model.ColClose) {
		return nil, &model.ValidationError{
			Field: model.ColClose,
			Err:   errors.New("series must contain a close column after normalization"),
		}
	}

	series := s.Clone()
	closes := series.Closes()

	macd, signal := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	return &model.IndicatorFrame{
		Series:       series,
		SMA10:        SMA(closes, FastSMAWindow),
		SMA50:        SMA(closes, SlowSMAWindow),
		EMA20:        EMA(closes, EMASpan),
		RSI:          RSI(closes, RSIPeriod),
		MACD:         macd,
		MACDSignal:   signal,
		Volatility20: RollingStd(PctChange(closes), VolatilityWindow),
	}, nil
}
