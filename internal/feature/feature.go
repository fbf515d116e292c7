// Package feature derives the classifier input rows from a price series.
// The same Build call feeds training export, backtesting and live serving.
package feature

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/indicator"
	"TrendScope/internal/model"
)

// Window sizes of the feature columns.
const (
	ShortMAWindow  = 5
	LongMAWindow   = 20
	MomentumWindow = 14
)

// MinBars is the shortest series that yields at least one row.
const MinBars = LongMAWindow

// Build computes {return_1, ma_5, ma_20, momentum_ratio_14} per bar and
// drops every bar where one of them is undefined.
func Build(s *model.PriceSeries) ([]model.FeatureRow, error) {
	if s == nil || !s.HasColumn(model.ColClose) {
		return nil, &model.ValidationError{Field: model.ColClose, Err: errors.New("series has no close column")}
	}

	closes := s.Closes()
	ret := indicator.PctChange(closes)
	ma5 := indicator.RollingMean(closes, ShortMAWindow)
	ma20 := indicator.RollingMean(closes, LongMAWindow)
	mom := MomentumRatio(closes, MomentumWindow)

	rows := make([]model.FeatureRow, 0, len(closes))
	for i, bar := range s.Bars {
		fv := model.FeatureVector{Return1: ret[i], MA5: ma5[i], MA20: ma20[i], MomentumRatio14: mom[i]}
		if !defined(fv) {
			continue
		}
		rows = append(rows, model.FeatureRow{Time: bar.Time, Open: bar.Open, Close: bar.Close, Features: fv})
	}
	log.Debug().Str("symbol", s.Symbol).Int("bars", len(s.Bars)).Int("rows", len(rows)).Msg("features built")
	return rows, nil
}

// MomentumRatio counts the rising steps inside each trailing window of
// `window` values and divides by the window length. A window of 14 closes
// holds 13 steps, so the ratio never reaches 1. Windows with an undefined
// value are NaN.
func MomentumRatio(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		win := values[i-window+1 : i+1]
		up, ok := 0, true
		for j, v := range win {
			if !model.IsDefined(v) {
				ok = false
				break
			}
			if j > 0 && v > win[j-1] {
				up++
			}
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(up) / float64(window)
	}
	return out
}

func defined(fv model.FeatureVector) bool {
	for _, v := range fv.Values() {
		if !model.IsDefined(v) {
			return false
		}
	}
	return true
}
