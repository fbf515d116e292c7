// Package signal serves the classifier's recommendation for the latest bar.
package signal

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"TrendScope/internal/classifier"
	"TrendScope/internal/feature"
	"TrendScope/internal/model"
)

// ConfidencePlaces is the rounding applied to the reported confidence.
const ConfidencePlaces = 3

// Predict scores the last feature row of s. A nil or failing classifier
// yields an unavailable signal rather than an error; too short a history
// yields *model.InsufficientHistoryError.
func Predict(s *model.PriceSeries, clf classifier.Classifier) (*model.LiveSignal, error) {
	rows, err := feature.Build(s)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &model.InsufficientHistoryError{Need: feature.MinBars, Have: s.Len()}
	}
	last := rows[len(rows)-1]

	if clf == nil {
		return Unavailable(s.Symbol, &model.ModelUnavailableError{Symbol: s.Symbol}), nil
	}
	cls, err := clf.Predict(last.Features)
	if err != nil {
		return Unavailable(s.Symbol, fmt.Errorf("predict: %w", err)), nil
	}
	p, err := clf.ProbabilityOfPositive(last.Features)
	if err != nil {
		return Unavailable(s.Symbol, fmt.Errorf("predict probability: %w", err)), nil
	}

	action := model.ActionSell
	if cls == 1 {
		action = model.ActionBuy
	}
	return &model.LiveSignal{
		Symbol:      s.Symbol,
		Time:        last.Time,
		Action:      action,
		Confidence:  Confidence(p),
		Probability: p,
		Available:   true,
	}, nil
}

// Unavailable builds the signal reported when no prediction can be made.
func Unavailable(symbol string, cause error) *model.LiveSignal {
	reason := "model unavailable"
	if cause != nil {
		reason = cause.Error()
	}
	return &model.LiveSignal{Symbol: symbol, Available: false, Reason: reason}
}

// Confidence returns max(p, 1-p) rounded to ConfidencePlaces decimals.
func Confidence(p float64) float64 {
	c, _ := decimal.NewFromFloat(math.Max(p, 1-p)).Round(ConfidencePlaces).Float64()
	return c
}
