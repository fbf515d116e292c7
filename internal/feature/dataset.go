package feature

import (
	"fmt"

	"TrendScope/internal/model"
)

// DefaultLabelThreshold is the next-bar return above which a row is a
// positive example.
const DefaultLabelThreshold = 0.005

// Label attaches the next row's close-to-close return and a binary target
// to every row but the last. Rows whose next return is undefined are dropped.
func Label(rows []model.FeatureRow, threshold float64) []model.LabeledRow {
	if len(rows) < 2 {
		return nil
	}
	out := make([]model.LabeledRow, 0, len(rows)-1)
	for i := 0; i < len(rows)-1; i++ {
		cur, next := rows[i].Close, rows[i+1].Close
		if !model.IsDefined(cur) || cur == 0 || !model.IsDefined(next) {
			continue
		}
		r := next/cur - 1
		target := 0
		if r > threshold {
			target = 1
		}
		out = append(out, model.LabeledRow{FeatureRow: rows[i], NextReturn: r, Target: target})
	}
	return out
}

// Split is one walk-forward fold: train on [0, TrainEnd), test on
// [TestStart, TestEnd).
type Split struct {
	TrainEnd  int
	TestStart int
	TestEnd   int
}

// WalkForwardSplits partitions n ordered rows into k expanding-window
// folds with equal test sizes; the earliest rows only ever train.
func WalkForwardSplits(n, k int) ([]Split, error) {
	if k < 1 {
		return nil, &model.ValidationError{Field: "folds", Err: fmt.Errorf("need at least 1 fold, got %d", k)}
	}
	if n < k+1 {
		return nil, &model.InsufficientHistoryError{Need: k + 1, Have: n}
	}
	size := n / (k + 1)
	first := n - k*size
	splits := make([]Split, k)
	for i := range splits {
		start := first + i*size
		splits[i] = Split{TrainEnd: start, TestStart: start, TestEnd: start + size}
	}
	return splits, nil
}
