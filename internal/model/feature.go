package model

import "time"

// FeatureNames is the column order expected by classifiers.
var FeatureNames = []string{"return_1", "ma_5", "ma_20", "rsi_14"}

// FeatureVector is the model input for one bar.
type FeatureVector struct {
	Return1         float64
	MA5             float64
	MA20            float64
	MomentumRatio14 float64
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Return1, f.MA5, f.MA20, f.MomentumRatio14}
}

// FeatureRow ties a FeatureVector to the bar it was computed on.
// Open and Close are the bar's execution prices.
type FeatureRow struct {
	Time     time.Time
	Open     float64
	Close    float64
	Features FeatureVector
}

// LabeledRow is a FeatureRow with its training target.
type LabeledRow struct {
	FeatureRow
	NextReturn float64
	Target     int
}
