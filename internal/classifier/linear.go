package classifier

import (
	"fmt"
	"math"
	"time"

	"TrendScope/internal/model"
)

// DefaultDecisionThreshold splits ProbabilityOfPositive into classes.
const DefaultDecisionThreshold = 0.5

// LinearModel is a logistic model exported by the offline training job.
// Coefficients follow Features order, which must equal model.FeatureNames.
type LinearModel struct {
	Symbol       string    `json:"symbol"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Threshold    float64   `json:"threshold,omitempty"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Validate checks that the model matches the feature layout.
func (m *LinearModel) Validate() error {
	if len(m.Features) != len(model.FeatureNames) {
		return &model.ValidationError{Field: "features", Err: fmt.Errorf("want %d features, got %d", len(model.FeatureNames), len(m.Features))}
	}
	for i, name := range model.FeatureNames {
		if m.Features[i] != name {
			return &model.ValidationError{Field: "features", Err: fmt.Errorf("position %d: want %q, got %q", i, name, m.Features[i])}
		}
	}
	if len(m.Coefficients) != len(m.Features) {
		return &model.ValidationError{Field: "coefficients", Err: fmt.Errorf("want %d, got %d", len(m.Features), len(m.Coefficients))}
	}
	for _, c := range append([]float64{m.Intercept}, m.Coefficients...) {
		if !model.IsDefined(c) {
			return &model.ValidationError{Field: "coefficients", Err: fmt.Errorf("non-finite value %v", c)}
		}
	}
	if m.Threshold < 0 || m.Threshold >= 1 {
		return &model.ValidationError{Field: "threshold", Err: fmt.Errorf("%v outside [0, 1)", m.Threshold)}
	}
	return nil
}

// ProbabilityOfPositive returns sigmoid(intercept + coefficients·features).
func (m *LinearModel) ProbabilityOfPositive(fv model.FeatureVector) (float64, error) {
	values := fv.Values()
	if len(values) != len(m.Coefficients) {
		return 0, &model.ValidationError{Field: "coefficients", Err: fmt.Errorf("want %d, got %d", len(values), len(m.Coefficients))}
	}
	z := m.Intercept
	for i, v := range values {
		if !model.IsDefined(v) {
			return 0, &model.ValidationError{Field: model.FeatureNames[i], Err: fmt.Errorf("undefined value")}
		}
		z += m.Coefficients[i] * v
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Predict returns 1 when the probability reaches the decision threshold.
func (m *LinearModel) Predict(fv model.FeatureVector) (int, error) {
	p, err := m.ProbabilityOfPositive(fv)
	if err != nil {
		return 0, err
	}
	threshold := m.Threshold
	if threshold == 0 {
		threshold = DefaultDecisionThreshold
	}
	if p >= threshold {
		return 1, nil
	}
	return 0, nil
}
