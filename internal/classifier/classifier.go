// Package classifier defines the trained-model capability consumed by the
// backtest and live-signal paths, plus a file-backed logistic model.
package classifier

import (
	"sync"

	"TrendScope/internal/model"
)

// Classifier scores one feature vector. Predict returns the class (0 or 1).
type Classifier interface {
	Predict(fv model.FeatureVector) (int, error)
	ProbabilityOfPositive(fv model.FeatureVector) (float64, error)
}

// Serialize wraps c so that at most one call runs at a time.
func Serialize(c Classifier) Classifier {
	if _, ok := c.(*serialized); ok {
		return c
	}
	return &serialized{inner: c}
}

type serialized struct {
	mu    sync.Mutex
	inner Classifier
}

func (s *serialized) Predict(fv model.FeatureVector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Predict(fv)
}

func (s *serialized) ProbabilityOfPositive(fv model.FeatureVector) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ProbabilityOfPositive(fv)
}
