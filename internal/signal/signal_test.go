package signal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

type fixed struct {
	class int
	p     float64
	err   error
}

func (f fixed) Predict(model.FeatureVector) (int, error)                   { return f.class, f.err }
func (f fixed) ProbabilityOfPositive(model.FeatureVector) (float64, error) { return f.p, f.err }

func series(n int) *model.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 50 + float64(i)
		bars[i] = model.PriceBar{Time: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return model.NewSeries("AAPL", bars)
}

func TestPredict(t *testing.T) {
	tests := []struct {
		name       string
		clf        fixed
		action     model.Action
		confidence float64
	}{
		{"buy", fixed{class: 1, p: 0.73456}, model.ActionBuy, 0.735},
		{"sell", fixed{class: 0, p: 0.2}, model.ActionSell, 0.8},
		{"coin flip", fixed{class: 0, p: 0.5}, model.ActionSell, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Predict(series(60), tt.clf)
			require.NoError(t, err)
			assert.True(t, sig.Available)
			assert.Equal(t, tt.action, sig.Action)
			assert.Equal(t, tt.confidence, sig.Confidence)
			assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), sig.Time)
			assert.Equal(t, "AAPL", sig.Symbol)
		})
	}
}

func TestPredict_Unavailable(t *testing.T) {
	sig, err := Predict(series(60), nil)
	require.NoError(t, err)
	assert.False(t, sig.Available)
	assert.Contains(t, sig.Reason, "model unavailable")

	sig, err = Predict(series(60), fixed{err: errors.New("broken weights")})
	require.NoError(t, err)
	assert.False(t, sig.Available)
	assert.Contains(t, sig.Reason, "broken weights")
}

func TestPredict_InsufficientHistory(t *testing.T) {
	_, err := Predict(series(10), fixed{class: 1, p: 0.9})
	var herr *model.InsufficientHistoryError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, 10, herr.Have)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.9, Confidence(0.1))
	assert.Equal(t, 0.667, Confidence(2.0/3))
	assert.Equal(t, 1.0, Confidence(0.99999))
}
