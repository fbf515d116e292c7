package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI_Bounds(t *testing.T) {
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
		46.21, 46.25, 45.71, 46.45, 45.78, 45.35, 44.03, 44.18, 44.22, 44.57,
	}
	rsi := RSI(closes, 14)
	for i, v := range rsi {
		if i < 13 {
			assert.True(t, math.IsNaN(v), "index %d", i)
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSI_AllLossesIsZero(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	rsi := RSI(closes, 14)
	assert.Equal(t, 0.0, rsi[19])
}

func TestRSI_EmptyAndSinglePoint(t *testing.T) {
	assert.Empty(t, RSI(nil, 14))
	single := RSI([]float64{42}, 14)
	assert.True(t, math.IsNaN(single[0]))

	nan := math.NaN()
	allMissing := RSI([]float64{nan, nan, nan}, 2)
	for _, v := range allMissing {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRSI_ReindexesAroundGaps(t *testing.T) {
	nan := math.NaN()
	rsi := RSI([]float64{1, 2, nan, 3, 4}, 2)
	assert.True(t, math.IsNaN(rsi[0]))
	assert.Equal(t, 100.0, rsi[1])
	assert.True(t, math.IsNaN(rsi[2]), "undefined close carries no RSI")
	assert.Equal(t, 100.0, rsi[3])
	assert.Equal(t, 100.0, rsi[4])
}
