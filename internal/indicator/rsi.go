package indicator

import (
	"math"

	"TrendScope/internal/model"
)

// RSI computes the Wilder-smoothed Relative Strength Index over the
// defined values only and maps the result back onto the input positions.
// Undefined inputs, and positions before `period` defined values exist,
// are NaN. A window with no losses reads 100.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	fillNaN(out)
	if period <= 0 {
		return out
	}

	pos := make([]int, 0, len(values))
	closes := make([]float64, 0, len(values))
	for i, v := range values {
		if model.IsDefined(v) {
			pos = append(pos, i)
			closes = append(closes, v)
		}
	}
	if len(closes) == 0 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	alpha := 1.0 / float64(period)
	avgGain := EWM(gains, alpha, period)
	avgLoss := EWM(losses, alpha, period)
	for i := range closes {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			out[pos[i]] = 100
			continue
		}
		rs := g / l
		out[pos[i]] = 100 - 100/(1+rs)
	}
	return out
}
