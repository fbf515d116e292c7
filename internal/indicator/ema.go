package indicator

import (
	"math"

	"TrendScope/internal/model"
)

// EWM is an exponentially weighted mean without bias adjustment: the first
// defined value seeds the average and each later value v updates it as
// (1-alpha)*prev + alpha*v. An undefined value keeps the previous average
// but decays its weight, so the next defined value counts for more.
// Output is NaN until minPeriods defined values have been seen.
func EWM(values []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(values))
	if minPeriods < 1 {
		minPeriods = 1
	}
	if len(values) == 0 {
		return out
	}

	weighted := values[0]
	nobs := 0
	if model.IsDefined(weighted) {
		nobs = 1
	} else {
		weighted = math.NaN()
	}
	out[0] = emit(weighted, nobs, minPeriods)

	oldWt := 1.0
	for i := 1; i < len(values); i++ {
		cur := values[i]
		isObs := model.IsDefined(cur)
		if isObs {
			nobs++
		}
		switch {
		case !math.IsNaN(weighted):
			oldWt *= 1 - alpha
			if isObs {
				if weighted != cur {
					weighted = (oldWt*weighted + alpha*cur) / (oldWt + alpha)
				}
				oldWt = 1
			}
		case isObs:
			weighted = cur
		}
		out[i] = emit(weighted, nobs, minPeriods)
	}
	return out
}

func emit(v float64, nobs, minPeriods int) float64 {
	if nobs < minPeriods {
		return math.NaN()
	}
	return v
}

// EMA is the span-based exponential moving average (alpha = 2/(span+1)),
// defined from the first defined value.
func EMA(values []float64, span int) []float64 {
	return EWM(values, 2.0/float64(span+1), 0)
}

// EMAStrict is EMA but undefined until `span` values have been observed.
func EMAStrict(values []float64, span int) []float64 {
	return EWM(values, 2.0/float64(span+1), span)
}
