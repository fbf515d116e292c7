package indicator

import (
	"math"

	"TrendScope/internal/model"
)

// ForwardFill replaces every undefined value with the most recent defined
// one. Leading undefined values stay NaN.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if model.IsDefined(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// PctChange returns the 1-step percentage change of the forward-filled
// values. A zero previous value yields NaN instead of an infinity.
func PctChange(values []float64) []float64 {
	filled := ForwardFill(values)
	out := make([]float64, len(filled))
	for i := range filled {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev := filled[i-1]
		if !model.IsDefined(prev) || prev == 0 || !model.IsDefined(filled[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = filled[i]/prev - 1
	}
	return out
}

// SMA is the trailing mean over at most `window` bars. Partial windows at
// the start are allowed: position i averages the defined values among the
// last min(i+1, window) entries and is NaN only when none is defined.
func SMA(values []float64, window int) []float64 {
	return rollingMean(values, window, 1)
}

// RollingMean is the trailing mean over exactly `window` bars; it is NaN
// until the window holds `window` defined values.
func RollingMean(values []float64, window int) []float64 {
	return rollingMean(values, window, window)
}

func rollingMean(values []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		fillNaN(out)
		return out
	}
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, n := 0.0, 0
		for _, v := range values[start : i+1] {
			if model.IsDefined(v) {
				sum += v
				n++
			}
		}
		if n < minPeriods || n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingStd is the sample standard deviation (n-1 denominator) over the
// trailing `window` values; NaN until the window holds `window` defined values.
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		fillNaN(out)
		return out
	}
	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		win := values[i-window+1 : i+1]
		sum := 0.0
		ok := true
		for _, v := range win {
			if !model.IsDefined(v) {
				ok = false
				break
			}
			sum += v
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		mean := sum / float64(window)
		ss := 0.0
		for _, v := range win {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// Mean averages the defined values; NaN when there are none.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if model.IsDefined(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func fillNaN(out []float64) {
	for i := range out {
		out[i] = math.NaN()
	}
}
