package insight

import (
	"fmt"

	"TrendScope/internal/indicator"
	"TrendScope/internal/model"
)

// Thresholds of the insight rules.
const (
	OverboughtRSI    = 70.0
	OversoldRSI      = 30.0
	VolSpikeMultiple = 1.8
)

// trendBias compares the latest close against the 50-bar SMA.
// A close equal to the SMA counts as bearish.
func trendBias(f *model.IndicatorFrame, last int) (Insight, bool) {
	c, sma := f.Series.Bars[last].Close, f.SMA50[last]
	if !model.IsDefined(c) || !model.IsDefined(sma) {
		return Insight{}, false
	}
	if c > sma {
		return Insight{Rule: RuleTrend, Tone: Bullish, Text: "📈 Price above 50-day SMA (bullish bias)"}, true
	}
	return Insight{Rule: RuleTrend, Tone: Bearish, Text: "📉 Price at or below 50-day SMA (bearish bias)"}, true
}

// crossover detects the 10-bar SMA crossing the 50-bar SMA on the latest bar.
func crossover(f *model.IndicatorFrame, last int) (Insight, bool) {
	prev := last - 1
	fastNow, slowNow := f.SMA10[last], f.SMA50[last]
	fastPrev, slowPrev := f.SMA10[prev], f.SMA50[prev]
	for _, v := range []float64{fastNow, slowNow, fastPrev, slowPrev} {
		if !model.IsDefined(v) {
			return Insight{}, false
		}
	}

	switch {
	case fastNow > slowNow && fastPrev <= slowPrev:
		return Insight{Rule: RuleCrossover, Tone: Bullish,
			Text: "✨ Bullish crossover: 10-day SMA crossed above 50-day SMA"}, true
	case fastNow < slowNow && fastPrev >= slowPrev:
		return Insight{Rule: RuleCrossover, Tone: Bearish,
			Text: "⚠️ Bearish crossover: 10-day SMA crossed below 50-day SMA"}, true
	}
	return Insight{}, false
}

// rsiRegime always reports: a regime label, the raw value, or n/a.
func rsiRegime(f *model.IndicatorFrame, last int) Insight {
	rsi := f.RSI[last]
	switch {
	case !model.IsDefined(rsi):
		return Insight{Rule: RuleRSI, Tone: Neutral, Text: "RSI: n/a"}
	case rsi > OverboughtRSI:
		return Insight{Rule: RuleRSI, Tone: Bearish, Text: "🔴 RSI > 70 (overbought)"}
	case rsi < OversoldRSI:
		return Insight{Rule: RuleRSI, Tone: Bullish, Text: "🟢 RSI < 30 (oversold)"}
	}
	return Insight{Rule: RuleRSI, Tone: Neutral, Text: fmt.Sprintf("RSI: %.1f", rsi)}
}

// volatilitySpike fires when the latest volatility is above 1.8x the
// mean volatility of the frame.
func volatilitySpike(f *model.IndicatorFrame, last int) (Insight, bool) {
	vol := f.Volatility20[last]
	mean := indicator.Mean(f.Volatility20)
	if !model.IsDefined(vol) || !model.IsDefined(mean) {
		return Insight{}, false
	}
	if vol > mean*VolSpikeMultiple {
		return Insight{Rule: RuleVolatility, Tone: Neutral, Text: "⚡ Volatility spike detected (big move)"}, true
	}
	return Insight{}, false
}

// lastChange reports the percentage move of the latest bar.
func lastChange(f *model.IndicatorFrame, last int) Insight {
	cur, prev := f.Series.Bars[last].Close, f.Series.Bars[last-1].Close
	if !model.IsDefined(cur) || !model.IsDefined(prev) || prev == 0 {
		return Insight{Rule: RuleMomentum, Tone: Neutral, Text: "Last change: n/a"}
	}
	pct := (cur - prev) / prev * 100
	tone := Neutral
	if pct > 0 {
		tone = Bullish
	} else if pct < 0 {
		tone = Bearish
	}
	return Insight{Rule: RuleMomentum, Tone: tone, Value: pct, Text: fmt.Sprintf("Last change: %.2f%%", pct)}
}

func noData() Insight {
	return Insight{Rule: RuleNoData, Tone: Neutral, Text: "No data available"}
}
