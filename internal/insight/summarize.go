// Package insight turns an indicator frame into short, ordered,
// human-readable observations about the latest bar.
package insight

import "TrendScope/internal/model"

// Rule identifies which observation produced an Insight.
type Rule string

const (
	RuleNoData     Rule = "NO_DATA"
	RuleTrend      Rule = "TREND"
	RuleCrossover  Rule = "CROSSOVER"
	RuleRSI        Rule = "RSI"
	RuleVolatility Rule = "VOLATILITY"
	RuleMomentum   Rule = "MOMENTUM"
)

// Tone is the directional reading of an Insight.
type Tone string

const (
	Bullish Tone = "BULLISH"
	Bearish Tone = "BEARISH"
	Neutral Tone = "NEUTRAL"
)

// Insight is a single observation.
type Insight struct {
	Rule  Rule    `json:"rule"`
	Tone  Tone    `json:"tone"`
	Value float64 `json:"value"` // percentage for RuleMomentum, zero otherwise
	Text  string  `json:"text"`
}

// Summarize evaluates the rules in fixed order: trend, crossover, RSI,
// volatility spike, last change. Frames with fewer than two bars yield a
// single no-data insight.
func Summarize(f *model.IndicatorFrame) []Insight {
	if f.Len() < 2 {
		return []Insight{noData()}
	}
	last := f.Last()

	var out []Insight
	if in, ok := trendBias(f, last); ok {
		out = append(out, in)
	}
	if in, ok := crossover(f, last); ok {
		out = append(out, in)
	}
	out = append(out, rsiRegime(f, last))
	if in, ok := volatilitySpike(f, last); ok {
		out = append(out, in)
	}
	out = append(out, lastChange(f, last))
	return out
}

// Texts returns the text of every insight, in order.
func Texts(ins []Insight) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.Text
	}
	return out
}

// Find returns the first insight produced by rule.
func Find(ins []Insight, rule Rule) (Insight, bool) {
	for _, in := range ins {
		if in.Rule == rule {
			return in, true
		}
	}
	return Insight{}, false
}
