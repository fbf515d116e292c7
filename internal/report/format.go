// Package report renders analysis results as text, CSV and JSON.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"TrendScope/internal/analysis"
	"TrendScope/internal/backtest"
	"TrendScope/internal/insight"
	"TrendScope/internal/model"
)

// FormatReport renders the full report of one symbol.
func FormatReport(rep *analysis.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 TrendScope | %s | %d bars", rep.Symbol, rep.Bars))
	if !rep.LastBar.IsZero() {
		b.WriteString(fmt.Sprintf(" | last %s", rep.LastBar.Format("2006-01-02")))
	}
	b.WriteString("\n\n")

	b.WriteString("🔎 Insights:\n")
	b.WriteString(FormatInsights(rep.Insights))
	b.WriteString("\n")

	if rep.Backtest != nil {
		b.WriteString(FormatBacktest(rep.Backtest))
		b.WriteString("\n")
	}
	b.WriteString(FormatSignal(rep.Signal))
	return b.String()
}

// FormatInsights renders one insight per line.
func FormatInsights(ins []insight.Insight) string {
	var b strings.Builder
	for _, in := range ins {
		b.WriteString("  • ")
		b.WriteString(in.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatBacktest renders the summary statistics of a simulation.
func FormatBacktest(res *backtest.Result) string {
	var b strings.Builder
	b.WriteString("🧪 Backtest:\n")
	b.WriteString(fmt.Sprintf("  Bars evaluated: %d\n", res.Bars))
	b.WriteString(fmt.Sprintf("  Trades: %d (signals %d, skipped %d)\n", res.Stats.NumTrades, res.Signals, res.SkippedSignals))
	b.WriteString(fmt.Sprintf("  Total return: %s\n", Percent(res.TotalReturn)))
	if res.HasAnnualized {
		b.WriteString(fmt.Sprintf("  Annualized: %s\n", Percent(res.Annualized)))
	} else {
		b.WriteString("  Annualized: n/a\n")
	}
	if res.Stats.NumTrades > 0 {
		b.WriteString(fmt.Sprintf("  Win rate: %s%% (%dW/%dL)\n", Fixed(res.Stats.WinRate, 1), res.Stats.Wins, res.Stats.Losses))
		b.WriteString(fmt.Sprintf("  Avg trade: %s | best %s | worst %s\n",
			Percent(res.Stats.AvgReturn), Percent(res.Stats.BestReturn), Percent(res.Stats.WorstReturn)))
		b.WriteString(fmt.Sprintf("  Max drawdown: %s\n", Percent(res.Stats.MaxDrawdown)))
	}
	return b.String()
}

// FormatSignal renders the live signal, or why there is none.
func FormatSignal(sig *model.LiveSignal) string {
	if sig == nil || !sig.Available {
		reason := "model unavailable"
		if sig != nil && sig.Reason != "" {
			reason = sig.Reason
		}
		return fmt.Sprintf("🤖 Signal: n/a (%s)\n", reason)
	}
	icon := "🟢"
	if sig.Action == model.ActionSell {
		icon = "🔴"
	}
	return fmt.Sprintf("🤖 Signal: %s %s | confidence %s | bar %s\n",
		icon, sig.Action, Fixed(sig.Confidence, 3), sig.Time.Format("2006-01-02"))
}

// Percent formats a fraction as a signed percentage with two decimals.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Shift(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Fixed formats v with the given number of decimals, or "n/a".
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
