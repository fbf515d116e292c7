package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/analysis"
	"TrendScope/internal/backtest"
	"TrendScope/internal/insight"
	"TrendScope/internal/model"
)

var day = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Symbol:      "AAPL",
		GeneratedAt: day.Add(22 * time.Hour),
		Bars:        250,
		LastBar:     day,
		Insights: []insight.Insight{
			{Rule: insight.RuleTrend, Tone: insight.Bullish, Text: "📈 Price above 50-day SMA (bullish bias)"},
			{Rule: insight.RuleRSI, Tone: insight.Neutral, Text: "RSI: 55.5"},
		},
		Backtest: &backtest.Result{
			Trades:        []model.Trade{{Return: 0.02}},
			EquityCurve:   []float64{1, 1.02},
			TotalReturn:   0.02,
			Annualized:    0.0254,
			HasAnnualized: true,
			Bars:          231,
			Signals:       1,
			Stats:         backtest.Stats{NumTrades: 1, Wins: 1, WinRate: 100, AvgReturn: 0.02, BestReturn: 0.02, WorstReturn: 0.02},
		},
		Signal: &model.LiveSignal{Symbol: "AAPL", Time: day, Action: model.ActionBuy, Confidence: 0.712, Probability: 0.712, Available: true},
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleReport())
	assert.Contains(t, out, "AAPL | 250 bars | last 2024-06-28")
	assert.Contains(t, out, "  • 📈 Price above 50-day SMA (bullish bias)\n")
	assert.Contains(t, out, "Total return: +2.00%")
	assert.Contains(t, out, "Annualized: +2.54%")
	assert.Contains(t, out, "Win rate: 100.0% (1W/0L)")
	assert.Contains(t, out, "🤖 Signal: 🟢 BUY | confidence 0.712 | bar 2024-06-28")
	assert.Less(t, strings.Index(out, "Insights"), strings.Index(out, "Backtest"))
}

func TestFormatReport_Unavailable(t *testing.T) {
	rep := sampleReport()
	rep.Backtest = nil
	rep.Signal = &model.LiveSignal{Symbol: "AAPL", Reason: "model unavailable for AAPL"}
	out := FormatReport(rep)
	assert.NotContains(t, out, "Backtest")
	assert.Contains(t, out, "Signal: n/a (model unavailable for AAPL)")

	assert.Contains(t, FormatSignal(nil), "n/a (model unavailable)")
}

func TestFormatBacktest_NoAnnualized(t *testing.T) {
	out := FormatBacktest(&backtest.Result{})
	assert.Contains(t, out, "Annualized: n/a")
	assert.NotContains(t, out, "Win rate")
}

func TestPercentAndFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.1234, "+12.34%"},
		{-0.05, "-5.00%"},
		{0, "0.00%"},
		{math.NaN(), "n/a"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.in))
	}
	assert.Equal(t, "0.735", Fixed(0.7346, 3))
	assert.Equal(t, "n/a", Fixed(math.NaN(), 3))
}

func TestWriteFeaturesCSV(t *testing.T) {
	rows := []model.LabeledRow{{
		FeatureRow: model.FeatureRow{Time: day, Close: 101, Features: model.FeatureVector{Return1: 0.01, MA5: 100, MA20: 98.5, MomentumRatio14: 0.5}},
		NextReturn: 0.007,
		Target:     1,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteFeaturesCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"ts", "return_1", "ma_5", "ma_20", "rsi_14", "close", "next_return", "target"}, records[0])
	assert.Equal(t, []string{"2024-06-28T00:00:00Z", "0.01", "100", "98.5", "0.5", "101", "0.007", "1"}, records[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "AAPL", doc["symbol"])
	assert.NotContains(t, doc, "Frame")
	sig := doc["signal"].(map[string]any)
	assert.Equal(t, "BUY", sig["action"])
	bt := doc["backtest"].(map[string]any)
	assert.Equal(t, 0.02, bt["total_return"])
}

func TestSinks(t *testing.T) {
	var buf bytes.Buffer
	dir := filepath.Join(t.TempDir(), "reports")
	sink := MultiSink{NewWriterSink(&buf), &DirSink{Dir: dir}}

	require.NoError(t, sink.Deliver(context.Background(), sampleReport()))
	assert.Contains(t, buf.String(), "TrendScope | AAPL")

	data, err := os.ReadFile(filepath.Join(dir, "AAPL_20240628.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"symbol": "AAPL"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Deliver(ctx, sampleReport()), context.Canceled)
}
