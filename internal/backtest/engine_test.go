package backtest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/classifier"
	"TrendScope/internal/model"
)

type probFunc func(fv model.FeatureVector) (float64, error)

func (f probFunc) ProbabilityOfPositive(fv model.FeatureVector) (float64, error) { return f(fv) }

func (f probFunc) Predict(fv model.FeatureVector) (int, error) {
	p, err := f(fv)
	if p > 0.5 {
		return 1, err
	}
	return 0, err
}

func constant(p float64) probFunc {
	return func(model.FeatureVector) (float64, error) { return p, nil }
}

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func rows(prices ...[2]float64) []model.FeatureRow {
	out := make([]model.FeatureRow, len(prices))
	for i, p := range prices {
		out[i] = model.FeatureRow{
			Time:     day0.AddDate(0, 0, i),
			Open:     p[0],
			Close:    p[1],
			Features: model.FeatureVector{Return1: float64(i)},
		}
	}
	return out
}

func TestSimulate_NoSignals(t *testing.T) {
	res, err := Simulate(rows([2]float64{10, 11}, [2]float64{11, 12}, [2]float64{12, 13}), constant(0.5))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0.0, res.TotalReturn)
	assert.True(t, res.HasAnnualized)
	assert.Equal(t, 0.0, res.Annualized)
	assert.Equal(t, []float64{1.0}, res.EquityCurve)
	assert.Equal(t, 3, res.Bars)
	assert.Equal(t, Stats{}, res.Stats)
}

func TestSimulate_NextBarExecution(t *testing.T) {
	in := rows([2]float64{10, 10}, [2]float64{100, 110}, [2]float64{50, 40})
	res, err := Simulate(in, constant(0.9))
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)

	first := res.Trades[0]
	assert.Equal(t, day0, first.SignalTime)
	assert.Equal(t, day0.AddDate(0, 0, 1), first.EntryTime)
	assert.Equal(t, 100.0, first.EntryPrice)
	assert.Equal(t, 110.0, first.ExitPrice)
	assert.InDelta(t, 0.1, first.Return, 1e-12)
	assert.InDelta(t, -0.2, res.Trades[1].Return, 1e-12)

	assert.InDelta(t, -0.12, res.TotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(0.88, 252.0/3)-1, res.Annualized, 1e-12)
	require.Len(t, res.EquityCurve, 3)
	assert.InDelta(t, 1.1, res.EquityCurve[1], 1e-12)

	assert.Equal(t, 1, res.Stats.Wins)
	assert.Equal(t, 1, res.Stats.Losses)
	assert.Equal(t, 50.0, res.Stats.WinRate)
	assert.InDelta(t, 0.2, res.Stats.MaxDrawdown, 1e-12)
	assert.InDelta(t, 0.1, res.Stats.BestReturn, 1e-12)
	assert.InDelta(t, -0.2, res.Stats.WorstReturn, 1e-12)
}

func TestSimulate_ThresholdIsStrict(t *testing.T) {
	res, err := Simulate(rows([2]float64{1, 1}, [2]float64{1, 2}), constant(BuyThreshold))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, res.Signals)
}

func TestSimulate_SkipsUnexecutableBars(t *testing.T) {
	in := rows([2]float64{10, 10}, [2]float64{0, 10}, [2]float64{10, math.NaN()}, [2]float64{math.NaN(), 5}, [2]float64{10, 12})
	res, err := Simulate(in, constant(0.9))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Signals)
	assert.Equal(t, 3, res.SkippedSignals)
	require.Len(t, res.Trades, 1)
	assert.InDelta(t, 0.2, res.TotalReturn, 1e-12)
}

func TestSimulate_UndefinedOpenIsNotRolledForward(t *testing.T) {
	in := rows([2]float64{10, 10}, [2]float64{math.NaN(), 11}, [2]float64{20, 22})
	res, err := Simulate(in, constant(0.9))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Bars)
	assert.Equal(t, 1, res.SkippedSignals)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, day0.AddDate(0, 0, 1), res.Trades[0].SignalTime)
	assert.Equal(t, day0.AddDate(0, 0, 2), res.Trades[0].EntryTime)
}

func TestSimulate_EmptyRows(t *testing.T) {
	res, err := Simulate(nil, constant(0.9))
	require.NoError(t, err)
	assert.False(t, res.HasAnnualized)
	assert.Equal(t, 0, res.Bars)
}

func TestSimulate_ClassifierErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	_, err := Simulate(rows([2]float64{1, 1}, [2]float64{1, 2}), probFunc(func(model.FeatureVector) (float64, error) {
		return 0, boom
	}))
	assert.ErrorIs(t, err, boom)

	_, err = Simulate(nil, nil)
	var merr *model.ModelUnavailableError
	assert.True(t, errors.As(err, &merr))
}

func linearSeries(n int) *model.PriceSeries {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i) + 3*math.Sin(float64(i))
		bars[i] = model.PriceBar{Time: day0.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return model.NewSeries("TEST", bars)
}

func TestRun_Deterministic(t *testing.T) {
	clf := &classifier.LinearModel{
		Features:     append([]string(nil), model.FeatureNames...),
		Coefficients: []float64{40, 0, 0, 1},
	}
	s := linearSeries(120)
	a, err := Run(s, clf)
	require.NoError(t, err)
	b, err := Run(s, clf)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 101, a.Bars)
}

func TestEncodeCSV(t *testing.T) {
	res, err := Simulate(rows([2]float64{10, 10}, [2]float64{100, 110}, [2]float64{50, 40}), constant(0.9))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, res))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "signal_time", records[0][0])
	assert.Equal(t, "100", records[1][3])
	assert.Equal(t, "1.1", records[1][7][:3])
}

func TestWriteCSV(t *testing.T) {
	res, err := Simulate(rows([2]float64{10, 10}, [2]float64{100, 110}, [2]float64{50, 40}), constant(0.9))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteCSV(res, path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	assert.Error(t, WriteCSV(res, filepath.Join(t.TempDir(), "missing", "trades.csv")))
}
