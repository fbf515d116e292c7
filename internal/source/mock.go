package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"TrendScope/internal/model"
	"TrendScope/internal/normalize"
)

// MockSource returns controllable fixed tables for development and testing.
// Symbols without a table get generated bars around BasePrice.
type MockSource struct {
	Tables    map[string]*normalize.RawTable
	BasePrice float64
	Bars      int
	End       time.Time
	Err       error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) LoadTable(ctx context.Context, symbol string) (*normalize.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if t, ok := m.Tables[symbol]; ok {
		return t, nil
	}
	if m.BasePrice <= 0 || m.Bars <= 0 {
		return nil, fmt.Errorf("mock: no table for %s", symbol)
	}
	end := m.End
	if end.IsZero() {
		end = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return TableFromBars(GenerateBars(m.BasePrice, m.Bars, end)), nil
}

// GenerateBars returns count daily bars ending at end, drifting upward
// with a sine wobble so every indicator has something to react to.
func GenerateBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/3))
		bars[i] = model.PriceBar{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// TableFromBars renders bars as a RawTable with a date index and
// capitalized single-level headers.
func TableFromBars(bars []model.PriceBar) *normalize.RawTable {
	names := []string{"Open", "High", "Low", "Close", "Volume"}
	t := &normalize.RawTable{Index: make([]string, len(bars))}
	for _, n := range names {
		t.Columns = append(t.Columns, normalize.RawColumn{Header: []string{n}, Values: make([]string, len(bars))})
	}
	for i, b := range bars {
		t.Index[i] = b.Time.Format("2006-01-02")
		for c, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			t.Columns[c].Values[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return t
}
