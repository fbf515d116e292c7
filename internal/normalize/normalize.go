// Package normalize coerces raw price tables into canonical price series.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TrendScope/internal/model"
)

// TimestampColumn is the fallback column holding row timestamps.
const TimestampColumn = "ts"

// exact aliases per canonical column, checked before substring matching.
var aliases = map[string][]string{
	model.ColClose: {"close", "adj close"},
}

// Prepare resolves the canonical OHLCV columns of t, coerces them to
// float64 and returns the rows sorted by timestamp. Unresolvable columns
// are left out of the result's Columns; their values are NaN.
func Prepare(symbol string, t *RawTable) (*model.PriceSeries, error) {
	if t == nil {
		return nil, &model.SchemaError{Field: "table", Err: errors.New("nil table")}
	}
	rows := t.Rows()
	for _, c := range t.Columns {
		if len(c.Values) != rows {
			return nil, &model.SchemaError{
				Field: c.Name(),
				Err:   fmt.Errorf("column has %d values, want %d", len(c.Values), rows),
			}
		}
	}

	times, err := resolveTimes(t, rows)
	if err != nil {
		return nil, err
	}

	resolved := resolveColumns(t.Columns)
	series := &model.PriceSeries{Symbol: symbol, Bars: make([]model.PriceBar, rows)}
	for _, name := range model.CanonicalColumns {
		if _, ok := resolved[name]; ok {
			series.Columns = append(series.Columns, name)
		}
	}

	for i := 0; i < rows; i++ {
		series.Bars[i] = model.PriceBar{
			Time:   times[i],
			Open:   valueAt(resolved, model.ColOpen, i),
			High:   valueAt(resolved, model.ColHigh, i),
			Low:    valueAt(resolved, model.ColLow, i),
			Close:  valueAt(resolved, model.ColClose, i),
			Volume: valueAt(resolved, model.ColVolume, i),
		}
	}

	// Stable so duplicate timestamps keep their input order.
	sort.SliceStable(series.Bars, func(i, j int) bool {
		return series.Bars[i].Time.Before(series.Bars[j].Time)
	})
	return series, nil
}

func resolveTimes(t *RawTable, rows int) ([]time.Time, error) {
	var indexErr error
	if t.Index != nil {
		if len(t.Index) != rows {
			indexErr = fmt.Errorf("index has %d labels, want %d", len(t.Index), rows)
		} else {
			times, err := parseAll(t.Index)
			if err == nil {
				return times, nil
			}
			indexErr = err
		}
	}

	if col, ok := t.Column(TimestampColumn); ok {
		times, err := parseAll(col.Values)
		if err != nil {
			return nil, &model.SchemaError{Field: TimestampColumn, Err: err}
		}
		return times, nil
	}

	if indexErr == nil {
		indexErr = errors.New("no index and no ts column")
	}
	return nil, &model.SchemaError{Field: "timestamp", Err: indexErr}
}

// resolveColumns maps each canonical name to the values of the column it
// resolves to: exact name (or alias) first, then the first unclaimed column
// whose name contains the canonical name.
func resolveColumns(cols []RawColumn) map[string][]string {
	out := make(map[string][]string, len(model.CanonicalColumns))
	claimed := make([]bool, len(cols))

	for _, target := range model.CanonicalColumns {
		names := aliases[target]
		if names == nil {
			names = []string{target}
		}
		for i, c := range cols {
			if claimed[i] || !contains(names, c.Name()) {
				continue
			}
			out[target] = c.Values
			claimed[i] = true
			break
		}
	}

	for _, target := range model.CanonicalColumns {
		if _, ok := out[target]; ok {
			continue
		}
		for i, c := range cols {
			if claimed[i] || !strings.Contains(c.Name(), target) {
				continue
			}
			out[target] = c.Values
			claimed[i] = true
			break
		}
	}
	return out
}

func valueAt(resolved map[string][]string, name string, i int) float64 {
	values, ok := resolved[name]
	if !ok {
		return math.NaN()
	}
	return ParseNumber(values[i])
}

// ParseNumber converts a textual cell to float64; anything non-numeric is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	f, _ := d.Float64()
	return f
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
