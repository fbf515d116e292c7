package model

import (
	"math"
	"time"
)

// Canonical column names produced by the normalizer.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// CanonicalColumns lists the target columns in resolution order.
var CanonicalColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// PriceBar represents a single OHLCV bar. Missing values are NaN.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars of one symbol in ascending time order.
type PriceSeries struct {
	Symbol  string
	Bars    []PriceBar
	Columns []string // canonical columns that were resolvable in the source table
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// HasColumn reports whether the named canonical column was resolved.
func (s *PriceSeries) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Closes returns a fresh slice with the close of every bar.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Clone returns a deep copy sharing no backing arrays with s.
func (s *PriceSeries) Clone() *PriceSeries {
	bars := make([]PriceBar, len(s.Bars))
	copy(bars, s.Bars)
	cols := make([]string, len(s.Columns))
	copy(cols, s.Columns)
	return &PriceSeries{Symbol: s.Symbol, Bars: bars, Columns: cols}
}

// IsDefined reports whether v carries a value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NewSeries builds a series whose bars carry every canonical column.
func NewSeries(symbol string, bars []PriceBar) *PriceSeries {
	cols := make([]string, len(CanonicalColumns))
	copy(cols, CanonicalColumns)
	return &PriceSeries{Symbol: symbol, Bars: bars, Columns: cols}
}
