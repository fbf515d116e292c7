package model

// IndicatorFrame is a PriceSeries extended with derived columns.
// Every column has the same length as Series.Bars; NaN marks positions
// before a column's lookback is satisfied.
type IndicatorFrame struct {
	Series       *PriceSeries
	SMA10        []float64
	SMA50        []float64
	EMA20        []float64
	RSI          []float64
	MACD         []float64
	MACDSignal   []float64
	Volatility20 []float64
}

// Len returns the number of rows in the frame.
func (f *IndicatorFrame) Len() int {
	if f == nil || f.Series == nil {
		return 0
	}
	return len(f.Series.Bars)
}

// Last returns the index of the latest row, or -1 for an empty frame.
func (f *IndicatorFrame) Last() int {
	return f.Len() - 1
}
