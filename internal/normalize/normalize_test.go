package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

func col(name string, values ...string) RawColumn {
	return RawColumn{Header: []string{name}, Values: values}
}

func TestPrepare_MixedCaseAndOrder(t *testing.T) {
	table := &RawTable{
		Index: []string{"2024-01-03", "2024-01-01", "2024-01-02"},
		Columns: []RawColumn{
			col("Volume", "300", "100", "200"),
			col(" CLOSE ", "12", "10", "11"),
			col("Open", "11.5", "9.5", "10.5"),
		},
	}
	s, err := Prepare("AAPL", table)
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColOpen, model.ColClose, model.ColVolume}, s.Columns)
	require.Len(t, s.Bars, 3)
	assert.Equal(t, []float64{10, 11, 12}, s.Closes())
	assert.Equal(t, 9.5, s.Bars[0].Open)
	assert.True(t, math.IsNaN(s.Bars[0].High), "unresolved column must be NaN")
	assert.True(t, math.IsNaN(s.Bars[0].Low))
	for i := 1; i < len(s.Bars); i++ {
		assert.False(t, s.Bars[i].Time.Before(s.Bars[i-1].Time))
	}
}

func TestPrepare_MultiLevelHeaderSubstringMatch(t *testing.T) {
	table := &RawTable{
		Index: []string{"2024-01-01", "2024-01-02"},
		Columns: []RawColumn{
			{Header: []string{"Close", "AAPL"}, Values: []string{"1", "2"}},
			{Header: []string{"High", "AAPL"}, Values: []string{"3", "4"}},
			{Header: []string{"Close", "MSFT"}, Values: []string{"5", "6"}},
		},
	}
	s, err := Prepare("AAPL", table)
	require.NoError(t, err)
	assert.Equal(t, []string{model.ColHigh, model.ColClose}, s.Columns)
	assert.Equal(t, []float64{1, 2}, s.Closes(), "first sub-column wins")
	assert.Equal(t, 4.0, s.Bars[1].High)
}

func TestPrepare_AdjCloseAlias(t *testing.T) {
	table := &RawTable{
		Index:   []string{"2024-01-01"},
		Columns: []RawColumn{col("Adj Close", "42.5")},
	}
	s, err := Prepare("X", table)
	require.NoError(t, err)
	assert.Equal(t, []string{model.ColClose}, s.Columns)
	assert.Equal(t, 42.5, s.Bars[0].Close)
}

func TestPrepare_NonNumericBecomesNaN(t *testing.T) {
	table := &RawTable{
		Index:   []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Columns: []RawColumn{col("close", "1.5", "n/a", "")},
	}
	s, err := Prepare("X", table)
	require.NoError(t, err)
	assert.Equal(t, 1.5, s.Bars[0].Close)
	assert.True(t, math.IsNaN(s.Bars[1].Close))
	assert.True(t, math.IsNaN(s.Bars[2].Close))
}

func TestPrepare_FallsBackToTsColumn(t *testing.T) {
	table := &RawTable{
		Index: []string{"0", "1"},
		Columns: []RawColumn{
			col("ts", "2024-02-02T10:00:00Z", "2024-02-01T10:00:00Z"),
			col("close", "2", "1"),
		},
	}
	s, err := Prepare("X", table)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), s.Bars[0].Time)
	assert.Equal(t, []float64{1, 2}, s.Closes())
}

func TestPrepare_UnparsableTimestamp(t *testing.T) {
	table := &RawTable{
		Index:   []string{"yesterday"},
		Columns: []RawColumn{col("close", "1")},
	}
	_, err := Prepare("X", table)
	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestPrepare_DuplicateTimestampsPassThrough(t *testing.T) {
	table := &RawTable{
		Index:   []string{"2024-01-02", "2024-01-01", "2024-01-02"},
		Columns: []RawColumn{col("close", "1", "2", "3")},
	}
	s, err := Prepare("X", table)
	require.NoError(t, err)
	require.Len(t, s.Bars, 3)
	assert.Equal(t, []float64{2, 1, 3}, s.Closes())
}

func TestPrepare_RaggedColumns(t *testing.T) {
	table := &RawTable{
		Index:   []string{"2024-01-01", "2024-01-02"},
		Columns: []RawColumn{col("close", "1", "2"), col("open", "1")},
	}
	_, err := Prepare("X", table)
	var schemaErr *model.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestPrepare_DoesNotAliasInput(t *testing.T) {
	table := &RawTable{
		Index:   []string{"2024-01-01"},
		Columns: []RawColumn{col("close", "1")},
	}
	s, err := Prepare("X", table)
	require.NoError(t, err)
	table.Columns[0].Values[0] = "99"
	assert.Equal(t, 1.0, s.Bars[0].Close)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		nan  bool
	}{
		{"1", 1, false},
		{" 2.25 ", 2.25, false},
		{"-3e2", -300, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.in)
		if tt.nan {
			assert.True(t, math.IsNaN(got), tt.in)
			continue
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}
