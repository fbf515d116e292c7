package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/normalize"
)

// indexHeaders are first-column names read as the row index.
var indexHeaders = []string{"", "date", "datetime", "time", "timestamp", "index"}

// CSVSource reads <Dir>/<SYMBOL>.csv files as exported by common market
// data tools. Extra header rows (ticker/field levels) become header levels.
type CSVSource struct {
	Dir string
}

// NewCSVSource creates a source reading from dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

func (s *CSVSource) Name() string { return "csv" }

// Path returns the file read for symbol.
func (s *CSVSource) Path(symbol string) string {
	return filepath.Join(s.Dir, strings.ToUpper(symbol)+".csv")
}

// LoadTable reads the symbol's file into a RawTable.
func (s *CSVSource) LoadTable(ctx context.Context, symbol string) (*normalize.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(symbol)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := ParseRecords(records)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Debug().Str("symbol", symbol).Str("path", path).Int("rows", t.Rows()).Msg("csv loaded")
	return t, nil
}

// ParseRecords turns CSV records into a RawTable. The first record is a
// header; following records count as extra header levels while their first
// cell is not a timestamp and no other cell is numeric.
func ParseRecords(records [][]string) (*normalize.RawTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	width := len(records[0])
	headerRows := 1
	for headerRows < len(records) && isHeaderRow(records[headerRows]) {
		headerRows++
	}

	hasIndex := false
	for h := 0; h < headerRows; h++ {
		if contains(indexHeaders, strings.ToLower(cell(records[h], 0))) {
			hasIndex = true
		}
	}
	first := 0
	if hasIndex {
		first = 1
	}

	t := &normalize.RawTable{}
	for c := first; c < width; c++ {
		col := normalize.RawColumn{}
		for h := 0; h < headerRows; h++ {
			col.Header = append(col.Header, cell(records[h], c))
		}
		t.Columns = append(t.Columns, col)
	}
	for _, rec := range records[headerRows:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if hasIndex {
			t.Index = append(t.Index, cell(rec, 0))
		}
		for c := first; c < width; c++ {
			t.Columns[c-first].Values = append(t.Columns[c-first].Values, cell(rec, c))
		}
	}
	if hasIndex && t.Index == nil {
		t.Index = []string{}
	}
	return t, nil
}

func isHeaderRow(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	if _, err := normalize.ParseTimestamp(rec[0]); err == nil {
		return false
	}
	for _, v := range rec[1:] {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if !math.IsNaN(normalize.ParseNumber(v)) {
			return false
		}
	}
	return true
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
