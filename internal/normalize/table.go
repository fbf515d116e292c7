package normalize

import "strings"

// RawColumn is one column of an unnormalized price table. Header holds one
// entry per header level; single-level tables use a one-element Header.
type RawColumn struct {
	Header []string
	Values []string
}

// Name flattens the header levels into a lowercase column name.
func (c RawColumn) Name() string {
	parts := make([]string, 0, len(c.Header))
	for _, h := range c.Header {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, "_")))
}

// RawTable is a price table as delivered by an ingestion collaborator.
// Index, when present, carries one row label per row.
type RawTable struct {
	Index   []string
	Columns []RawColumn
}

// Rows returns the number of rows, taken from the first column or the index.
func (t *RawTable) Rows() int {
	if len(t.Columns) > 0 {
		return len(t.Columns[0].Values)
	}
	return len(t.Index)
}

// Column returns the first column whose flattened name equals name.
func (t *RawTable) Column(name string) (RawColumn, bool) {
	for _, c := range t.Columns {
		if c.Name() == name {
			return c, true
		}
	}
	return RawColumn{}, false
}
