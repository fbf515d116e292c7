package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"TrendScope/internal/analysis"
)

// Sink delivers finished reports.
type Sink interface {
	Deliver(ctx context.Context, rep *analysis.Report) error
}

// WriterSink writes the text format of every report to W.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{W: w} }

func (s *WriterSink) Deliver(ctx context.Context, rep *analysis.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.W, FormatReport(rep)+"\n")
	return err
}

// DirSink writes each report as <Dir>/<SYMBOL>_<YYYYMMDD>.json, replacing a
// report of the same day.
type DirSink struct {
	Dir string
}

func (s *DirSink) Deliver(ctx context.Context, rep *analysis.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.json", rep.Symbol, rep.GeneratedAt.Format("20060102")))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// MultiSink delivers to every sink and returns the first error.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, rep *analysis.Report) error {
	var first error
	for _, s := range m {
		if err := s.Deliver(ctx, rep); err != nil && first == nil {
			first = err
		}
	}
	return first
}
