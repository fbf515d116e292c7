// Package source loads raw price tables for the normalizer.
package source

import (
	"context"

	"TrendScope/internal/normalize"
)

// Source defines the interface for loading the raw price table of a symbol.
type Source interface {
	LoadTable(ctx context.Context, symbol string) (*normalize.RawTable, error)
	Name() string
}
