package classifier

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/model"
)

// Provider resolves the classifier trained for a symbol.
type Provider interface {
	Classifier(symbol string) (Classifier, error)
}

// FileProvider loads <SYMBOL>_lgbm.json models from Dir and caches them.
// Returned classifiers are wrapped with Serialize.
type FileProvider struct {
	Dir string

	mu    sync.Mutex
	cache map[string]Classifier
}

// NewFileProvider creates a provider reading models from dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir, cache: make(map[string]Classifier)}
}

// Classifier returns the cached model or loads it from disk.
// A missing or invalid file yields *model.ModelUnavailableError.
func (p *FileProvider) Classifier(symbol string) (Classifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.cache[symbol]; ok {
		return c, nil
	}

	path := ModelPath(p.Dir, symbol)
	m, err := LoadModel(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &model.ModelUnavailableError{Symbol: symbol, Err: fmt.Errorf("no model file at %s", path)}
		}
		return nil, &model.ModelUnavailableError{Symbol: symbol, Err: fmt.Errorf("load %s: %w", path, err)}
	}
	log.Debug().Str("symbol", symbol).Str("path", path).Time("trained_at", m.TrainedAt).Msg("model loaded")

	c := Serialize(m)
	if p.cache == nil {
		p.cache = make(map[string]Classifier)
	}
	p.cache[symbol] = c
	return c, nil
}

// Invalidate drops the cached model for symbol so the next call reloads it.
func (p *FileProvider) Invalidate(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, symbol)
}

// Static serves fixed classifiers; symbols without one are unavailable.
type Static map[string]Classifier

// Classifier implements Provider.
func (s Static) Classifier(symbol string) (Classifier, error) {
	if c, ok := s[symbol]; ok {
		return c, nil
	}
	return nil, &model.ModelUnavailableError{Symbol: symbol}
}
