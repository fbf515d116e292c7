// Package analysis runs the full per-symbol pipeline: load, normalize,
// indicators, insights, backtest and live signal.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/backtest"
	"TrendScope/internal/classifier"
	"TrendScope/internal/feature"
	"TrendScope/internal/indicator"
	"TrendScope/internal/insight"
	"TrendScope/internal/metrics"
	"TrendScope/internal/model"
	"TrendScope/internal/normalize"
	"TrendScope/internal/recorder"
	"TrendScope/internal/signal"
	"TrendScope/internal/source"
)

// Report is everything produced for one symbol.
type Report struct {
	Symbol      string                `json:"symbol"`
	RunID       string                `json:"run_id,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
	Bars        int                   `json:"bars"`
	LastBar     time.Time             `json:"last_bar"`
	Insights    []insight.Insight     `json:"insights"`
	Backtest    *backtest.Result      `json:"backtest,omitempty"`
	Signal      *model.LiveSignal     `json:"signal"`
	Frame       *model.IndicatorFrame `json:"-"`
}

// Analyzer composes the collaborators of a run. Models, Recorder and
// Metrics are optional.
type Analyzer struct {
	Source   source.Source
	Models   classifier.Provider
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil recorder is replaced by a no-op one.
func NewAnalyzer(src source.Source, models classifier.Provider, rec recorder.Recorder, m *metrics.Metrics) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{Source: src, Models: models, Recorder: rec, Metrics: m, Now: time.Now}
}

// Load fetches and normalizes the series of symbol.
func (a *Analyzer) Load(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	tbl, err := a.Source.LoadTable(ctx, symbol)
	if err != nil {
		a.fail(symbol, "load")
		return nil, fmt.Errorf("load %s from %s: %w", symbol, a.Source.Name(), err)
	}
	s, err := normalize.Prepare(symbol, tbl)
	if err != nil {
		a.fail(symbol, "normalize")
		return nil, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	return s, nil
}

// Analyze produces the report of one symbol. A missing or failing model
// leaves Backtest nil and marks the signal unavailable; it is not an error.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*Report, error) {
	start := time.Now()
	s, err := a.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}

	frame, err := indicator.Compute(s)
	if err != nil {
		a.fail(symbol, "indicators")
		return nil, fmt.Errorf("indicators %s: %w", symbol, err)
	}
	rep := &Report{
		Symbol:      symbol,
		GeneratedAt: a.now(),
		Bars:        s.Len(),
		Insights:    insight.Summarize(frame),
		Frame:       frame,
	}
	if s.Len() > 0 {
		rep.LastBar = s.Bars[s.Len()-1].Time
	}

	clf, err := a.classifier(symbol)
	if err != nil {
		return nil, err
	}
	if clf == nil {
		rep.Signal = signal.Unavailable(symbol, &model.ModelUnavailableError{Symbol: symbol})
	} else if err := a.evaluate(rep, s, clf); err != nil {
		return nil, err
	}

	if a.Metrics != nil {
		a.Metrics.AnalysesTotal.WithLabelValues(symbol).Inc()
		a.Metrics.AnalysisDur.Observe(time.Since(start).Seconds())
	}
	log.Info().Str("symbol", symbol).Int("bars", rep.Bars).Bool("signal", rep.Signal.Available).
		Dur("took", time.Since(start)).Msg("analysis complete")
	return rep, nil
}

// classifier returns nil without error when the model is unavailable.
func (a *Analyzer) classifier(symbol string) (classifier.Classifier, error) {
	if a.Models == nil {
		a.unavailable(symbol, nil)
		return nil, nil
	}
	clf, err := a.Models.Classifier(symbol)
	if err != nil {
		var merr *model.ModelUnavailableError
		if errors.As(err, &merr) {
			a.unavailable(symbol, err)
			return nil, nil
		}
		a.fail(symbol, "model")
		return nil, fmt.Errorf("model %s: %w", symbol, err)
	}
	return classifier.Serialize(clf), nil
}

// TrainingSet loads symbol and returns its labelled feature rows, journaling
// them under the symbol's model name.
func (a *Analyzer) TrainingSet(ctx context.Context, symbol string, threshold float64) ([]model.LabeledRow, error) {
	s, err := a.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	rows, err := feature.Build(s)
	if err != nil {
		a.fail(symbol, "features")
		return nil, fmt.Errorf("features %s: %w", symbol, err)
	}
	labeled := feature.Label(rows, threshold)
	if err := a.rec().RecordFeatures(&recorder.FeatureBatch{
		Symbol:     symbol,
		ModelLabel: modelName(symbol),
		Rows:       labeled,
	}); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record features")
	}
	return labeled, nil
}

func (a *Analyzer) evaluate(rep *Report, s *model.PriceSeries, clf classifier.Classifier) error {
	res, err := backtest.Run(s, clf)
	if err != nil {
		a.fail(rep.Symbol, "backtest")
		return fmt.Errorf("backtest %s: %w", rep.Symbol, err)
	}
	rep.Backtest = res

	run := &recorder.BacktestRun{
		Symbol:         rep.Symbol,
		ModelName:      modelName(rep.Symbol),
		StartedAt:      rep.GeneratedAt,
		Bars:           res.Bars,
		Signals:        res.Signals,
		SkippedSignals: res.SkippedSignals,
		Trades:         res.Stats.NumTrades,
		TotalReturn:    res.TotalReturn,
		Annualized:     res.Annualized,
		HasAnnualized:  res.HasAnnualized,
		WinRate:        res.Stats.WinRate,
		MaxDrawdown:    res.Stats.MaxDrawdown,
	}
	if err := a.rec().RecordBacktest(run); err != nil {
		log.Error().Err(err).Str("symbol", rep.Symbol).Msg("record backtest")
	}
	rep.RunID = run.ID

	sig, err := signal.Predict(s, clf)
	if err != nil {
		var herr *model.InsufficientHistoryError
		if !errors.As(err, &herr) {
			a.fail(rep.Symbol, "signal")
			return fmt.Errorf("signal %s: %w", rep.Symbol, err)
		}
		sig = signal.Unavailable(rep.Symbol, err)
	}
	rep.Signal = sig

	if a.Metrics != nil {
		a.Metrics.TradesTotal.WithLabelValues(rep.Symbol).Add(float64(res.Stats.NumTrades))
		a.Metrics.SkippedSignals.WithLabelValues(rep.Symbol).Add(float64(res.SkippedSignals))
		a.Metrics.LastTotalReturn.WithLabelValues(rep.Symbol).Set(res.TotalReturn)
		if sig.Available {
			a.Metrics.SignalConfidence.WithLabelValues(rep.Symbol, string(sig.Action)).Set(sig.Confidence)
		}
	}
	if !sig.Available {
		return nil
	}
	if err := a.rec().RecordSignal(&recorder.SignalEvent{
		RunID:      rep.RunID,
		Symbol:     rep.Symbol,
		BarTime:    sig.Time,
		LastPrice:  s.Bars[s.Len()-1].Close,
		ProbUp:     sig.Probability,
		Label:      sig.Action,
		Confidence: sig.Confidence,
		ModelName:  run.ModelName,
	}); err != nil {
		log.Error().Err(err).Str("symbol", rep.Symbol).Msg("record signal")
	}
	return nil
}

// Predict serves the live signal of symbol without running a backtest.
func (a *Analyzer) Predict(ctx context.Context, symbol string) (*model.LiveSignal, error) {
	s, err := a.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	clf, err := a.classifier(symbol)
	if err != nil {
		return nil, err
	}
	if clf == nil {
		return signal.Unavailable(symbol, &model.ModelUnavailableError{Symbol: symbol}), nil
	}
	sig, err := signal.Predict(s, clf)
	if err != nil {
		a.fail(symbol, "signal")
		return nil, fmt.Errorf("signal %s: %w", symbol, err)
	}
	return sig, nil
}

// Result pairs a symbol with its report or error.
type Result struct {
	Symbol string
	Report *Report
	Err    error
}

// AnalyzeAll analyzes every symbol concurrently and returns the results
// in input order. One symbol's failure does not affect the others.
func (a *Analyzer) AnalyzeAll(ctx context.Context, symbols []string) []Result {
	results := make([]Result, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			rep, err := a.Analyze(ctx, sym)
			results[i] = Result{Symbol: sym, Report: rep, Err: err}
		}(i, sym)
	}
	wg.Wait()
	return results
}

func (a *Analyzer) fail(symbol, stage string) {
	if a.Metrics != nil {
		a.Metrics.AnalysisFailures.WithLabelValues(symbol, stage).Inc()
	}
}

func (a *Analyzer) unavailable(symbol string, err error) {
	if a.Metrics != nil {
		a.Metrics.ModelUnavailable.WithLabelValues(symbol).Inc()
	}
	log.Warn().Err(err).Str("symbol", symbol).Msg("model unavailable, skipping backtest and signal")
}

func (a *Analyzer) rec() recorder.Recorder {
	if a.Recorder == nil {
		return recorder.NewNoopRecorder()
	}
	return a.Recorder
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func modelName(symbol string) string {
	return symbol + "_lgbm"
}
