package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TrendScope/internal/analysis"
	"TrendScope/internal/metrics"
	"TrendScope/internal/report"
)

// Scheduler runs the per-symbol analysis on a cron spec.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analysis.Analyzer
	Sink     report.Sink
	Health   *metrics.HealthStatus
	Symbols  []string
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Specs use the six-field format
// with seconds.
func NewScheduler(ctx context.Context, a *analysis.Analyzer, sink report.Sink, health *metrics.HealthStatus, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Sink:     sink,
		Health:   health,
		Symbols:  symbols,
		Ctx:      ctx,
	}
}

// Register adds the analysis task under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("symbols", len(s.Symbols)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow analyzes every symbol immediately and delivers the reports.
// It returns the number of symbols that succeeded and failed.
func (s *Scheduler) RunNow() (ok, failed int) {
	log.Info().Strs("symbols", s.Symbols).Msg("running analysis task")
	for _, res := range s.Analyzer.AnalyzeAll(s.Ctx, s.Symbols) {
		if res.Err != nil {
			failed++
			log.Error().Err(res.Err).Str("symbol", res.Symbol).Msg("analysis failed")
			continue
		}
		ok++
		s.tryDeliver(res.Report)
	}
	if s.Health != nil {
		s.Health.SetLastRun(time.Now(), ok, failed)
	}
	return ok, failed
}

func (s *Scheduler) tryDeliver(rep *analysis.Report) {
	if s.Sink == nil {
		return
	}
	if err := s.Sink.Deliver(s.Ctx, rep); err != nil {
		log.Error().Err(err).Str("symbol", rep.Symbol).Msg("deliver report")
	}
}
