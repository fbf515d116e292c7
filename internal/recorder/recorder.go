package recorder

import (
	"time"

	"TrendScope/internal/model"
)

// BacktestRun summarizes one backtest for the run journal.
type BacktestRun struct {
	ID             string // generated when empty
	Symbol         string
	ModelName      string
	StartedAt      time.Time
	Bars           int
	Signals        int
	SkippedSignals int
	Trades         int
	TotalReturn    float64
	Annualized     float64
	HasAnnualized  bool
	WinRate        float64
	MaxDrawdown    float64
}

// SignalEvent records a served live signal.
type SignalEvent struct {
	RunID      string
	Symbol     string
	BarTime    time.Time
	LastPrice  float64
	ProbUp     float64
	Label      model.Action
	Confidence float64
	ModelName  string
}

// FeatureBatch journals the labelled rows a model was or will be trained on.
type FeatureBatch struct {
	Symbol     string
	ModelLabel string
	Rows       []model.LabeledRow
}

// Recorder persists analysis history.
type Recorder interface {
	RecordBacktest(run *BacktestRun) error
	RecordSignal(evt *SignalEvent) error
	RecordFeatures(batch *FeatureBatch) error
	Close() error
}
