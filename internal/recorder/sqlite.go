package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendScope/internal/model"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while runs are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			model_name      TEXT,
			bars            INTEGER,
			signals         INTEGER,
			skipped_signals INTEGER,
			trades          INTEGER,
			total_return    REAL,
			annualized      REAL,
			win_rate        REAL,
			max_drawdown    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_symbol_ts ON backtest_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS realtime_signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			run_id      TEXT,
			symbol      TEXT NOT NULL,
			bar_ts      INTEGER,
			last_price  REAL,
			prob_up     REAL,
			label       TEXT,
			confidence  REAL,
			model_name  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON realtime_signals(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS ml_features (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol       TEXT NOT NULL,
			bar_ts       INTEGER NOT NULL,
			feature_json TEXT,
			target       INTEGER,
			model_label  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_features_symbol_ts ON ml_features(symbol, bar_ts)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBacktest(run *BacktestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	var annualized sql.NullFloat64
	if run.HasAnnualized && model.IsDefined(run.Annualized) {
		annualized = sql.NullFloat64{Float64: run.Annualized, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO backtest_runs
		(id, timestamp, symbol, model_name, bars, signals, skipped_signals, trades,
		 total_return, annualized, win_rate, max_drawdown)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Symbol, run.ModelName,
		run.Bars, run.Signals, run.SkippedSignals, run.Trades,
		run.TotalReturn, annualized, run.WinRate, run.MaxDrawdown,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO realtime_signals
		(timestamp, run_id, symbol, bar_ts, last_price, prob_up, label, confidence, model_name)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Symbol, evt.BarTime.Unix(),
		evt.LastPrice, evt.ProbUp, string(evt.Label), evt.Confidence, evt.ModelName,
	)
	return err
}

// featureDoc is the feature_json payload, keyed by feature name.
type featureDoc map[string]float64

func (r *SQLiteRecorder) RecordFeatures(batch *FeatureBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO ml_features
		(symbol, bar_ts, feature_json, target, model_label) VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range batch.Rows {
		doc := make(featureDoc, len(model.FeatureNames))
		for i, v := range row.Features.Values() {
			doc[model.FeatureNames[i]] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode features at %s: %w", row.Time.Format(time.RFC3339), err)
		}
		if _, err := stmt.Exec(batch.Symbol, row.Time.Unix(), string(data), row.Target, batch.ModelLabel); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
