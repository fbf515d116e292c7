package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendScope/internal/analysis"
	"TrendScope/internal/backtest"
	"TrendScope/internal/classifier"
	"TrendScope/internal/config"
	"TrendScope/internal/metrics"
	"TrendScope/internal/recorder"
	"TrendScope/internal/report"
	"TrendScope/internal/scheduler"
	"TrendScope/internal/source"
)

const usage = `usage: trendscope <command> [flags]

commands:
  insights         print indicator insights
  backtest         run the classifier backtest
  predict          print the live signal for the latest bar
  export-features  write labelled feature rows as CSV
  serve            run the scheduled analysis and the metrics endpoint
`

type options struct {
	configPath string
	symbol     string
	csvOut     string
	out        string
	jsonOut    bool
	reportDir  string
	runOnStart bool
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	var opts options
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", defaultConfig, "path to the YAML config")
	fs.StringVar(&opts.symbol, "symbol", "", "symbol to process (default: every configured symbol)")
	fs.StringVar(&opts.csvOut, "csv", "", "backtest: write the trade list to this CSV file")
	fs.StringVar(&opts.out, "out", "", "export-features: output file (default stdout)")
	fs.BoolVar(&opts.jsonOut, "json", false, "print reports as JSON")
	fs.StringVar(&opts.reportDir, "report-dir", "", "serve: also write JSON reports to this directory")
	fs.BoolVar(&opts.runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "serve: run the analysis once at startup")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage+"\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	symbols := cfg.Symbols
	if opts.symbol != "" {
		symbols = []string{opts.symbol}
	}

	switch cmd {
	case "insights", "backtest", "predict", "export-features", "serve":
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := execute(ctx, cmd, cfg, symbols, opts); err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// execute runs one command. The recorder is closed before it returns so a
// failing command still flushes the journal.
func execute(ctx context.Context, cmd string, cfg *config.Config, symbols []string, opts options) error {
	if cmd == "serve" {
		return serve(ctx, cfg, symbols, opts)
	}
	a, closeRec := newAnalyzer(cfg, nil)
	defer closeRec()
	return runOnce(ctx, cmd, a, cfg, symbols, opts)
}

var openRecorder = func(path string) (recorder.Recorder, error) {
	return recorder.NewSQLiteRecorder(path)
}

// newAnalyzer wires the configured source, models and journal.
func newAnalyzer(cfg *config.Config, m *metrics.Metrics) (*analysis.Analyzer, func()) {
	src := source.NewCSVSource(cfg.Data.Dir)
	models := classifier.NewFileProvider(cfg.Models.Dir)
	log.Info().Str("source", src.Name()).Str("data_dir", cfg.Data.Dir).Str("models_dir", cfg.Models.Dir).Msg("pipeline configured")

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755); err != nil {
			log.Warn().Err(err).Msg("create sqlite directory")
		}
		sr, err := openRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	return analysis.NewAnalyzer(src, models, rec, m), func() {
		if err := rec.Close(); err != nil {
			log.Warn().Err(err).Msg("close recorder")
		}
	}
}

func runOnce(ctx context.Context, cmd string, a *analysis.Analyzer, cfg *config.Config, symbols []string, opts options) error {
	switch cmd {
	case "export-features":
		if opts.symbol == "" {
			return fmt.Errorf("export-features needs -symbol")
		}
		return exportFeatures(ctx, a, opts.symbol, cfg.Features.LabelThreshold, opts.out)
	case "predict":
		for _, sym := range symbols {
			sig, err := a.Predict(ctx, sym)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s", sym, report.FormatSignal(sig))
		}
		return nil
	}

	if opts.csvOut != "" && len(symbols) != 1 {
		return fmt.Errorf("-csv needs a single -symbol")
	}
	for _, res := range a.AnalyzeAll(ctx, symbols) {
		if res.Err != nil {
			return res.Err
		}
		if err := printReport(cmd, res.Report, opts); err != nil {
			return err
		}
	}
	return nil
}

func printReport(cmd string, rep *analysis.Report, opts options) error {
	if opts.jsonOut {
		return report.WriteJSON(os.Stdout, rep)
	}
	switch cmd {
	case "insights":
		fmt.Printf("%s insights:\n%s", rep.Symbol, report.FormatInsights(rep.Insights))
	case "backtest":
		if rep.Backtest == nil {
			fmt.Printf("%s %s", rep.Symbol, report.FormatSignal(rep.Signal))
			return nil
		}
		fmt.Printf("%s %s", rep.Symbol, report.FormatBacktest(rep.Backtest))
		if opts.csvOut != "" {
			if err := backtest.WriteCSV(rep.Backtest, opts.csvOut); err != nil {
				return fmt.Errorf("write trades: %w", err)
			}
			log.Info().Str("path", opts.csvOut).Int("trades", len(rep.Backtest.Trades)).Msg("trades written")
		}
	}
	return nil
}

func exportFeatures(ctx context.Context, a *analysis.Analyzer, symbol string, threshold float64, out string) error {
	rows, err := a.TrainingSet(ctx, symbol, threshold)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := report.WriteFeaturesCSV(w, rows); err != nil {
		return err
	}
	log.Info().Str("symbol", symbol).Int("rows", len(rows)).Msg("features exported")
	return nil
}

func serve(ctx context.Context, cfg *config.Config, symbols []string, opts options) error {
	m := metrics.NewMetrics(nil)
	health := metrics.NewHealthStatus()
	a, closeRec := newAnalyzer(cfg, m)
	defer closeRec()

	sinks := report.MultiSink{report.NewWriterSink(os.Stdout)}
	if opts.reportDir != "" {
		sinks = append(sinks, &report.DirSink{Dir: opts.reportDir})
	}

	sched := scheduler.NewScheduler(ctx, a, sinks, health, symbols)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}

	var srv *metrics.Server
	if cfg.Metrics.Addr != "" {
		srv = metrics.NewServer(cfg.Metrics.Addr, nil, health)
		srv.Start()
	}

	sched.Start()
	if opts.runOnStart {
		log.Info().Msg("run-on-start enabled, executing analysis now")
		go sched.RunNow()
	}
	log.Info().Str("cron", cfg.Schedule.Cron).Msg("TrendScope is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	log.Info().Msg("TrendScope stopped")
	return nil
}
