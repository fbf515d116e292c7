// Package backtest replays classifier signals against next-bar prices.
package backtest

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/classifier"
	"TrendScope/internal/feature"
	"TrendScope/internal/model"
)

// BuyThreshold is the probability above which a row triggers a trade.
const BuyThreshold = 0.6

// TradingDaysPerYear annualizes the total return.
const TradingDaysPerYear = 252

// Result is the outcome of one simulation.
type Result struct {
	Trades         []model.Trade `json:"trades"`
	EquityCurve    []float64     `json:"equity_curve"` // starts at 1.0, one point per trade
	TotalReturn    float64       `json:"total_return"`
	Annualized     float64       `json:"annualized"`
	HasAnnualized  bool          `json:"has_annualized"`
	Bars           int           `json:"bars"`         // feature rows evaluated
	Signals        int           `json:"signals"`
	SkippedSignals int           `json:"skipped_signals"`
	Stats          Stats         `json:"stats"`
}

// Run builds features from the series and simulates them.
func Run(s *model.PriceSeries, clf classifier.Classifier) (*Result, error) {
	rows, err := feature.Build(s)
	if err != nil {
		return nil, err
	}
	return Simulate(rows, clf)
}

// Simulate enters at the open and exits at the close of the bar after every
// row whose probability exceeds BuyThreshold. Equity compounds from 1.0 and
// at most one position is held, always closed inside its bar. Rows keep an
// undefined open; a signal whose next bar has no open is skipped rather than
// rolled to the bar after.
func Simulate(rows []model.FeatureRow, clf classifier.Classifier) (*Result, error) {
	if clf == nil {
		return nil, &model.ModelUnavailableError{Err: fmt.Errorf("nil classifier")}
	}

	res := &Result{Bars: len(rows), EquityCurve: []float64{1.0}}
	equity := 1.0
	for i := 0; i+1 < len(rows); i++ {
		p, err := clf.ProbabilityOfPositive(rows[i].Features)
		if err != nil {
			return nil, fmt.Errorf("score row %s: %w", rows[i].Time.Format("2006-01-02"), err)
		}
		if p <= BuyThreshold {
			continue
		}
		res.Signals++

		next := rows[i+1]
		if !model.IsDefined(next.Open) || next.Open == 0 || !model.IsDefined(next.Close) {
			res.SkippedSignals++
			log.Debug().Time("bar", next.Time).Float64("open", next.Open).Float64("close", next.Close).Msg("signal skipped: no executable price")
			continue
		}

		ret := next.Close/next.Open - 1
		equity *= 1 + ret
		res.EquityCurve = append(res.EquityCurve, equity)
		res.Trades = append(res.Trades, model.Trade{
			SignalTime:  rows[i].Time,
			EntryTime:   next.Time,
			ExitTime:    next.Time,
			EntryPrice:  next.Open,
			ExitPrice:   next.Close,
			Return:      ret,
			Probability: p,
		})
	}

	res.TotalReturn = equity - 1
	if len(rows) > 0 {
		res.Annualized = math.Pow(1+res.TotalReturn, float64(TradingDaysPerYear)/float64(len(rows))) - 1
		res.HasAnnualized = true
	}
	res.Stats = computeStats(res.Trades, res.EquityCurve)
	return res, nil
}
