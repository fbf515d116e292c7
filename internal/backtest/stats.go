package backtest

import "TrendScope/internal/model"

// Stats rolls up the trade list.
type Stats struct {
	NumTrades   int     `json:"num_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`     // percent
	AvgReturn   float64 `json:"avg_return"`
	BestReturn  float64 `json:"best_return"`
	WorstReturn float64 `json:"worst_return"`
	MaxDrawdown float64 `json:"max_drawdown"` // fraction of the running equity peak
}

func computeStats(trades []model.Trade, curve []float64) Stats {
	st := Stats{NumTrades: len(trades)}
	if len(trades) == 0 {
		return st
	}

	var sum float64
	st.BestReturn = trades[0].Return
	st.WorstReturn = trades[0].Return
	for _, t := range trades {
		sum += t.Return
		if t.Return > 0 {
			st.Wins++
		} else {
			st.Losses++
		}
		if t.Return > st.BestReturn {
			st.BestReturn = t.Return
		}
		if t.Return < st.WorstReturn {
			st.WorstReturn = t.Return
		}
	}
	n := float64(len(trades))
	st.WinRate = 100 * float64(st.Wins) / n
	st.AvgReturn = sum / n
	st.MaxDrawdown = maxDrawdown(curve)
	return st
}

func maxDrawdown(curve []float64) float64 {
	var peak, dd float64
	for _, e := range curve {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if d := (peak - e) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd
}
