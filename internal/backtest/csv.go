package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteCSV writes the trade list of res to path.
func WriteCSV(res *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeCSV(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV writes the trade list of res to w.
func EncodeCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"signal_time", "entry_time", "exit_time", "entry", "exit", "return", "probability", "equity",
	})
	for i, t := range res.Trades {
		_ = cw.Write([]string{
			t.SignalTime.Format(time.RFC3339), t.EntryTime.Format(time.RFC3339), t.ExitTime.Format(time.RFC3339),
			formatF(t.EntryPrice), formatF(t.ExitPrice), formatF(t.Return), formatF(t.Probability),
			formatF(res.EquityCurve[i+1]),
		})
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
