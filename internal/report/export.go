package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"TrendScope/internal/analysis"
	"TrendScope/internal/model"
)

// WriteFeaturesCSV writes labelled feature rows in the column order
// classifiers are trained on.
func WriteFeaturesCSV(w io.Writer, rows []model.LabeledRow) error {
	cw := csv.NewWriter(w)
	header := append([]string{"ts"}, model.FeatureNames...)
	header = append(header, "close", "next_return", "target")
	_ = cw.Write(header)
	for _, r := range rows {
		rec := []string{r.Time.Format(time.RFC3339)}
		for _, v := range r.Features.Values() {
			rec = append(rec, formatF(v))
		}
		rec = append(rec, formatF(r.Close), formatF(r.NextReturn), strconv.Itoa(r.Target))
		_ = cw.Write(rec)
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON encodes the report, indented.
func WriteJSON(w io.Writer, rep *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
