package core

import (
	"github.com/montanaflynn/stats"
)

// ColumnSummary describes the contents of one column.
type ColumnSummary struct {
	Name    string        `json:"name"`
	Filled  int           `json:"filled"`  // non-blank cells
	Blanks  int           `json:"blanks"`  // Empty, Null or "" cells, including missing trailing cells
	Numeric int           `json:"numeric"` // Number cells
	Stats   *NumericStats `json:"stats,omitempty"`
}

// NumericStats summarizes the Number cells of a column.
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Summarize profiles every header column of ds. Cells beyond the last header
// are ignored.
func Summarize(ds *Dataset) []ColumnSummary {
	out := make([]ColumnSummary, len(ds.Headers))
	values := make([]stats.Float64Data, len(ds.Headers))

	for i, h := range ds.Headers {
		out[i].Name = h
	}

	for _, row := range ds.Rows {
		for i := range ds.Headers {
			c := row.At(i)
			if c.IsBlank() {
				out[i].Blanks++
				continue
			}
			out[i].Filled++
			if n, ok := c.Number(); ok {
				out[i].Numeric++
				values[i] = append(values[i], n)
			}
		}
	}

	for i, data := range values {
		if len(data) > 0 {
			out[i].Stats = describeNumbers(data)
		}
	}
	return out
}

func describeNumbers(data stats.Float64Data) *NumericStats {
	// every function below only fails on empty input
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)

	return &NumericStats{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
	}
}
