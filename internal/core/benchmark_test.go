package core

import (
	"fmt"
	"testing"
)

// benchDataset builds a dataset shaped like a typical export: a text column
// with messy spacing, a serial date, an ISO date, a number and a bool.
func benchDataset(rows int) *Dataset {
	data := make([]Row, rows)
	for i := range data {
		if i%50 == 49 {
			data[i] = Row{Empty(), Null(), Str(""), Empty(), Empty()}
			continue
		}
		data[i] = Row{
			Str(fmt.Sprintf("  customer   %d  ", i)),
			Num(float64(44197 + i%365)),
			Str("2024-01-15T10:30:00Z"),
			Num(float64(i) * 1.25),
			Bool(i%2 == 0),
		}
	}
	return NewDataset([]string{" Customer Name ", "signup_date", "last-seen", "Total ($)", "active"}, data)
}

// ============================================================================
// Transform Benchmarks
// ============================================================================

// BenchmarkTransform_AllRules measures a full formatting pass.
func BenchmarkTransform_AllRules(b *testing.B) {
	ds := benchDataset(10000)
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Transform(ds, opts)
	}
}

// BenchmarkTransform_NoRules measures the copy-only path.
func BenchmarkTransform_NoRules(b *testing.B) {
	ds := benchDataset(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Transform(ds, FormattingOptions{})
	}
}

// BenchmarkFormatDateCell covers the three shapes a date rule sees.
func BenchmarkFormatDateCell(b *testing.B) {
	cells := []Cell{
		Num(44197),
		Str("2024-01-15T10:30:00Z"),
		Str("not a date"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			formatDateCell(c, DefaultDateLayout)
		}
	}
}

// BenchmarkStandardizeHeader benchmarks header normalization.
func BenchmarkStandardizeHeader(b *testing.B) {
	headers := []string{" Customer-ID# ", "first_name", "ORDER   TOTAL ($)"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, h := range headers {
			StandardizeHeader(h)
		}
	}
}

// ============================================================================
// Serializer Benchmarks
// ============================================================================

// BenchmarkSerialize measures workbook generation at a few sizes.
func BenchmarkSerialize(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		ds := benchDataset(n)
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Serialize(ds, "bench.csv"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSummarize measures column profiling for previews.
func BenchmarkSummarize(b *testing.B) {
	ds := benchDataset(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Summarize(ds)
	}
}
