package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ds := NewDataset(
		[]string{"id", "amount", "paid"},
		[]Row{
			{Num(1), Num(10), Bool(true)},
			{Num(2), Str("n/a")},
			{Num(3), Num(30), Null()},
			{Num(4), Num(20), Bool(false), Str("beyond headers")},
		},
	)

	got := Summarize(ds)
	require.Len(t, got, 3)

	amount := got[1]
	assert.Equal(t, "amount", amount.Name)
	assert.Equal(t, 4, amount.Filled)
	assert.Equal(t, 0, amount.Blanks)
	assert.Equal(t, 3, amount.Numeric)
	require.NotNil(t, amount.Stats)
	assert.Equal(t, 10.0, amount.Stats.Min)
	assert.Equal(t, 30.0, amount.Stats.Max)
	assert.Equal(t, 20.0, amount.Stats.Mean)
	assert.Equal(t, 20.0, amount.Stats.Median)

	paid := got[2]
	assert.Equal(t, 2, paid.Filled)
	assert.Equal(t, 2, paid.Blanks, "missing trailing cell and Null both count as blank")
	assert.Nil(t, paid.Stats)
}

func TestSummarize_NoRows(t *testing.T) {
	got := Summarize(NewDataset([]string{"a"}, nil))
	require.Len(t, got, 1)
	assert.Equal(t, ColumnSummary{Name: "a"}, got[0])
}
