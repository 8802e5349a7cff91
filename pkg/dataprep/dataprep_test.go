package dataprep

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

func table(records ...[]string) *data.Table {
	return &data.Table{Columns: []string{"Date", "Time", "CO(GT)", "T"}, Records: records}
}

var indexOpts = IndexOptions{DateColumn: "Date", TimeColumn: "Time"}

func TestBuildIndex(t *testing.T) {
	f, err := BuildIndex(table(
		[]string{"2004-03-10", "18:00:00", "2.6", "13.6"},
		[]string{"2004-03-10", "19:00:00", "2", "13.3"},
	), indexOpts)
	require.NoError(t, err)

	assert.Equal(t, []string{"CO(GT)", "T"}, f.Columns)
	assert.Equal(t, [][]float64{{2.6, 13.6}, {2, 13.3}}, f.Rows)
	assert.Equal(t, time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC), f.Index[0])
	assert.Equal(t, time.Date(2004, 3, 10, 19, 0, 0, 0, time.UTC), f.Index[1])
}

func TestBuildIndex_MissingCells(t *testing.T) {
	f, err := BuildIndex(table(
		[]string{"2004-03-10", "18:00:00", "2.6", ""},
		[]string{"2004-03-10", "19:00:00", "NA", " 13.3 "},
		[]string{"2004-03-10", "20:00:00", "null", "n/a"},
	), indexOpts)
	require.NoError(t, err)

	assert.Equal(t, 2.6, f.Rows[0][0])
	assert.True(t, math.IsNaN(f.Rows[0][1]))
	assert.True(t, math.IsNaN(f.Rows[1][0]))
	assert.Equal(t, 13.3, f.Rows[1][1])
	assert.True(t, math.IsNaN(f.Rows[2][0]))
	assert.True(t, math.IsNaN(f.Rows[2][1]))
}

func TestBuildIndex_Layouts(t *testing.T) {
	want := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct{ date, clock string }{
		{"2004-03-10", "18:00:00"},
		{"2004-03-10", "18.00.00"},
		{"3/10/2004", "18:00:00"},
		{"03/10/2004", "18.00.00"},
		{"2004-03-10", "18:00"},
	}
	for _, tt := range tests {
		f, err := BuildIndex(table([]string{tt.date, tt.clock, "1", "2"}), indexOpts)
		require.NoError(t, err, tt.date+" "+tt.clock)
		assert.Equal(t, want, f.Index[0])
	}

	f, err := BuildIndex(table([]string{"10/03/2004", "18.00.00", "1", "2"}), IndexOptions{
		DateColumn: "Date", TimeColumn: "Time", Layouts: []string{"02/01/2006 15.04.05"},
	})
	require.NoError(t, err)
	assert.Equal(t, want, f.Index[0])
}

func TestBuildIndex_Errors(t *testing.T) {
	_, err := BuildIndex(table([]string{"yesterday", "noon", "1", "2"}), indexOpts)
	assert.ErrorIs(t, err, ErrTimestamp)

	_, err = BuildIndex(table([]string{"2004-03-10", "18:00:00", "2,6", "2"}), indexOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "CO(GT)"`)

	_, err = BuildIndex(table(), IndexOptions{DateColumn: "Day", TimeColumn: "Time"})
	assert.Error(t, err)
}

func TestFirstDisorder(t *testing.T) {
	t0 := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, -1, FirstDisorder([]time.Time{t0, t0, t0.Add(time.Hour)}))
	assert.Equal(t, 2, FirstDisorder([]time.Time{t0, t0.Add(time.Hour), t0}))
	assert.Equal(t, -1, FirstDisorder(nil))
}

func TestSplitTarget(t *testing.T) {
	f := &data.Frame{
		Columns: []string{"A", "CO(GT)", "B"},
		Rows:    [][]float64{{1, 10, 2}, {3, 20, 4}},
	}
	X, y, err := SplitTarget(f, "CO(GT)")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, X.Columns)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, X.Rows)
	assert.Equal(t, "CO(GT)", y.Name)
	assert.Equal(t, []float64{10, 20}, y.Values)

	_, _, err = SplitTarget(f, "missing")
	assert.Error(t, err)
}
