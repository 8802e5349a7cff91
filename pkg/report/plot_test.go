package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

func TestPlotSeries(t *testing.T) {
	t0 := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	idx := make([]time.Time, 24)
	vals := make([]float64, 24)
	for i := range idx {
		idx[i] = t0.Add(time.Duration(i) * time.Hour)
		vals[i] = float64(i % 7)
	}
	out := filepath.Join(t.TempDir(), "target.png")

	require.NoError(t, PlotSeries(out, "CO(GT)", &data.Series{Name: "CO(GT)", Index: idx, Values: vals}))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotSeries_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, PlotSeries(filepath.Join(dir, "a.png"), "empty"))

	bad := &data.Series{Name: "x", Index: []time.Time{time.Now()}, Values: []float64{1, 2}}
	assert.Error(t, PlotSeries(filepath.Join(dir, "b.png"), "bad", bad))
}
