package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

// Compute derives normalization statistics for every column of f: the
// arithmetic mean and the sample (n-1) standard deviation over the
// non-NaN values. A column with fewer than two present values is an error.
func Compute(f *data.Frame) (*Normalization, error) {
	n := &Normalization{
		Mean: make(map[string]float64, len(f.Columns)),
		Std:  make(map[string]float64, len(f.Columns)),
	}
	col := make([]float64, 0, f.Len())
	for j, name := range f.Columns {
		col = col[:0]
		for _, row := range f.Rows {
			if !math.IsNaN(row[j]) {
				col = append(col, row[j])
			}
		}
		if len(col) < 2 {
			return nil, fmt.Errorf("stats: column %q has %d non-missing values, need at least 2", name, len(col))
		}
		n.Mean[name], n.Std[name] = stat.MeanStdDev(col, nil)
	}
	return n, nil
}

// Marshal encodes n in the document layout read by Parse.
func (n *Normalization) Marshal() ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}
