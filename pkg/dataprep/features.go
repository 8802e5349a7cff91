package dataprep

import (
	"fmt"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

// SplitTarget separates the target column from the feature columns. The
// returned features keep the original column order minus the target; the
// target series shares f's index.
func SplitTarget(f *data.Frame, target string) (*data.Frame, *data.Series, error) {
	t := f.ColumnIndex(target)
	if t < 0 {
		return nil, nil, fmt.Errorf("dataprep: target column %q not found", target)
	}

	indices := make([]int, 0, len(f.Columns)-1)
	names := make([]string, 0, len(f.Columns)-1)
	for j, c := range f.Columns {
		if j != t {
			indices = append(indices, j)
			names = append(names, c)
		}
	}

	y, err := f.Column(target)
	if err != nil {
		return nil, nil, err
	}

	X := &data.Frame{Index: f.Index, Columns: names, Rows: FeatureSelect(f.Rows, indices)}
	return X, y, nil
}

// FeatureSelect selects columns by indices.
func FeatureSelect(X [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		selected := make([]float64, len(indices))
		for j, idx := range indices {
			selected[j] = row[idx]
		}
		out[i] = selected
	}
	return out
}
