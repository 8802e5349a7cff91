package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shankar-dh/Timeseries/pkg/data"
	"github.com/shankar-dh/Timeseries/pkg/storage"
)

var (
	ErrMissingStat = errors.New("stats: no normalization statistics for column")
	ErrBadStat     = errors.New("stats: invalid normalization statistics")
)

// Normalization holds externally governed per-column statistics, stored as
// {"mean": {col: v}, "std": {col: v}}.
type Normalization struct {
	Mean map[string]float64 `json:"mean"`
	Std  map[string]float64 `json:"std"`
}

// Parse decodes a stats document.
func Parse(b []byte) (*Normalization, error) {
	var n Normalization
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("stats: parse: %w", err)
	}
	if n.Mean == nil || n.Std == nil {
		return nil, fmt.Errorf("%w: document needs both \"mean\" and \"std\" objects", ErrBadStat)
	}
	return &n, nil
}

// Fetch downloads and parses the stats document at uri.
func Fetch(ctx context.Context, store storage.Store, uri string) (*Normalization, error) {
	b, err := storage.ReadAll(ctx, store, uri)
	if err != nil {
		return nil, err
	}
	n, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return n, nil
}

// Lookup returns mean and std for col.
func (n *Normalization) Lookup(col string) (mean, std float64, err error) {
	mean, okM := n.Mean[col]
	std, okS := n.Std[col]
	if !okM || !okS {
		return 0, 0, fmt.Errorf("%w %q", ErrMissingStat, col)
	}
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, 0, fmt.Errorf("%w: column %q has mean %v std %v", ErrBadStat, col, mean, std)
	}
	return mean, std, nil
}

// Scaler applies z-score normalization with fixed, externally supplied
// statistics. Unlike a fitted scaler it never looks at the data it
// transforms.
type Scaler struct {
	Columns []string
	Mean    []float64
	Std     []float64
}

// NewScaler resolves the statistics of every column up front so a missing
// key fails before any value is touched.
func NewScaler(n *Normalization, columns []string) (*Scaler, error) {
	s := &Scaler{
		Columns: append([]string(nil), columns...),
		Mean:    make([]float64, len(columns)),
		Std:     make([]float64, len(columns)),
	}
	for j, c := range columns {
		m, sd, err := n.Lookup(c)
		if err != nil {
			return nil, err
		}
		s.Mean[j], s.Std[j] = m, sd
	}
	return s, nil
}

// Transform returns (x - mean) / std per column in a new slice.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		row := make([]float64, len(x))
		for j := range x {
			row[j] = (x[j] - s.Mean[j]) / s.Std[j]
		}
		out[i] = row
	}
	return out
}

// TransformFrame normalizes every column of f. Columns must match the
// scaler's, in order.
func (s *Scaler) TransformFrame(f *data.Frame) (*data.Frame, error) {
	if len(f.Columns) != len(s.Columns) {
		return nil, fmt.Errorf("stats: scaler has %d columns, frame has %d", len(s.Columns), len(f.Columns))
	}
	for j, c := range f.Columns {
		if s.Columns[j] != c {
			return nil, fmt.Errorf("stats: column %d is %q, scaler expects %q", j, c, s.Columns[j])
		}
	}
	return &data.Frame{Index: f.Index, Columns: f.Columns, Rows: s.Transform(f.Rows)}, nil
}

// NormalizeSeries scales a single series with its own column statistics.
func NormalizeSeries(n *Normalization, y *data.Series) (*data.Series, error) {
	mean, std, err := n.Lookup(y.Name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(y.Values))
	for i, v := range y.Values {
		out[i] = (v - mean) / std
	}
	return &data.Series{Name: y.Name, Index: y.Index, Values: out}, nil
}
