package dataprep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

var ErrTimestamp = errors.New("dataprep: unparseable timestamp")

// DefaultLayouts are tried in order when no explicit layout is configured.
// Ambiguous slash dates are read month first.
var DefaultLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15.04.05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15.04.05",
	"2006/1/2 15:04:05",
	"2006-01-02T15:04:05",
}

// IndexOptions controls BuildIndex.
type IndexOptions struct {
	DateColumn string
	TimeColumn string
	// Layouts overrides DefaultLayouts when non-empty.
	Layouts []string
}

// BuildIndex turns a raw table into a Frame: Date and Time are joined with
// a space and parsed as one timestamp (UTC, no zone) that becomes the
// index; both text columns are dropped and every other cell must parse as
// a float or be a missing marker (empty, NA, null, ...), read as NaN.
func BuildIndex(t *data.Table, opts IndexOptions) (*data.Frame, error) {
	di, ti := t.ColumnIndex(opts.DateColumn), t.ColumnIndex(opts.TimeColumn)
	if di < 0 || ti < 0 {
		return nil, fmt.Errorf("dataprep: table lacks %q or %q", opts.DateColumn, opts.TimeColumn)
	}
	layouts := opts.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	cols := make([]int, 0, len(t.Columns))
	names := make([]string, 0, len(t.Columns))
	for j, c := range t.Columns {
		if j != di && j != ti {
			cols = append(cols, j)
			names = append(names, c)
		}
	}

	f := &data.Frame{
		Index:   make([]time.Time, len(t.Records)),
		Columns: names,
		Rows:    make([][]float64, len(t.Records)),
	}
	// the layout that matched last is tried first on the next row
	hint := 0
	for i, rec := range t.Records {
		raw := strings.TrimSpace(rec[di]) + " " + strings.TrimSpace(rec[ti])
		ts, k, err := parseTimestamp(raw, layouts, hint)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		hint = k
		f.Index[i] = ts

		row := make([]float64, len(cols))
		for c, j := range cols {
			v, err := parseCell(rec[j])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, t.Columns[j], err)
			}
			row[c] = v
		}
		f.Rows[i] = row
	}
	return f, nil
}

// naValues are read as missing, as pandas read_csv does by default.
var naValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// parseCell reads a numeric cell; missing markers become NaN.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if naValues[s] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTimestamp(s string, layouts []string, hint int) (time.Time, int, error) {
	if ts, err := time.Parse(layouts[hint], s); err == nil {
		return ts, hint, nil
	}
	for k, layout := range layouts {
		if k == hint {
			continue
		}
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, k, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("%w %q", ErrTimestamp, s)
}

// FirstDisorder returns the position of the first timestamp earlier than
// its predecessor, or -1 when the index is non-decreasing.
func FirstDisorder(index []time.Time) int {
	for i := 1; i < len(index); i++ {
		if index[i].Before(index[i-1]) {
			return i
		}
	}
	return -1
}
