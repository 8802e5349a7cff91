package data

import (
	"fmt"
	"time"
)

// Schema is the fixed, ordered list of column names of a raw file.
type Schema []string

// Table is a raw delimited file with schema column names.
type Table struct {
	Columns []string
	Records [][]string
}

func (t *Table) Len() int { return len(t.Records) }

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int { return indexOf(t.Columns, name) }

// Frame holds numeric columns over a timestamp index. Rows is row-major so
// it can be handed to the models directly.
type Frame struct {
	Index   []time.Time
	Columns []string
	Rows    [][]float64
}

// Series is a single named column aligned with an index.
type Series struct {
	Name   string
	Index  []time.Time
	Values []float64
}

func (f *Frame) Len() int { return len(f.Rows) }

func (f *Frame) ColumnIndex(name string) int { return indexOf(f.Columns, name) }

// Column copies out the named column.
func (f *Frame) Column(name string) (*Series, error) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("data: no column %q", name)
	}
	vals := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		vals[i] = row[j]
	}
	return &Series{Name: name, Index: f.Index, Values: vals}, nil
}

// Slice returns rows [lo, hi). The result shares row storage with f.
func (f *Frame) Slice(lo, hi int) *Frame {
	out := &Frame{Columns: f.Columns, Rows: f.Rows[lo:hi:hi]}
	if f.Index != nil {
		out.Index = f.Index[lo:hi:hi]
	}
	return out
}

// Drop returns a copy of f without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	skip := make(map[int]bool, len(names))
	for _, n := range names {
		j := f.ColumnIndex(n)
		if j < 0 {
			return nil, fmt.Errorf("data: no column %q", n)
		}
		skip[j] = true
	}
	keep := make([]int, 0, len(f.Columns)-len(skip))
	cols := make([]string, 0, len(f.Columns)-len(skip))
	for j, c := range f.Columns {
		if !skip[j] {
			keep = append(keep, j)
			cols = append(cols, c)
		}
	}
	rows := make([][]float64, len(f.Rows))
	for i, row := range f.Rows {
		r := make([]float64, len(keep))
		for k, j := range keep {
			r[k] = row[j]
		}
		rows[i] = r
	}
	return &Frame{Index: f.Index, Columns: cols, Rows: rows}, nil
}

// Clone deep-copies the row data.
func (f *Frame) Clone() *Frame {
	rows := make([][]float64, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = append([]float64(nil), row...)
	}
	return &Frame{
		Index:   append([]time.Time(nil), f.Index...),
		Columns: append([]string(nil), f.Columns...),
		Rows:    rows,
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
