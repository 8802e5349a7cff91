package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankar-dh/Timeseries/pkg/storage"
)

var testSchema = Schema{"Date", "Time", "A", "B"}

func TestLoadCSV_RenamesPositionally(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"matching header", "Date,Time,A,B"},
		{"different header", "d,t,x,y"},
		{"reordered header", "B,A,Time,Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.header + "\n2004-03-10,18:00:00,1,2\n2004-03-10,19:00:00,3,4\n"
			tbl, err := LoadCSV(strings.NewReader(in), testSchema)
			require.NoError(t, err)
			assert.Equal(t, []string{"Date", "Time", "A", "B"}, tbl.Columns)
			assert.Equal(t, 2, tbl.Len())
			assert.Equal(t, []string{"2004-03-10", "19:00:00", "3", "4"}, tbl.Records[1])
		})
	}
}

func TestLoadCSV_SchemaMismatch(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("a,b,c\n1,2,3\n"), testSchema)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "expected 4 columns, file has 3")
}

func TestLoadCSV_RaggedRow(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("a,b,c,d\n1,2,3,4\n1,2,3\n"), testSchema)
	assert.Error(t, err)
}

func TestLoadCSV_NoRows(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""), testSchema)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = LoadCSV(strings.NewReader("a,b,c,d\n"), testSchema)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoadCSV_Delimiter(t *testing.T) {
	tbl, err := LoadCSV(strings.NewReader("a;b;c;d\n1;2;3;4\n"), testSchema, WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, tbl.Records[0])
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.Set("gs://b/train.csv", []byte("h1,h2,h3,h4\n1,2,3,4\n"))

	tbl, err := Fetch(ctx, store, "gs://b/train.csv", testSchema)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2, tbl.ColumnIndex("A"))

	_, err = Fetch(ctx, store, "gs://b/missing.csv", testSchema)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFrame_SliceDropColumn(t *testing.T) {
	ts := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	f := &Frame{
		Index:   []time.Time{ts, ts.Add(time.Hour), ts.Add(2 * time.Hour)},
		Columns: []string{"A", "B", "C"},
		Rows:    [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
	}

	s := f.Slice(1, 3)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ts.Add(time.Hour), s.Index[0])

	d, err := f.Drop("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, d.Columns)
	assert.Equal(t, [][]float64{{1, 3}, {4, 6}, {7, 9}}, d.Rows)
	assert.Equal(t, []string{"A", "B", "C"}, f.Columns)

	_, err = f.Drop("Z")
	assert.Error(t, err)

	c, err := f.Column("C")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 9}, c.Values)

	cl := f.Clone()
	cl.Rows[0][0] = 100
	assert.Equal(t, 1.0, f.Rows[0][0])
}
