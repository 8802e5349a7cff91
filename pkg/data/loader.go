package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/shankar-dh/Timeseries/pkg/storage"
)

var (
	ErrSchemaMismatch = errors.New("data: column count does not match schema")
	ErrNoRows         = errors.New("data: no data rows")
)

type csvOptions struct {
	comma rune
}

// CSVOption functional config for LoadCSV
type CSVOption func(*csvOptions)

func WithDelimiter(r rune) CSVOption { return func(o *csvOptions) { o.comma = r } }

// LoadCSV reads a delimited stream whose first line is a header. The header
// text is ignored: columns are named positionally from schema, after
// checking that the file has exactly len(schema) columns.
func LoadCSV(r io.Reader, schema Schema, opts ...CSVOption) (*Table, error) {
	o := csvOptions{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = o.comma
	// Ragged rows are reported by the reader itself once the header fixes
	// the field count.
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(schema) {
		return nil, fmt.Errorf("%w: expected %d columns, file has %d", ErrSchemaMismatch, len(schema), len(header))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	return &Table{
		Columns: append([]string(nil), schema...),
		Records: records,
	}, nil
}

// Fetch loads a CSV object from the store.
func Fetch(ctx context.Context, store storage.Store, uri string, schema Schema, opts ...CSVOption) (*Table, error) {
	rc, err := store.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := LoadCSV(rc, schema, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return t, nil
}
