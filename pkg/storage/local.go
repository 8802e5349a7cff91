package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileStore serves file:// URIs and bare paths from the local disk.
type FileStore struct{}

func (FileStore) Get(_ context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(loc.Key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Put writes through a temp file in the target directory and renames it,
// so a failed copy never leaves a truncated object behind.
func (FileStore) Put(_ context.Context, uri string, r io.Reader, _ int64, _ PutOptions) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	dir := filepath.Dir(loc.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(loc.Key)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", uri, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), loc.Key)
}

// MemoryStore keeps objects in a map keyed by the normalized URI.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	puts    []string
}

type memObject struct {
	data []byte
	opts PutOptions
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func (m *MemoryStore) Get(_ context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[loc.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Put(_ context.Context, uri string, r io.Reader, size int64, opts PutOptions) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("put %s: read %d bytes, want %d", uri, len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[loc.String()] = memObject{data: data, opts: opts}
	m.puts = append(m.puts, loc.String())
	return nil
}

// Set stores data without recording a put.
func (m *MemoryStore) Set(uri string, data []byte) {
	loc, err := ParseURI(uri)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[loc.String()] = memObject{data: append([]byte(nil), data...)}
}

// Object returns the stored bytes and options for uri.
func (m *MemoryStore) Object(uri string) ([]byte, PutOptions, bool) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, PutOptions{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[loc.String()]
	return obj.data, obj.opts, ok
}

// Puts lists the URIs written through Put, in order.
func (m *MemoryStore) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}
