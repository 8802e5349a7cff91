// Package storage reads and writes whole objects addressed by URI.
//
// Supported schemes:
//
//	gs://bucket/key, s3://bucket/key   S3-compatible object storage
//	file:///abs/path, /abs/path        local filesystem
//	mem://bucket/key                   in-process map (tests)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrNotFound       = errors.New("storage: object not found")
	ErrInvalidURI     = errors.New("storage: invalid uri")
	ErrUnknownScheme  = errors.New("storage: no store for scheme")
	ErrNotInitialized = errors.New("storage: client not initialized")
)

// Store is the minimal object API the job needs.
type Store interface {
	// Get opens the object for reading. The caller closes it.
	Get(ctx context.Context, uri string) (io.ReadCloser, error)
	// Put writes size bytes from r to uri, replacing any existing object.
	Put(ctx context.Context, uri string, r io.Reader, size int64, opts PutOptions) error
}

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Location is a parsed object URI.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == "file" {
		return "file://" + l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// ParseURI splits uri into scheme, bucket and key. A bare path is a file
// location.
func ParseURI(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return Location{Scheme: "file", Key: uri}, nil
	}
	if scheme == "file" {
		if rest == "" {
			return Location{}, fmt.Errorf("%w: %q has no path", ErrInvalidURI, uri)
		}
		return Location{Scheme: "file", Key: rest}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("%w: %q needs a bucket and an object key", ErrInvalidURI, uri)
	}
	return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// JoinURI appends name to a directory-like base, the way a path join
// would: exactly one separator between them.
func JoinURI(base, name string) string {
	if base == "" {
		return name
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

// PutFile uploads a local file.
func PutFile(ctx context.Context, s Store, uri, path string, opts PutOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return s.Put(ctx, uri, f, info.Size(), opts)
}

// ReadAll downloads the whole object.
func ReadAll(ctx context.Context, s Store, uri string) ([]byte, error) {
	rc, err := s.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
