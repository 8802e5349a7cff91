package storage

import (
	"context"
	"fmt"
	"io"
)

// Router dispatches each call to the store registered for the URI scheme.
type Router struct {
	stores map[string]Store
}

func NewRouter() *Router {
	return &Router{stores: make(map[string]Store)}
}

// Handle registers s for the given schemes, replacing earlier entries.
func (r *Router) Handle(s Store, schemes ...string) *Router {
	for _, scheme := range schemes {
		r.stores[scheme] = s
	}
	return r
}

func (r *Router) route(uri string) (Store, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	s, ok := r.stores[loc.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownScheme, loc.Scheme)
	}
	return s, nil
}

func (r *Router) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	s, err := r.route(uri)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, uri)
}

func (r *Router) Put(ctx context.Context, uri string, rd io.Reader, size int64, opts PutOptions) error {
	s, err := r.route(uri)
	if err != nil {
		return err
	}
	return s.Put(ctx, uri, rd, size, opts)
}

// Open returns the router the job uses: gs:// and s3:// go to one
// S3-compatible endpoint, file:// to the local disk.
func Open(cfg S3Config) (*Router, error) {
	objects, err := NewObjectStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewRouter().Handle(objects, "gs", "s3").Handle(FileStore{}, "file"), nil
}
