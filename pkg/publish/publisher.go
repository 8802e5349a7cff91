// Package publish writes fitted models to object storage under a
// timestamp-derived version.
package publish

import (
	"bytes"
	"context"
	"encoding"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/shankar-dh/Timeseries/pkg/storage"
)

// VersionLayout renders DD-MM-YYYY-HHMMSS.
const VersionLayout = "02-01-2006-150405"

var ErrMissingModelDir = errors.New("publish: model output directory is not set")

// Version formats t in loc.
func Version(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(VersionLayout)
}

// ArtifactName is the object name of a model version.
func ArtifactName(version string) string {
	return "model_" + version + ".pkl"
}

type Options struct {
	// ModelDir is the base of the first copy. Required.
	ModelDir string
	// ArchiveURI is the base of the second copy. Required.
	ArchiveURI string
	Location   *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// TempDir holds the local serialization; empty means os.TempDir.
	TempDir string
	// Metadata is attached to both uploads.
	Metadata map[string]string
}

type Publisher struct {
	store storage.Store
	opts  Options
	log   hclog.Logger
}

// Result describes one publication.
type Result struct {
	Version string
	// URIs lists the model-dir copy then the archive copy.
	URIs []string
	// Digests are the xxhash64 of each uploaded serialization, same order.
	Digests []uint64
	Size    int64
}

func New(store storage.Store, opts Options, logger hclog.Logger) (*Publisher, error) {
	if opts.ModelDir == "" {
		return nil, ErrMissingModelDir
	}
	if opts.ArchiveURI == "" {
		return nil, errors.New("publish: archive location is not set")
	}
	if opts.Location == nil {
		return nil, errors.New("publish: time zone is not set")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Publisher{store: store, opts: opts, log: logger.Named("publish")}, nil
}

// Publish uploads m twice under one version: first from a local temp file
// into ModelDir, then from a fresh in-memory serialization into ArchiveURI.
// The uploads run one after the other; the first error aborts.
func (p *Publisher) Publish(ctx context.Context, m encoding.BinaryMarshaler) (*Result, error) {
	version := Version(p.opts.Now(), p.opts.Location)
	name := ArtifactName(version)
	res := &Result{Version: version}

	// first copy: serialize to a transient local file, then upload it
	path, digest, size, err := p.writeTemp(m)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	first := storage.JoinURI(p.opts.ModelDir, name)
	if err := storage.PutFile(ctx, p.store, first, path, p.putOptions(digest)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", first, err)
	}
	p.log.Info("model uploaded", "uri", first, "bytes", size, "xxhash64", fmt.Sprintf("%016x", digest))
	res.URIs = append(res.URIs, first)
	res.Digests = append(res.Digests, digest)
	res.Size = size

	// second copy: independent serialization straight to the archive
	blob, err := m.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}
	second := storage.JoinURI(p.opts.ArchiveURI, name)
	digest2 := xxhash.Sum64(blob)
	if err := p.store.Put(ctx, second, bytes.NewReader(blob), int64(len(blob)), p.putOptions(digest2)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", second, err)
	}
	p.log.Info("model uploaded", "uri", second, "bytes", len(blob), "xxhash64", fmt.Sprintf("%016x", digest2))
	if digest2 != digest {
		p.log.Warn("serializations differ", "first", first, "second", second)
	}
	res.URIs = append(res.URIs, second)
	res.Digests = append(res.Digests, digest2)
	return res, nil
}

func (p *Publisher) writeTemp(m encoding.BinaryMarshaler) (path string, digest uint64, size int64, err error) {
	blob, err := m.MarshalBinary()
	if err != nil {
		return "", 0, 0, fmt.Errorf("serialize model: %w", err)
	}
	f, err := os.CreateTemp(p.opts.TempDir, "model-*.pkl")
	if err != nil {
		return "", 0, 0, err
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", 0, 0, fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", 0, 0, err
	}
	p.log.Debug("model serialized", "path", f.Name(), "bytes", len(blob))
	return f.Name(), xxhash.Sum64(blob), int64(len(blob)), nil
}

func (p *Publisher) putOptions(digest uint64) storage.PutOptions {
	meta := make(map[string]string, len(p.opts.Metadata)+1)
	for k, v := range p.opts.Metadata {
		meta[k] = v
	}
	meta["xxhash64"] = fmt.Sprintf("%016x", digest)
	return storage.PutOptions{ContentType: "application/octet-stream", Metadata: meta}
}
