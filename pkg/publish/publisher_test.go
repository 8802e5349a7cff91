package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankar-dh/Timeseries/pkg/storage"
)

type blobModel []byte

func (b blobModel) MarshalBinary() ([]byte, error) { return append([]byte(nil), b...), nil }

type brokenModel struct{}

func (brokenModel) MarshalBinary() ([]byte, error) { return nil, errors.New("boom") }

func eastern(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestVersion(t *testing.T) {
	loc := eastern(t)
	tests := []struct {
		name    string
		instant time.Time
		want    string
	}{
		// EDT, UTC-4
		{"summer", time.Date(2024, 7, 4, 16, 30, 45, 0, time.UTC), "04-07-2024-123045"},
		// EST, UTC-5, crosses midnight backwards
		{"winter", time.Date(2024, 1, 15, 5, 6, 7, 0, time.UTC), "15-01-2024-000607"},
		// first instant after the 2024 spring-forward jump
		{"dst start", time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), "10-03-2024-030000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Version(tt.instant, loc))
		})
	}
	assert.Equal(t, "model_04-07-2024-123045.pkl", ArtifactName("04-07-2024-123045"))
}

func newPublisher(t *testing.T, store storage.Store, modelDir string) (*Publisher, error) {
	fixed := time.Date(2024, 7, 4, 16, 30, 45, 0, time.UTC)
	return New(store, Options{
		ModelDir:   modelDir,
		ArchiveURI: "gs://mlops-data-ie7374/model/",
		Location:   eastern(t),
		Now:        func() time.Time { return fixed },
		TempDir:    t.TempDir(),
		Metadata:   map[string]string{"run-id": "r1"},
	}, hclog.NewNullLogger())
}

func TestPublish_TwoCopies(t *testing.T) {
	store := storage.NewMemoryStore()
	p, err := newPublisher(t, store, "gs://vertex-out/job/model")
	require.NoError(t, err)

	payload := blobModel("forest-bytes")
	res, err := p.Publish(context.Background(), payload)
	require.NoError(t, err)

	first := "gs://vertex-out/job/model/model_04-07-2024-123045.pkl"
	second := "gs://mlops-data-ie7374/model/model_04-07-2024-123045.pkl"
	assert.Equal(t, "04-07-2024-123045", res.Version)
	assert.Equal(t, []string{first, second}, res.URIs)
	assert.Equal(t, []string{first, second}, store.Puts())
	assert.Equal(t, int64(len(payload)), res.Size)

	sum := xxhash.Sum64(payload)
	assert.Equal(t, []uint64{sum, sum}, res.Digests)

	for _, uri := range res.URIs {
		data, opts, ok := store.Object(uri)
		require.True(t, ok, uri)
		assert.Equal(t, []byte(payload), data)
		assert.Equal(t, "r1", opts.Metadata["run-id"])
		assert.Len(t, opts.Metadata["xxhash64"], 16)
	}
}

func TestPublish_RemovesTempFile(t *testing.T) {
	store := storage.NewMemoryStore()
	tmp := t.TempDir()
	p, err := New(store, Options{
		ModelDir:   "gs://out/m/",
		ArchiveURI: "gs://archive/model/",
		Location:   time.UTC,
		TempDir:    tmp,
	}, nil)
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), blobModel("x"))
	require.NoError(t, err)

	left, err := filepath.Glob(filepath.Join(tmp, "*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPublish_MissingModelDir(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := newPublisher(t, store, "")
	assert.ErrorIs(t, err, ErrMissingModelDir)
	assert.Empty(t, store.Puts())
}

func TestPublish_SerializationFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	p, err := newPublisher(t, store, "gs://out/m")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), brokenModel{})
	assert.Error(t, err)
	assert.Empty(t, store.Puts())
}

func TestPublish_UploadFailureStops(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the model dir should be makes the first upload fail
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	archive := storage.NewMemoryStore()
	router := storage.NewRouter().Handle(storage.FileStore{}, "file").Handle(archive, "gs")

	p, err := New(router, Options{
		ModelDir:   "file://" + filepath.Join(blocker, "models"),
		ArchiveURI: "gs://archive/model/",
		Location:   time.UTC,
		TempDir:    t.TempDir(),
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), blobModel("x"))
	assert.Error(t, err)
	assert.Empty(t, archive.Puts())
}
