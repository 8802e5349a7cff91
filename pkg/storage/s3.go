package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Insecure  bool
}

// ObjectStore talks to any S3-compatible endpoint. Google Cloud Storage
// is reached through its interoperability endpoint with HMAC keys, so
// gs:// and s3:// URIs share this implementation.
type ObjectStore struct {
	Endpoint string
	Client   *minio.Client
}

// NewObjectStore builds a client. Without static keys the credentials
// come from the AWS/MinIO environment variables or the shared AWS
// credentials file, in that order. The GCS metadata server is not
// consulted: gs:// access needs HMAC keys.
func NewObjectStore(cfg S3Config) (*ObjectStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
		})
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &ObjectStore{
		Endpoint: cfg.Endpoint,
		Client:   client,
	}, nil
}

func (s *ObjectStore) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	if s == nil || s.Client == nil {
		return nil, ErrNotInitialized
	}
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	obj, err := s.Client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", uri, translate(err))
	}
	// GetObject is lazy; Stat surfaces a missing key or bad credentials now
	// instead of at the first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("get object %s: %w", uri, translate(err))
	}
	return obj, nil
}

func (s *ObjectStore) Put(ctx context.Context, uri string, r io.Reader, size int64, opts PutOptions) error {
	if s == nil || s.Client == nil {
		return ErrNotInitialized
	}
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.Client.PutObject(
		ctx,
		loc.Bucket,
		loc.Key,
		r,
		size,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: opts.Metadata,
		},
	)
	if err != nil {
		return fmt.Errorf("put object %s: %w", uri, translate(err))
	}
	return nil
}

func translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
