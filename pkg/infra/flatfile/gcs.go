package flatfile

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// GCSStorage keeps files as objects in a Cloud Storage bucket
type GCSStorage struct {
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSStorage creates a Storage writing objects "<prefix>/<name>" into bucket
func NewGCSStorage(client *storage.Client, bucket, prefix string) *GCSStorage {
	return &GCSStorage{
		bucket: client.Bucket(bucket),
		prefix: prefix,
	}
}

func (s *GCSStorage) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Read implements Storage
func (s *GCSStorage) Read(ctx context.Context, name string) ([]byte, bool, error) {
	obj := s.objectName(name)

	r, err := s.bucket.Object(obj).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, goerr.Wrap(err, "failed to open object", goerr.V("object", obj))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to read object", goerr.V("object", obj))
	}
	return data, true, nil
}

// Write implements Storage. An object only becomes visible when the writer is closed successfully.
func (s *GCSStorage) Write(ctx context.Context, name string, data []byte) error {
	obj := s.objectName(name)

	// Cancelling the context before Close aborts the upload
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(obj).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write(data); err != nil {
		cancel()
		return goerr.Wrap(err, "failed to write object", goerr.V("object", obj))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("object", obj))
	}
	return nil
}
