package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kbukum/techdocs/publisher"
)

// PublicHost serves objects of public buckets.
const PublicHost = "https://storage.googleapis.com"

// Store implements publisher.ObjectStore over one Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

var _ publisher.ObjectStore = (*Store)(nil)

// NewStore creates a store for bucket. The store owns client and closes it
// on Close.
func NewStore(client *storage.Client, bucket string) *Store {
	return &Store{client: client, bucket: client.Bucket(bucket), name: bucket}
}

// Put streams body into key. The object only becomes visible once the
// writer is closed successfully.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(wctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		// canceling the writer's context abandons the upload
		cancel()
		_ = w.Close()
		return fmt.Errorf("gcs: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalize %s: %w", key, err)
	}
	return nil
}

// Get opens the object at key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, fmt.Errorf("%w: gs://%s/%s", publisher.ErrObjectNotFound, s.name, key)
		}
		return nil, fmt.Errorf("gcs: read %s: %w", key, err)
	}
	return r, nil
}

// List yields the object names under prefix.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		q := &storage.Query{Prefix: prefix}
		if err := q.SetAttrSelection([]string{"Name"}); err != nil {
			yield("", fmt.Errorf("gcs: list %s: %w", prefix, err))
			return
		}
		it := s.bucket.Objects(ctx, q)
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("gcs: list %s: %w", prefix, err))
				return
			}
			if strings.HasSuffix(attrs.Name, "/") {
				continue
			}
			if !yield(attrs.Name, nil) {
				return
			}
		}
	}
}

// Check reads the bucket metadata.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.bucket.Attrs(ctx)
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return fmt.Errorf("gcs: bucket %s does not exist: %w", s.name, err)
	case isPermissionDenied(err):
		return fmt.Errorf("gcs: access denied to bucket %s: %w", s.name, err)
	default:
		return fmt.Errorf("gcs: read bucket %s: %w", s.name, err)
	}
}

// URL returns the public HTTP URL of key.
func (s *Store) URL(_ context.Context, key string) (string, error) {
	return fmt.Sprintf("%s/%s/%s", PublicHost, s.name, key), nil
}

// Close closes the storage client.
func (s *Store) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return true
	}
	return status.Code(err) == codes.NotFound
}

// isObjectNotFound is isNotFound minus a missing bucket, which is a
// backend failure rather than an absent file.
func isObjectNotFound(err error) bool {
	return isNotFound(err) && !errors.Is(err, storage.ErrBucketNotExist)
}

func isPermissionDenied(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusForbidden || gerr.Code == http.StatusUnauthorized) {
		return true
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return true
	}
	return false
}
