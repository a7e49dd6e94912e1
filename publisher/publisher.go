package publisher

import (
	"context"
	"errors"
	"io"
	"iter"
)

// ErrObjectNotFound is returned by ObjectStore implementations when a key
// does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Publisher persists documentation bundles and serves their files back.
// Implementations are immutable after construction and safe for concurrent use.
type Publisher interface {
	// Publish uploads every regular file under bundleRoot to the namespace of
	// entityKey, overwriting existing files. Each file is stored atomically;
	// the bundle as a whole is not. When some files fail the call returns a
	// PARTIAL_PUBLISH error listing them and leaves uploaded files in place.
	Publish(ctx context.Context, bundleRoot, entityKey string) (*PublishResult, error)

	// Fetch returns the stored bytes of one file of an entity.
	// The caller is responsible for closing the returned ReadCloser.
	Fetch(ctx context.Context, entityKey, relativePath string) (io.ReadCloser, error)

	// ListFiles yields the relative path of every file stored for an entity.
	// The sequence is lazy and can be ranged over again to re-list. It is
	// empty for an entity that was never published.
	ListFiles(ctx context.Context, entityKey string) iter.Seq2[string, error]

	// CheckReadiness verifies the backend is reachable and usable with the
	// configured credentials. It never returns an error value.
	CheckReadiness(ctx context.Context) Readiness

	// Backend returns the publisher type this instance is bound to.
	Backend() Type
}

// URLResolver is implemented by publishers that can link to published docs.
type URLResolver interface {
	// DocsURL returns the URL under which the entity's bundle is reachable.
	DocsURL(ctx context.Context, entityKey string) (string, error)
}

// PublishResult describes a completed (or partially completed) publish.
type PublishResult struct {
	// Entity is the entity key the bundle was published under.
	Entity string
	// Files holds the relative paths that were uploaded, sorted.
	Files []string
}

// Readiness is the structured outcome of a readiness check.
type Readiness struct {
	Backend Type
	Ready   bool
	// Reason explains why the backend is not ready. Empty when Ready.
	Reason string
	Cause  error
}

// ObjectStore is the narrow storage contract a backend client satisfies.
// Keys are slash-separated and already validated by the caller.
type ObjectStore interface {
	// Put stores body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get opens the object at key. Missing keys yield ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List yields every key that starts with prefix.
	List(ctx context.Context, prefix string) iter.Seq2[string, error]

	// Check verifies the store is reachable and writable without mutating
	// published content.
	Check(ctx context.Context) error

	// URL returns a link to the object or prefix at key.
	URL(ctx context.Context, key string) (string, error)
}

// Collect drains a ListFiles sequence into a slice.
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var out []string
	for p, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}
