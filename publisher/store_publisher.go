package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/logger"
	"github.com/kbukum/techdocs/observability"
)

const defaultContentType = "application/octet-stream"

// StoreOptions tunes a StorePublisher.
type StoreOptions struct {
	// Concurrency bounds parallel uploads per publish. Values below 1 mean 1.
	Concurrency int
	Logger      *logger.Logger
	Metrics     *observability.PublisherMetrics
}

// StorePublisher implements Publisher over an ObjectStore. Backend packages
// embed it and add their own identity accessors.
type StorePublisher struct {
	backend     Type
	store       ObjectStore
	concurrency int
	log         *logger.Logger
	metrics     *observability.PublisherMetrics
}

var (
	_ Publisher   = (*StorePublisher)(nil)
	_ URLResolver = (*StorePublisher)(nil)
)

// NewStorePublisher binds a publisher to a backend type and its store.
func NewStorePublisher(backend Type, store ObjectStore, opts StoreOptions) *StorePublisher {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &StorePublisher{
		backend:     backend,
		store:       store,
		concurrency: max(opts.Concurrency, 1),
		log:         log.WithFields(logger.Fields(logger.FieldBackend, string(backend))),
		metrics:     opts.Metrics,
	}
}

// Backend returns the publisher type.
func (p *StorePublisher) Backend() Type { return p.backend }

// Store returns the underlying object store.
func (p *StorePublisher) Store() ObjectStore { return p.store }

// Close releases the store's resources if it holds any.
func (p *StorePublisher) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type bundleFile struct {
	abs string
	rel string
}

// Publish uploads the bundle under bundleRoot. On a partial failure the
// returned result lists the files that were uploaded alongside the error.
func (p *StorePublisher) Publish(ctx context.Context, bundleRoot, entityKey string) (*PublishResult, error) {
	if err := ValidateEntityKey(entityKey); err != nil {
		return nil, err
	}
	files, err := collectBundle(bundleRoot)
	if err != nil {
		return nil, err
	}

	publishID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, observability.SpanPublish)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBackend, string(p.backend))
	observability.SetSpanAttribute(ctx, observability.AttrEntity, entityKey)
	observability.SetSpanAttribute(ctx, observability.AttrPublishID, publishID)

	log := p.log.WithFields(logger.Fields(
		logger.FieldEntity, entityKey,
		logger.FieldPublishID, publishID,
	))
	if len(files) == 0 {
		log.Warn("bundle contains no files", logger.Fields(logger.FieldPath, bundleRoot))
	}
	log.Debug("publishing bundle", logger.Fields(logger.FieldFiles, len(files)))

	start := time.Now()
	var (
		mu       sync.Mutex
		uploaded []string
		failed   []string
		causes   []error
	)

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, f := range files {
		g.Go(func() error {
			err := ValidateRelativePath(f.rel)
			if err == nil {
				err = ctx.Err()
			}
			if err == nil {
				err = p.upload(ctx, f, objectKey(entityKey, f.rel))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, f.rel)
				causes = append(causes, fmt.Errorf("%s: %w", f.rel, err))
				log.Warn("upload failed", logger.Fields(logger.FieldPath, f.rel, logger.FieldError, err.Error()))
				return nil
			}
			uploaded = append(uploaded, f.rel)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(uploaded)
	slices.Sort(failed)
	elapsed := time.Since(start)
	p.metrics.RecordPublish(ctx, string(p.backend), len(uploaded), len(failed), elapsed)
	observability.SetSpanAttribute(ctx, observability.AttrFiles, len(uploaded))

	result := &PublishResult{Entity: entityKey, Files: uploaded}
	if len(failed) > 0 {
		observability.SetSpanAttribute(ctx, observability.AttrFailed, failed)
		perr := apperrors.PartialPublish(string(p.backend), entityKey, failed, errors.Join(causes...))
		observability.SetSpanError(ctx, perr)
		log.Error("publish incomplete", logger.Fields(
			logger.FieldFiles, len(uploaded),
			"failed", len(failed),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		return result, perr
	}

	log.Info("published bundle", logger.Fields(
		logger.FieldFiles, len(uploaded),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return result, nil
}

func (p *StorePublisher) upload(ctx context.Context, f bundleFile, key string) error {
	file, err := os.Open(f.abs)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck // read-only handle
	return p.store.Put(ctx, key, file, contentType(f.abs))
}

// Fetch returns one stored file of an entity.
func (p *StorePublisher) Fetch(ctx context.Context, entityKey, relativePath string) (io.ReadCloser, error) {
	if err := ValidateEntityKey(entityKey); err != nil {
		return nil, err
	}
	if err := ValidateRelativePath(relativePath); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanFetch)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBackend, string(p.backend))
	observability.SetSpanAttribute(ctx, observability.AttrEntity, entityKey)
	observability.SetSpanAttribute(ctx, observability.AttrPath, relativePath)

	key := objectKey(entityKey, relativePath)
	rc, err := p.store.Get(ctx, key)
	switch {
	case err == nil:
		p.metrics.RecordFetch(ctx, string(p.backend), "ok")
		return rc, nil
	case errors.Is(err, ErrObjectNotFound):
		p.metrics.RecordFetch(ctx, string(p.backend), "not_found")
		return nil, apperrors.NotFound("file", key).WithCause(err)
	default:
		p.metrics.RecordFetch(ctx, string(p.backend), "error")
		observability.SetSpanError(ctx, err)
		p.log.Warn("fetch failed", logger.Fields(
			logger.FieldEntity, entityKey,
			logger.FieldPath, relativePath,
			logger.FieldError, err.Error(),
		))
		return nil, apperrors.Backend(string(p.backend), "fetch", err).
			WithDetail("entity", entityKey).
			WithDetail("path", relativePath)
	}
}

// ListFiles yields the relative paths stored for an entity. Each range over
// the returned sequence lists the store again.
func (p *StorePublisher) ListFiles(ctx context.Context, entityKey string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := ValidateEntityKey(entityKey); err != nil {
			yield("", err)
			return
		}

		ctx, span := observability.StartSpan(ctx, observability.SpanListFiles)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrBackend, string(p.backend))
		observability.SetSpanAttribute(ctx, observability.AttrEntity, entityKey)

		prefix := entityPrefix(entityKey)
		for key, err := range p.store.List(ctx, prefix) {
			if err != nil {
				observability.SetSpanError(ctx, err)
				yield("", apperrors.Backend(string(p.backend), "list", err).WithDetail("entity", entityKey))
				return
			}
			rel := strings.TrimPrefix(key, prefix)
			if rel == "" || rel == key {
				continue
			}
			if !yield(rel, nil) {
				return
			}
		}
	}
}

// CheckReadiness probes the store. Failures, including panics inside the
// store client, are reported as a not-ready Readiness.
func (p *StorePublisher) CheckReadiness(ctx context.Context) (r Readiness) {
	ctx, span := observability.StartSpan(ctx, observability.SpanReadiness)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("readiness check panicked: %v", rec)
			r = Readiness{Backend: p.backend, Reason: err.Error(), Cause: err}
		}
		if !r.Ready {
			observability.SetSpanError(ctx, r.Cause)
			p.log.Warn("publisher not ready", logger.Fields("reason", r.Reason))
		}
	}()

	if err := p.store.Check(ctx); err != nil {
		return Readiness{Backend: p.backend, Reason: err.Error(), Cause: err}
	}
	return Readiness{Backend: p.backend, Ready: true}
}

// DocsURL returns the URL under which an entity's bundle is served.
func (p *StorePublisher) DocsURL(ctx context.Context, entityKey string) (string, error) {
	if err := ValidateEntityKey(entityKey); err != nil {
		return "", err
	}
	u, err := p.store.URL(ctx, entityPrefix(entityKey))
	if err != nil {
		return "", apperrors.Backend(string(p.backend), "url", err).WithDetail("entity", entityKey)
	}
	return u, nil
}

// collectBundle lists the regular files under root with slash-separated
// relative paths. Names that cannot be fetched back, such as ones holding a
// backslash, are kept here and fail individually during Publish.
func collectBundle(root string) ([]bundleFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperrors.InvalidInput("bundleRoot", "bundle directory is not readable").
			WithDetail("path", root).WithCause(err)
	}
	if !info.IsDir() {
		return nil, apperrors.InvalidInput("bundleRoot", "bundle root is not a directory").
			WithDetail("path", root)
	}

	var files []bundleFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, bundleFile{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, apperrors.InvalidInput("bundleRoot", "bundle directory could not be walked").
			WithDetail("path", root).WithCause(err)
	}
	return files, nil
}

// contentType resolves a MIME type from the extension, then by sniffing.
func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return defaultContentType
	}
	return m.String()
}
