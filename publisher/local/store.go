package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/techdocs/discovery"
	"github.com/kbukum/techdocs/publisher"
)

const tempPrefix = ".upload-"

// Store implements publisher.ObjectStore over a directory tree. Keys map to
// slash-separated paths below the root.
type Store struct {
	root      string
	discovery discovery.URLDiscovery
}

var _ publisher.ObjectStore = (*Store)(nil)

// NewStore creates a store rooted at root. The directory is not created
// until the first Put.
func NewStore(root string, d discovery.URLDiscovery) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("local: resolve root: %w", err)
	}
	return &Store{root: abs, discovery: d}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("local: key %q escapes root", key)
	}
	return p, nil
}

// Put writes body to a temporary file in the root directory and renames it
// into place, so readers never observe a partially written file. Temporary
// files sit directly under the root, where no entity key can address them.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("local: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("local: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write already failed
		return fmt.Errorf("local: write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck,gosec // chmod already failed
		return fmt.Errorf("local: chmod file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local: close file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("local: rename file: %w", err)
	}
	return nil
}

// Get opens the file at key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", publisher.ErrObjectNotFound, key)
	case err != nil:
		return nil, fmt.Errorf("local: stat file: %w", err)
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("%w: %s is not a file", publisher.ErrObjectNotFound, key)
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", publisher.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("local: open file: %w", err)
	}
	return f, nil
}

// List yields every file key under prefix. A missing directory yields nothing.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		base := ""
		if i := strings.LastIndex(prefix, "/"); i >= 0 {
			base = prefix[:i]
		}
		dir, err := s.path(base)
		if base == "" {
			dir, err = s.root, nil
		}
		if err != nil {
			yield("", err)
			return
		}

		stopped := false
		err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == dir && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(s.root, p)
			if err != nil {
				return err
			}
			if isScratch(rel) {
				return nil
			}
			key := filepath.ToSlash(rel)
			if !strings.HasPrefix(key, prefix) {
				return nil
			}
			if !yield(key, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("local: list files: %w", err))
		}
	}
}

// Check verifies the root is a writable directory. A root that does not
// exist yet is accepted when its nearest existing ancestor is writable,
// since Put creates it.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.root
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("local: %s is not a directory", dir)
			}
			return probeWritable(dir)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("local: stat %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return fmt.Errorf("local: no existing ancestor of %s", s.root)
		}
		dir = parent
	}
}

// isScratch reports whether a root-relative path is one of the store's own
// temporary files. Bundle files always live below an entity directory.
func isScratch(rel string) bool {
	return filepath.Dir(rel) == "." && strings.HasPrefix(rel, tempPrefix)
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, tempPrefix+"probe-*")
	if err != nil {
		return fmt.Errorf("local: %s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()       //nolint:errcheck,gosec // empty probe file
	os.Remove(name) //nolint:errcheck,gosec // best effort
	return nil
}

// URL returns the public URL the docs server exposes key under.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	if s.discovery == nil {
		return "", fmt.Errorf("local: no URL discovery configured")
	}
	base, err := s.discovery.ExternalBaseURL(ctx, publisher.PluginID)
	if err != nil {
		return "", fmt.Errorf("local: resolve %s base URL: %w", publisher.PluginID, err)
	}
	return strings.TrimRight(base, "/") + "/static/docs/" + key, nil
}
