package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/techdocs/publisher"
)

// Object is a stored object's data and metadata.
type Object struct {
	Data        []byte
	ContentType string
	ModTime     time.Time
}

// Store is an in-memory publisher.ObjectStore. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	objects  map[string]*Object
	putErrs  map[string]error
	getErr   error
	listErr  error
	checkErr error
	puts     int
	closed   bool

	putDelay time.Duration
	inFlight int
	peak     int
}

var _ publisher.ObjectStore = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		objects: make(map[string]*Object),
		putErrs: make(map[string]error),
	}
}

// FailPut makes every Put to key fail with err.
func (s *Store) FailPut(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErrs[key] = err
}

// SetGetError makes every Get fail with err. Nil clears it.
func (s *Store) SetGetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// SetListError makes List yield err after no keys. Nil clears it.
func (s *Store) SetListError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// SetCheckError makes Check fail with err. Nil clears it.
func (s *Store) SetCheckError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkErr = err
}

// SetPutDelay makes every Put hold for d before storing, so concurrent
// uploads overlap.
func (s *Store) SetPutDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putDelay = d
}

// PeakPuts returns the highest number of Put calls seen in flight at once.
func (s *Store) PeakPuts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peak
}

// Puts returns the number of successful Put calls.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Object returns a copy of the object at key.
func (s *Store) Object(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return Object{}, false
	}
	cp := *o
	cp.Data = append([]byte(nil), o.Data...)
	return cp, true
}

// Keys returns every stored key, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops all objects and injected failures.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string]*Object)
	s.putErrs = make(map[string]error)
	s.getErr, s.listErr, s.checkErr = nil, nil, nil
	s.puts, s.peak, s.putDelay = 0, 0, 0
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close marks the store closed. Later calls still work so tests can inspect it.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Put stores body under key.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.inFlight++
	s.peak = max(s.peak, s.inFlight)
	delay := s.putDelay
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putErrs[key]; err != nil {
		return err
	}
	s.objects[key] = &Object{Data: data, ContentType: contentType, ModTime: time.Now()}
	s.puts++
	return nil
}

// Get opens the object at key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	o, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", publisher.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), o.Data...))), nil
}

// List yields the keys under prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.RLock()
		listErr := s.listErr
		var keys []string
		for k := range s.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		s.mu.RUnlock()

		if listErr != nil {
			yield("", listErr)
			return
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(k, nil) {
				return
			}
		}
	}
}

// Check returns the injected check error, if any.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkErr
}

// URL returns a mem:// link to key.
func (s *Store) URL(_ context.Context, key string) (string, error) {
	return "mem://" + key, nil
}
