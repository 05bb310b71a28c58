// Package cache keeps one materialized value per key, fetched on first access
// and replaced by refetches after writes or reconnects.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/thenoetrevino/ticks/internal/events"
)

// ErrKeyDisabled is returned by blocking reads addressed with an incomplete key
var ErrKeyDisabled = errors.New("cache key is incomplete, fetching is disabled")

// ErrClosed is returned by blocking reads after Close
var ErrClosed = errors.New("cache is closed")

// Key is implemented by every cache key type. ok is false when the key is
// missing a required segment; such keys are never fetched.
type Key interface {
	comparable
	CacheKey() (key string, ok bool)
}

// FetchFunc loads the authoritative value for a key
type FetchFunc[K Key, V any] func(ctx context.Context, key K) (V, error)

// AffectsFunc reports whether a relayed change event concerns a cached key
type AffectsFunc[K Key] func(event events.Event, key K) bool

// Result is what readers observe for a key.
type Result[V any] struct {
	Value     V
	HasValue  bool
	IsLoading bool
	// Err is the outcome of the most recent fetch; a previous value is kept
	// when a refetch fails.
	Err error
}

type entry[K Key, V any] struct {
	key      K
	value    V
	hasValue bool
	err      error
	loading  int

	// generation numbers fetches in start order; applied is the newest
	// generation whose outcome is visible.
	generation uint64
	applied    uint64

	subs map[int]chan Result[V]
}

func (e *entry[K, V]) result() Result[V] {
	return Result[V]{
		Value:     e.value,
		HasValue:  e.hasValue,
		IsLoading: e.loading > 0,
		Err:       e.err,
	}
}

// Store is a keyed cache with at most one value per key string.
// It is safe for concurrent use.
type Store[K Key, V any] struct {
	name    string
	fetch   FetchFunc[K, V]
	affects AffectsFunc[K]
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry[K, V]
	nextSub int
	closed  bool

	group  singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Store
type Option func(*storeOptions)

type storeOptions struct {
	name   string
	logger *slog.Logger
}

// WithName labels the store in log output
func WithName(name string) Option {
	return func(o *storeOptions) {
		o.name = name
	}
}

// WithLogger sets the store's logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewStore creates a store that loads values with fetch.
// affects may be nil when no change event maps to this store's keys.
func NewStore[K Key, V any](fetch FetchFunc[K, V], affects AffectsFunc[K], opts ...Option) *Store[K, V] {
	o := storeOptions{name: "cache", logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store[K, V]{
		name:    o.name,
		fetch:   fetch,
		affects: affects,
		logger:  o.logger,
		entries: make(map[string]*entry[K, V]),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Read returns the current result for key without blocking.
// The first read of a key starts a background fetch. Incomplete keys return
// an empty result and never fetch.
func (s *Store[K, V]) Read(key K) Result[V] {
	ks, ok := key.CacheKey()
	if !ok {
		return Result[V]{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		if e, exists := s.entries[ks]; exists {
			return e.result()
		}
		return Result[V]{}
	}

	e := s.entryLocked(ks, key)
	s.ensureFetchLocked(ks, e)
	return e.result()
}

// ensureFetchLocked starts the first fetch of an entry that has never been
// fetched. The entry is marked loading before the goroutine runs so the
// caller observes it.
func (s *Store[K, V]) ensureFetchLocked(ks string, e *entry[K, V]) {
	if e.hasValue || e.loading > 0 || e.generation > 0 {
		return
	}
	e.loading++
	key := e.key
	s.spawn(func() {
		_, _ = s.shared(ks, key, true)
	})
}

// Load returns the value for key, fetching it if nothing is cached yet.
// Concurrent first loads of a key share one fetch.
func (s *Store[K, V]) Load(ctx context.Context, key K) (V, error) {
	var zero V
	ks, ok := key.CacheKey()
	if !ok {
		return zero, ErrKeyDisabled
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	if e, exists := s.entries[ks]; exists && e.hasValue {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	// The fetch outlives a cancelled caller, so it is tracked for Wait and Close.
	ch := make(chan singleflight.Result, 1)
	s.spawn(func() {
		v, err, shared := s.group.Do(ks, func() (any, error) {
			return s.refresh(s.ctx, ks, key, false)
		})
		ch <- singleflight.Result{Val: v, Err: err, Shared: shared}
	})
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// shared runs a fetch through the singleflight group. preMarked means the
// caller already counted the fetch as loading.
func (s *Store[K, V]) shared(ks string, key K, preMarked bool) (V, error) {
	v, err, _ := s.group.Do(ks, func() (any, error) {
		return s.refresh(s.ctx, ks, key, preMarked)
	})
	if preMarked {
		s.releaseMark(ks)
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate schedules a refetch of key and returns immediately. The cached
// value is replaced when the refetch succeeds.
func (s *Store[K, V]) Invalidate(key K) {
	ks, ok := key.CacheKey()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.entryLocked(ks, key)
	s.spawn(func() {
		_, _ = s.refresh(s.ctx, ks, key, false)
	})
}

// Revalidate refetches key and waits for the outcome. When several refetches
// overlap, the one started last decides the cached value.
func (s *Store[K, V]) Revalidate(ctx context.Context, key K) (V, error) {
	var zero V
	ks, ok := key.CacheKey()
	if !ok {
		return zero, ErrKeyDisabled
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	s.entryLocked(ks, key)
	s.mu.Unlock()

	return s.refresh(ctx, ks, key, false)
}

// RevalidateAll refetches every cached key concurrently and returns the first error.
func (s *Store[K, V]) RevalidateAll(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	keys := make([]K, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.key)
	}
	s.mu.Unlock()

	// A failing key must not cancel the others, so no group context.
	var g errgroup.Group
	g.SetLimit(4)
	for _, key := range keys {
		g.Go(func() error {
			_, err := s.Revalidate(ctx, key)
			return err
		})
	}
	return g.Wait()
}

// HandleEvent reacts to a relayed event: a reconnect refetches everything,
// a change event refetches the cached keys it affects.
func (s *Store[K, V]) HandleEvent(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.EventReconnected:
		s.mu.Lock()
		closed := s.closed
		if !closed {
			s.spawn(func() {
				if err := s.RevalidateAll(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Warn("revalidation after reconnect failed", "cache", s.name, "error", err)
				}
			})
		}
		s.mu.Unlock()
	default:
		if s.affects == nil {
			return
		}
		s.mu.Lock()
		var matched []K
		for _, e := range s.entries {
			if s.affects(event, e.key) {
				matched = append(matched, e.key)
			}
		}
		s.mu.Unlock()

		for _, key := range matched {
			s.logger.Debug("change event invalidates cache entry", "cache", s.name, "event_type", event.Type)
			s.Invalidate(key)
		}
	}
}

// Subscribe returns a channel that receives the result of key whenever it
// changes, starting the first fetch if needed. Only the latest result is
// buffered. Call cancel to unsubscribe.
func (s *Store[K, V]) Subscribe(key K) (<-chan Result[V], func()) {
	ch := make(chan Result[V], 1)
	ks, ok := key.CacheKey()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok || s.closed {
		close(ch)
		return ch, func() {}
	}

	e := s.entryLocked(ks, key)
	id := s.nextSub
	s.nextSub++
	if e.subs == nil {
		e.subs = make(map[int]chan Result[V])
	}
	e.subs[id] = ch
	s.ensureFetchLocked(ks, e)
	if e.hasValue || e.err != nil {
		ch <- e.result()
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, exists := e.subs[id]; exists {
				delete(e.subs, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until every background fetch has finished
func (s *Store[K, V]) Wait() {
	s.wg.Wait()
}

// Close cancels background fetches and closes every subscription channel.
func (s *Store[K, V]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		for id, ch := range e.subs {
			delete(e.subs, id)
			close(ch)
		}
	}
}

// refresh fetches key and applies the outcome unless a newer fetch already has.
func (s *Store[K, V]) refresh(ctx context.Context, ks string, key K, preMarked bool) (V, error) {
	s.mu.Lock()
	e := s.entryLocked(ks, key)
	e.generation++
	gen := e.generation
	if !preMarked {
		e.loading++
	}
	s.publishLocked(e)
	s.mu.Unlock()

	v, err := s.fetch(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !preMarked {
		e.loading--
	}

	if gen <= e.applied {
		// A newer fetch already landed.
		s.logger.Debug("discarding superseded fetch", "cache", s.name, "key", ks)
		if err != nil {
			return v, err
		}
		return e.value, nil
	}

	e.applied = gen
	if err != nil {
		e.err = err
		s.publishLocked(e)
		s.logger.Debug("cache fetch failed", "cache", s.name, "key", ks, "error", err)
		return v, err
	}

	e.value = v
	e.hasValue = true
	e.err = nil
	s.publishLocked(e)
	return v, nil
}

func (s *Store[K, V]) releaseMark(ks string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[ks]; ok && e.loading > 0 {
		e.loading--
		s.publishLocked(e)
	}
}

func (s *Store[K, V]) entryLocked(ks string, key K) *entry[K, V] {
	e, ok := s.entries[ks]
	if !ok {
		e = &entry[K, V]{key: key}
		s.entries[ks] = e
	}
	return e
}

// publishLocked delivers the entry's result to subscribers, replacing any
// result they have not consumed yet.
func (s *Store[K, V]) publishLocked(e *entry[K, V]) {
	res := e.result()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- res
	}
}

// spawn runs fn in the background; callers hold s.mu and have checked closed.
func (s *Store[K, V]) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}
