// Package cache implements the time-boxed read cache shared by every
// directory resource (locations, patients, users by role).
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"clinicdesk/internal/metrics"
)

// DefaultTTL is how long a fetched collection stays valid.
const DefaultTTL = 30 * time.Minute

// AllKey is the bucket used by resources that are not partitioned.
const AllKey = "all"

// Identifiable is implemented by every cached item.
type Identifiable interface {
	CacheID() string
}

// Fetcher loads a full collection from the backend.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Clearer is anything that can drop its cached state.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Config holds construction parameters for a Resource.
type Config struct {
	TTL    time.Duration
	Now    func() time.Time
	Logger zerolog.Logger
}

// Resource is the cache of one resource type. Collections are stored per
// bucket key and are valid all-or-nothing for TTL after their fetch time.
type Resource[T Identifiable] struct {
	name   string
	ttl    time.Duration
	now    func() time.Time
	store  Store[T]
	logger zerolog.Logger

	mu sync.Mutex
}

// New builds a resource cache. A nil store means in-memory.
func New[T Identifiable](name string, store Store[T], cfg Config) *Resource[T] {
	if store == nil {
		store = NewMemoryStore[T]()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resource[T]{
		name:   name,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		store:  store,
		logger: cfg.Logger.With().Str("component", "cache").Str("resource", name).Logger(),
	}
}

// Name returns the resource name.
func (r *Resource[T]) Name() string { return r.name }

// TTL returns the validity window.
func (r *Resource[T]) TTL() time.Duration { return r.ttl }

// Get returns the cached collection for key when it is valid and refresh is
// false. Otherwise it calls fetch, replaces the bucket wholesale and stamps it.
// Fetch errors are returned unmodified and leave the bucket untouched.
func (r *Resource[T]) Get(ctx context.Context, key string, refresh bool, fetch Fetcher[T]) ([]T, error) {
	if !refresh {
		if items, ok := r.Peek(ctx, key); ok {
			metrics.IncCacheLookup(r.name, "hit")
			return items, nil
		}
		metrics.IncCacheLookup(r.name, "miss")
	} else {
		metrics.IncCacheLookup(r.name, "refresh")
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.save(ctx, key, Entry[T]{Items: items, FetchedAt: r.now()})
	return items, nil
}

// Peek returns the bucket only if it is present and within TTL.
func (r *Resource[T]) Peek(ctx context.Context, key string) ([]T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.load(ctx, key)
	if !ok || e.FetchedAt.IsZero() {
		return nil, false
	}
	if r.now().Sub(e.FetchedAt) >= r.ttl {
		return nil, false
	}
	return e.Items, true
}

// Add records a newly created item: prepended when the bucket exists, else
// the bucket is seeded with it. The fetch time is moved to now either way.
func (r *Resource[T]) Add(ctx context.Context, key string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []T{item}
	if e, ok := r.load(ctx, key); ok {
		items = append(items, e.Items...)
	}
	r.save(ctx, key, Entry[T]{Items: items, FetchedAt: r.now()})
}

// Replace swaps the item with the given id in every existing bucket and
// restamps those buckets. Buckets are never seeded.
func (r *Resource[T]) Replace(ctx context.Context, id string, item T) {
	r.sweep(ctx, func(items []T) []T {
		out := make([]T, len(items))
		for i, it := range items {
			if it.CacheID() == id {
				out[i] = item
				continue
			}
			out[i] = it
		}
		return out
	})
}

// Remove drops the item with the given id from every existing bucket and
// restamps those buckets.
func (r *Resource[T]) Remove(ctx context.Context, id string) {
	r.sweep(ctx, func(items []T) []T {
		out := make([]T, 0, len(items))
		for _, it := range items {
			if it.CacheID() != id {
				out = append(out, it)
			}
		}
		return out
	})
}

// Clear drops every bucket.
func (r *Resource[T]) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	r.logger.Debug().Int("buckets", len(keys)).Msg("cache cleared")
	return nil
}

func (r *Resource[T]) sweep(ctx context.Context, fn func([]T) []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys, err := r.store.Keys(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("list cache buckets")
		return
	}
	for _, k := range keys {
		e, ok := r.load(ctx, k)
		if !ok {
			continue
		}
		r.save(ctx, k, Entry[T]{Items: fn(e.Items), FetchedAt: r.now()})
	}
}

// load reports store failures as a miss.
func (r *Resource[T]) load(ctx context.Context, key string) (Entry[T], bool) {
	e, ok, err := r.store.Load(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("load cache entry")
		return Entry[T]{}, false
	}
	if !ok || e.Items == nil {
		return Entry[T]{}, false
	}
	return e, true
}

func (r *Resource[T]) save(ctx context.Context, key string, e Entry[T]) {
	if err := r.store.Save(ctx, key, e); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("save cache entry")
	}
}
