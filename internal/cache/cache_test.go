package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (i item) CacheID() string { return i.ID }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingFetcher struct {
	calls int
	items []item
	err   error
}

func (f *countingFetcher) Fetch(context.Context) ([]item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newResource(t *testing.T, store Store[item]) (*Resource[item], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
	r := New[item]("locations", store, Config{Now: clock.Now, Logger: zerolog.Nop()})
	return r, clock
}

func TestResource_Get_TTLBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("just before expiry returns cached", func(t *testing.T) {
		r, clock := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "L1"}}}

		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)

		clock.Advance(DefaultTTL - time.Millisecond)
		got, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, f.calls)
		assert.Equal(t, []item{{ID: "L1"}}, got)
	})

	t.Run("just after expiry refetches", func(t *testing.T) {
		r, clock := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "L1"}}}

		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)

		clock.Advance(DefaultTTL + time.Millisecond)
		f.items = []item{{ID: "L2"}}
		got, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, f.calls)
		assert.Equal(t, []item{{ID: "L2"}}, got)
	})

	t.Run("refresh bypasses a valid cache", func(t *testing.T) {
		r, _ := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "L1"}}}

		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)
		_, err = r.Get(ctx, AllKey, true, f.Fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, f.calls)
	})
}

func TestResource_Get_TwoCallsShareCollection(t *testing.T) {
	ctx := context.Background()
	r, _ := newResource(t, nil)
	f := &countingFetcher{items: []item{{ID: "L1"}, {ID: "L2"}}}

	first, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	second, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	require.Len(t, second, 2)
	assert.Same(t, &first[0], &second[0])
}

func TestResource_Get_EmptyCollectionIsCached(t *testing.T) {
	ctx := context.Background()
	r, _ := newResource(t, nil)
	f := &countingFetcher{}

	got, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, err = r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestResource_Get_FailureKeepsLastKnownGood(t *testing.T) {
	ctx := context.Background()
	r, clock := newResource(t, nil)
	f := &countingFetcher{items: []item{{ID: "L1"}}}

	_, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)

	boom := errors.New("backend down")
	f.err = boom
	_, err = r.Get(ctx, AllKey, true, f.Fetch)
	assert.ErrorIs(t, err, boom)

	got, ok := r.Peek(ctx, AllKey)
	require.True(t, ok)
	assert.Equal(t, []item{{ID: "L1"}}, got)

	clock.Advance(DefaultTTL)
	_, ok = r.Peek(ctx, AllKey)
	assert.False(t, ok)
	_, err = r.Get(ctx, AllKey, false, f.Fetch)
	assert.ErrorIs(t, err, boom)
}

func TestResource_Mutations(t *testing.T) {
	ctx := context.Background()

	t.Run("Add seeds an empty cache", func(t *testing.T) {
		r, _ := newResource(t, nil)
		r.Add(ctx, AllKey, item{ID: "N"})
		got, ok := r.Peek(ctx, AllKey)
		require.True(t, ok)
		assert.Equal(t, []item{{ID: "N"}}, got)
	})

	t.Run("Add prepends and restamps", func(t *testing.T) {
		r, clock := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "A"}, {ID: "B"}}}
		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		r.Add(ctx, AllKey, item{ID: "N"})
		clock.Advance(20 * time.Minute)

		got, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, f.calls)
		assert.Equal(t, []item{{ID: "N"}, {ID: "A"}, {ID: "B"}}, got)
	})

	t.Run("Replace without a cache does not seed", func(t *testing.T) {
		r, _ := newResource(t, nil)
		r.Replace(ctx, "A", item{ID: "A", Name: "new"})
		_, ok := r.Peek(ctx, AllKey)
		assert.False(t, ok)
	})

	t.Run("Replace matches by id and restamps", func(t *testing.T) {
		r, clock := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "A", Name: "old"}, {ID: "B"}}}
		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)

		clock.Advance(DefaultTTL - time.Minute)
		r.Replace(ctx, "A", item{ID: "A", Name: "new"})
		got, ok := r.Peek(ctx, AllKey)
		require.True(t, ok)
		assert.Equal(t, []item{{ID: "A", Name: "new"}, {ID: "B"}}, got)

		clock.Advance(2 * time.Minute)
		_, ok = r.Peek(ctx, AllKey)
		assert.True(t, ok)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("Remove filters the item", func(t *testing.T) {
		r, _ := newResource(t, nil)
		f := &countingFetcher{items: []item{{ID: "A"}, {ID: "B"}}}
		_, err := r.Get(ctx, AllKey, false, f.Fetch)
		require.NoError(t, err)

		r.Remove(ctx, "A")
		got, ok := r.Peek(ctx, AllKey)
		require.True(t, ok)
		assert.Equal(t, []item{{ID: "B"}}, got)
	})

	t.Run("Replace and Remove sweep every bucket", func(t *testing.T) {
		r, _ := newResource(t, nil)
		doctors := &countingFetcher{items: []item{{ID: "U1"}, {ID: "U2"}}}
		admins := &countingFetcher{items: []item{{ID: "U1"}, {ID: "U3"}}}
		_, err := r.Get(ctx, "DOCTOR", false, doctors.Fetch)
		require.NoError(t, err)
		_, err = r.Get(ctx, "ADMIN", false, admins.Fetch)
		require.NoError(t, err)

		r.Replace(ctx, "U1", item{ID: "U1", Name: "renamed"})
		d, _ := r.Peek(ctx, "DOCTOR")
		a, _ := r.Peek(ctx, "ADMIN")
		assert.Equal(t, "renamed", d[0].Name)
		assert.Equal(t, "renamed", a[0].Name)

		r.Remove(ctx, "U1")
		d, _ = r.Peek(ctx, "DOCTOR")
		a, _ = r.Peek(ctx, "ADMIN")
		assert.Equal(t, []item{{ID: "U2"}}, d)
		assert.Equal(t, []item{{ID: "U3"}}, a)
	})

	t.Run("Clear drops all buckets", func(t *testing.T) {
		r, _ := newResource(t, nil)
		r.Add(ctx, "DOCTOR", item{ID: "U1"})
		r.Add(ctx, "ADMIN", item{ID: "U2"})
		require.NoError(t, r.Clear(ctx))
		_, ok := r.Peek(ctx, "DOCTOR")
		assert.False(t, ok)
		_, ok = r.Peek(ctx, "ADMIN")
		assert.False(t, ok)
	})
}

func TestResource_RedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore[item](client, "clinicdesk:locations")
	r, clock := newResource(t, store)
	f := &countingFetcher{items: []item{{ID: "L1", Name: "Main"}}}

	_, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	assert.True(t, mr.Exists("clinicdesk:locations:all"))

	// a second process sharing the store sees the same entry
	other := New[item]("locations", NewRedisStore[item](client, "clinicdesk:locations"), Config{Now: clock.Now, Logger: zerolog.Nop()})
	got, err := other.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, []item{{ID: "L1", Name: "Main"}}, got)

	r.Add(ctx, AllKey, item{ID: "L0"})
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{AllKey}, keys)

	clock.Advance(DefaultTTL + time.Millisecond)
	_, ok := other.Peek(ctx, AllKey)
	assert.False(t, ok)

	require.NoError(t, r.Clear(ctx))
	assert.False(t, mr.Exists("clinicdesk:locations:all"))
}

func TestResource_RedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r, _ := newResource(t, NewRedisStore[item](client, "p"))
	mr.Close()

	f := &countingFetcher{items: []item{{ID: "L1"}}}
	got, err := r.Get(ctx, AllKey, false, f.Fetch)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "L1"}}, got)
	assert.Error(t, r.Clear(ctx))
}
