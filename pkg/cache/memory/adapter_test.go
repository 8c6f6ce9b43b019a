package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](0)

	require.NoError(t, adapter.Set(ctx, "a", 1))
	require.NoError(t, adapter.Set(ctx, "a", 2))

	got, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](0)

	now := time.Now().UTC()
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "a", 1))

	// Even years later the entry must survive.
	now = now.Add(24 * 365 * time.Hour)

	got, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got)

	ok, err = adapter.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNegativeTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](-time.Second)

	now := time.Now().UTC()
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "a", 1))
	now = now.Add(time.Hour)

	_, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExpiryEvictsOnGet(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](time.Second)

	now := time.Now().UTC()
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "a", 1))

	now = now.Add(1500 * time.Millisecond)

	_, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "entry past TTL must be absent")

	// Eviction is a side effect of the read.
	ok, err = adapter.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// A fresh entry is readable immediately.
	require.NoError(t, adapter.Set(ctx, "b", 2))
	got, ok, err := adapter.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestExpiryEvictsOnContains(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[string](time.Second)

	now := time.Now().UTC()
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "a", "x"))
	now = now.Add(2 * time.Second)

	ok, err := adapter.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryReadableWithinTTL(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[string](time.Minute)

	require.NoError(t, adapter.Set(ctx, "a", "x"))

	got, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](0)

	require.NoError(t, adapter.Set(ctx, "a", 1))

	removed, err := adapter.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = adapter.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed, "deleting an absent key is a no-op")

	_, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteExpiredReportsAbsent(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](time.Second)

	now := time.Now().UTC()
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "a", 1))
	now = now.Add(2 * time.Second)

	removed, err := adapter.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed, "an expired entry is not a live removal")
}

// A Set that lands between a reader's expiry decision and its eviction
// must survive: the eviction may only remove the entry it judged expired.
func TestOverwriteDuringExpiryEvictionSurvives(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](time.Second)

	base := time.Now().UTC()
	var (
		mu    sync.Mutex
		clock = base
		gate  chan struct{}
	)
	entered := make(chan struct{})
	adapter.now = func() time.Time {
		mu.Lock()
		g := gate
		gate = nil
		c := clock
		mu.Unlock()
		if g != nil {
			close(entered)
			<-g
			mu.Lock()
			c = clock
			mu.Unlock()
		}
		return c
	}

	require.NoError(t, adapter.Set(ctx, "a", 1))

	// Advance past the TTL and stall the next expiry evaluation.
	resume := make(chan struct{})
	mu.Lock()
	clock = base.Add(2 * time.Second)
	gate = resume
	mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = adapter.Get(ctx, "a")
	}()

	// The stalled reader has judged the old entry expired; overwrite the
	// key with a fresh timestamp before it gets to evict.
	<-entered
	require.NoError(t, adapter.Set(ctx, "a", 2))
	close(resume)
	<-done

	got, ok, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok, "fresh overwrite must survive the stale eviction")
	assert.Equal(t, 2, got)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	adapter := NewAdapter[int](time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := strconv.Itoa(n % 4)
			for j := 0; j < 200; j++ {
				_ = adapter.Set(ctx, key, j)
				_, _, _ = adapter.Get(ctx, key)
				_, _ = adapter.Contains(ctx, key)
				if j%10 == 0 {
					_, _ = adapter.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestSetEmptyKey(t *testing.T) {
	adapter := NewAdapter[int](0)

	err := adapter.Set(context.Background(), "", 1)
	require.ErrorIs(t, err, ErrEmptyKey)
}
