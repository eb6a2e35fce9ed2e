package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiresEntries(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "rule:a", []byte("A"), 50*time.Millisecond))
	require.NoError(t, store.Set(ctx, "forever", []byte("F"), 0))

	got, ok, err := store.Get(ctx, "rule:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("A"), got)

	require.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "rule:a")
		return !ok
	}, time.Second, 10*time.Millisecond, "entry should expire after its ttl")

	_, ok, _ = store.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryHitsDoNotExtendTTL(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 200*time.Millisecond))

	time.Sleep(100 * time.Millisecond)
	_, ok, _ := store.Get(ctx, "k")
	require.True(t, ok)

	time.Sleep(140 * time.Millisecond)
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok, "a hit at 100ms must not push expiry past 200ms")
}

func TestMemoryCopiesValues(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'

	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryRunEvictsAndDelete(t *testing.T) {
	store := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 20*time.Millisecond))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Hour))

	require.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, store.Delete(ctx, "b", "missing"))
	assert.Equal(t, 1, store.Len())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%4))
			for j := 0; j < 100; j++ {
				_ = store.Set(ctx, key, []byte{byte(j)}, time.Minute)
				_, _, _ = store.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, store.Len())
}

func TestJSONHelpers(t *testing.T) {
	store := NewMemory()
	c := NewJSON(store, time.Minute)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var dst payload
	ok, err := c.GetJSON(ctx, "p", &dst)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetJSON(ctx, "p", payload{Name: "Mjólkursamsalan"}))
	ok, err = c.GetJSON(ctx, "p", &dst)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mjólkursamsalan", dst.Name)

	require.NoError(t, store.Set(ctx, "broken", []byte("{"), time.Minute))
	_, err = c.GetJSON(ctx, "broken", &dst)
	require.Error(t, err)

	var nilCache *JSON
	ok, err = nilCache.GetJSON(ctx, "p", &dst)
	require.NoError(t, err)
	assert.False(t, ok)
}
