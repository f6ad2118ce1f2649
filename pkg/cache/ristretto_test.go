package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/pkg/types"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(&RistrettoConfig{
		Name:        "test",
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

func TestRistrettoCache(t *testing.T) {
	c := newTestCache(t)

	t.Run("set-and-get", func(t *testing.T) {
		require.True(t, c.Set("fixtures:mostbet", []string{"a", "b"}, time.Hour))
		c.Wait()

		value, found := c.Get("fixtures:mostbet")
		require.True(t, found)
		assert.Equal(t, []string{"a", "b"}, value)
	})

	t.Run("get-missing-key", func(t *testing.T) {
		_, found := c.Get("nonexistent")
		assert.False(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		c.Set("delete-test", "v", time.Hour)
		c.Wait()

		c.Delete("delete-test")

		_, found := c.Get("delete-test")
		assert.False(t, found)
	})

	t.Run("ttl-expiration", func(t *testing.T) {
		c.Set("ttl-test", "v", 200*time.Millisecond)
		c.Wait()

		_, found := c.Get("ttl-test")
		require.True(t, found)

		time.Sleep(1200 * time.Millisecond)

		_, found = c.Get("ttl-test")
		assert.False(t, found)
	})

	t.Run("clear", func(t *testing.T) {
		c.Set("clear-key1", "value1", time.Hour)
		c.Set("clear-key2", "value2", time.Hour)
		c.Wait()

		c.Clear()

		_, found1 := c.Get("clear-key1")
		_, found2 := c.Get("clear-key2")
		assert.False(t, found1)
		assert.False(t, found2)
	})
}

func TestRistrettoCacheCostIsItemCount(t *testing.T) {
	c, err := NewRistrettoCache(&RistrettoConfig{
		Name:        "small",
		NumCounters: 100,
		MaxCost:     4,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	keys := []string{"book:mostbet:1", "book:mostbet:2", "book:melbet:3"}
	for _, key := range keys {
		require.True(t, c.Set(key, types.NewOddsBook(types.SourceMostbet, key), time.Hour))
	}
	c.Wait()

	for _, key := range keys {
		_, found := c.Get(key)
		assert.True(t, found, key)
	}
}

func TestGetAs(t *testing.T) {
	c := newTestCache(t)

	book := types.NewOddsBook(types.SourceMostbet, "1")
	c.Set("book", book, time.Hour)
	c.Set("text", "not a book", time.Hour)
	c.Wait()

	got, ok := GetAs[*types.OddsBook](c, "book")
	require.True(t, ok)
	assert.Same(t, book, got)

	_, ok = GetAs[*types.OddsBook](c, "text")
	assert.False(t, ok)

	_, ok = GetAs[*types.OddsBook](c, "missing")
	assert.False(t, ok)

	_, ok = GetAs[*types.OddsBook](nil, "book")
	assert.False(t, ok)
}
