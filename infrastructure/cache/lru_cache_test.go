package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheGetMissReturnsFalse(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	_, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestLRUCacheSetThenGetReturnsValue(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "archive:A1", "payload", 0))

	value, ok := c.Get(context.Background(), "archive:A1")
	require.True(t, ok)
	assert.Equal(t, "payload", value)
}

func TestLRUCacheSetUsesExplicitTTLOverDefault(t *testing.T) {
	c, err := New(4, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "key", "value", 1))
	time.Sleep(1100 * time.Millisecond)

	_, ok := c.Get(context.Background(), "key")
	assert.False(t, ok, "explicit short TTL should override the long default")
}

func TestLRUCacheDeleteRemovesEntry(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set(context.Background(), "key", "value", 0))
	require.NoError(t, c.Delete(context.Background(), "key"))

	_, ok := c.Get(context.Background(), "key")
	assert.False(t, ok)
}
