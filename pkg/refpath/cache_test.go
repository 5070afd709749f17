package refpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetMissReturnsFalse(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	_, ok := c.Get("upload:U1:entry:E1")
	assert.False(t, ok)
}

func TestCachePutThenGetReturnsSegments(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	c.Put("upload:U1:entry:E1", []string{"upload", "U1", "entry", "E1"})

	segments, ok := c.Get("upload:U1:entry:E1")
	require.True(t, ok)
	assert.Equal(t, []string{"upload", "U1", "entry", "E1"}, segments)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c, err := New(4, time.Millisecond)
	require.NoError(t, err)

	c.Put("ref", []string{"a"})
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("ref")
	assert.False(t, ok, "expired entry must not be returned")
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on access")
}

func TestCacheLenReflectsEntryCount(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	c.Put("a", []string{"a"})
	c.Put("b", []string{"b"})

	assert.Equal(t, 2, c.Len())
}

func TestCacheEvictsOldestBeyondSize(t *testing.T) {
	c, err := New(2, time.Minute)
	require.NoError(t, err)

	c.Put("a", []string{"a"})
	c.Put("b", []string{"b"})
	c.Put("c", []string{"c"})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
}
