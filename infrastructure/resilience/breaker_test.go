package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerSetDoRunsFunctionThroughNamedBreaker(t *testing.T) {
	set := NewBreakerSet(nil, "documents")

	result, err := set.Do(context.Background(), "documents", func() (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestBreakerSetDoUnknownNamePassesThrough(t *testing.T) {
	set := NewBreakerSet(nil, "documents")

	result, err := set.Do(context.Background(), "not_registered", func() (interface{}, error) {
		return "ran anyway", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ran anyway", result)
}

func TestBreakerSetDoTripsAfterConsecutiveFailures(t *testing.T) {
	set := NewBreakerSet(nil, "search")
	failing := func() (interface{}, error) { return nil, errors.New("backend down") }

	for i := 0; i < 5; i++ {
		_, err := set.Do(context.Background(), "search", failing)
		assert.Error(t, err)
	}

	_, err := set.Do(context.Background(), "search", func() (interface{}, error) {
		t.Fatal("breaker should be open and must not invoke fn")
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
