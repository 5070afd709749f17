package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDevelopment(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("development logger ready") })
}

func TestNewLoggerProduction(t *testing.T) {
	logger, err := NewLogger(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("production logger ready") })
}
