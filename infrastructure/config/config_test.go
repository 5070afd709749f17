package config_test

import (
	"os"
	"testing"

	"graphqueryreader/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		orig, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, orig)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t, "ENVIRONMENT", "SERVER_ADDRESS", "TABLE_NAME", "OFFLOAD_MAX_DEPTH", "SUPABASE_URL")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "graphqueryreader", cfg.DynamoDBTable)
	assert.Equal(t, 12, cfg.Offload.MaxDepth)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsEnvOverrides(t *testing.T) {
	clearEnv(t, "ENVIRONMENT", "SERVER_ADDRESS", "TABLE_NAME", "SUPABASE_URL")
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("SERVER_ADDRESS", ":9090")
	os.Setenv("TABLE_NAME", "custom-table")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, "custom-table", cfg.DynamoDBTable)
}

func TestLoadConfigProductionRequiresSupabaseURL(t *testing.T) {
	clearEnv(t, "ENVIRONMENT", "SUPABASE_URL", "TABLE_NAME")
	os.Setenv("ENVIRONMENT", "production")
	os.Setenv("TABLE_NAME", "prod-table")

	_, err := config.LoadConfig()
	assert.ErrorContains(t, err, "SUPABASE_URL")
}

func TestConfigValidateRejectsNonPositiveMaxDepth(t *testing.T) {
	cfg := &config.Config{
		Environment: "development",
		Offload:     config.OffloadLimits{MaxDepth: 0},
	}
	assert.ErrorContains(t, cfg.Validate(), "OFFLOAD_MAX_DEPTH")
}
