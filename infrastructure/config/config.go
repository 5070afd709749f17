package config

import (
	"fmt"
	"os"
	"strconv"
)

// OffloadLimits bounds how deep and how wide a single required-tree
// request may traverse before the engine strips results and substitutes
// an __INTERNAL__ reference sentinel (spec.md §4.7).
type OffloadLimits struct {
	// MaxDepth caps recursion depth for a single top-level request.
	MaxDepth int
	// MaxResolveDepth caps how many reference hops Goto may follow.
	MaxResolveDepth int
	// MaxNodeBytes is a serialized-size threshold that is validated and
	// reported on reload; StripIfOversized does not consult it (it strips
	// by max_list_size/max_dict_size).
	MaxNodeBytes int
}

// Config holds all runtime configuration for the query engine.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - user-level queries
	GSI2IndexName string // GSI2 - direct id lookups
	EventBusName  string

	// Raw-file root served (and watched) by the archive file store, and
	// the directory holding schema packages.
	ArchiveFileRoot   string
	SchemaPackageRoot string

	// Supabase access-control endpoint.
	SupabaseURL            string
	SupabaseServiceRoleKey string

	// Tracing collector.
	OTLPCollectorAddr string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool

	// Offload/traversal limits
	Offload OffloadLimits

	// CacheTTLSeconds bounds how long a resolved reference stays in the
	// per-process LRU (infrastructure/cache, built by di.ProvideCache).
	CacheTTLSeconds int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "graphqueryreader")),
		IndexName:     getEnv("INDEX_NAME", "GSI1"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "GSI2"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "graphqueryreader-audit"),

		ArchiveFileRoot:   getEnv("ARCHIVE_FILE_ROOT", "./data/raw"),
		SchemaPackageRoot: getEnv("SCHEMA_PACKAGE_ROOT", "./data/packages"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		OTLPCollectorAddr: getEnv("OTLP_COLLECTOR_ADDR", "localhost:4317"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),

		Offload: OffloadLimits{
			MaxDepth:        getEnvInt("OFFLOAD_MAX_DEPTH", 12),
			MaxResolveDepth: getEnvInt("OFFLOAD_MAX_RESOLVE_DEPTH", 5),
			MaxNodeBytes:    getEnvInt("OFFLOAD_MAX_NODE_BYTES", 1<<20),
		},
		CacheTTLSeconds: getEnvInt("REFPATH_CACHE_TTL_SECONDS", 300),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that production deployments carry the configuration
// they need to reach their backends.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required in production")
		}
	}
	if c.Offload.MaxDepth <= 0 {
		return fmt.Errorf("OFFLOAD_MAX_DEPTH must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
