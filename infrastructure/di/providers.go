// Package di wires the query engine's ports to concrete backends using
// google/wire, following the teacher's Container/SuperSet/Provide*
// pattern (grounded on infrastructure/di/wire.go in the teacher repo).
// providers.go holds the real implementations; wire.go declares the
// wireinject-only signatures wire uses to generate wire_gen.go.
package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/application/readers"
	"graphqueryreader/application/services"
	"graphqueryreader/domain/shared"
	"graphqueryreader/infrastructure/accesscontrol"
	"graphqueryreader/infrastructure/archivefs"
	"graphqueryreader/infrastructure/cache"
	"graphqueryreader/infrastructure/config"
	"graphqueryreader/infrastructure/messaging/eventbridge"
	"graphqueryreader/infrastructure/observability"
	"graphqueryreader/infrastructure/persistence/dynamodb"
	"graphqueryreader/infrastructure/persistence/memory"
	"graphqueryreader/infrastructure/resilience"
	"graphqueryreader/infrastructure/schemaregistry"
	"graphqueryreader/infrastructure/search"
)

func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

func ProvideDocumentStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DocumentStore {
	return dynamodb.NewDocumentStore(client, cfg.DynamoDBTable, cfg.GSI2IndexName, logger)
}

// ProvideSearchIndex returns the one search backend this deployment
// carries: an in-process inverted index (infrastructure/search is the
// one stdlib-only component in this module — no example repo in the
// corpus imports a search-engine client library).
func ProvideSearchIndex() ports.SearchIndex {
	return search.NewMemoryIndex()
}

// ProvideArchiveStore returns the in-memory archive backend. No example
// repo in the corpus wires a document database purpose-built for
// schema-bearing nested documents distinct from the upload/entry
// metadata store, so this engine reuses the shape of DocumentStore's
// backend conceptually but keeps archive content in-process until a
// dedicated archive persistence layer is deployed.
func ProvideArchiveStore() ports.ArchiveStore {
	return memory.NewArchiveStore()
}

func ProvideArchiveFileStore(cfg *config.Config, logger *zap.Logger) (*archivefs.FileStore, error) {
	return archivefs.NewFileStore(cfg.ArchiveFileRoot, logger)
}

func ProvideSchemaRegistry() *schemaregistry.Registry {
	return schemaregistry.New()
}

// ProvideAccessControl returns a Supabase-backed access-control client in
// any environment that names a Supabase project, falling back to an
// in-memory allow-list otherwise (local development, cmd/querycli).
func ProvideAccessControl(cfg *config.Config) (ports.AccessControl, error) {
	if cfg.SupabaseURL == "" {
		return accesscontrol.NewMemoryAccess(), nil
	}
	return accesscontrol.NewSupabaseAccess(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
}

func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

func ProvideBreakers(logger *zap.Logger) *resilience.BreakerSet {
	return resilience.NewBreakerSet(logger, "documentstore", "searchindex", "archivestore", "filestore")
}

func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.DefaultRegisterer)
}

func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	return observability.NewTracerProvider(ctx, observability.TracerProviderConfig{
		ServiceName:   "graphqueryreader",
		CollectorAddr: cfg.OTLPCollectorAddr,
		Insecure:      !cfg.IsProduction(),
	})
}

// ProvideCache returns the default in-process resolved-reference cache,
// sized for a single process's working set and expiring entries after the
// configured TTL (cfg.CacheTTLSeconds).
func ProvideCache(cfg *config.Config) (ports.Cache, error) {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return cache.New(2048, ttl)
}

func ProvideReferenceResolver(
	archiveStore ports.ArchiveStore,
	fileStore *archivefs.FileStore,
	access ports.AccessControl,
	resolvedCache ports.Cache,
	logger *zap.Logger,
) *readers.ReferenceResolver {
	return readers.NewReferenceResolver(archiveStore, fileStore, access, resolvedCache, logger)
}

// ProvideReaderRegistry registers one factory per ReaderKind, the fixed
// dispatch table every GraphNode walk consults (spec.md §9).
func ProvideReaderRegistry(
	documentStore ports.DocumentStore,
	searchIndex ports.SearchIndex,
	archiveStore ports.ArchiveStore,
	fileStore *archivefs.FileStore,
	schemaRegistry *schemaregistry.Registry,
	access ports.AccessControl,
	resolver *readers.ReferenceResolver,
	logger *zap.Logger,
) *readers.Registry {
	registry := readers.NewRegistry()

	registerDocumentReaders(registry, documentStore, access, logger)
	registerSearchReader(registry, searchIndex, access, logger)
	registerFileSystemReader(registry, fileStore, documentStore, access, logger)
	registerArchiveReaders(registry, archiveStore, schemaRegistry, access, resolver, logger)

	return registry
}

func registerDocumentReaders(registry *readers.Registry, store ports.DocumentStore, access ports.AccessControl, logger *zap.Logger) {
	registry.Register(shared.ReaderKindUpload, func() readers.Reader {
		return readers.NewUploadReader(store, access, registry, logger)
	})
	registry.Register(shared.ReaderKindEntry, func() readers.Reader {
		return readers.NewEntryReader(store, access, registry, logger)
	})
	registry.Register(shared.ReaderKindDataset, func() readers.Reader {
		return readers.NewDatasetReader(store, access, registry, logger)
	})
	registry.Register(shared.ReaderKindUser, func() readers.Reader {
		return readers.NewUserReader(store, access, registry, logger)
	})
}

func registerSearchReader(registry *readers.Registry, index ports.SearchIndex, access ports.AccessControl, logger *zap.Logger) {
	registry.Register(shared.ReaderKindSearch, func() readers.Reader {
		return readers.NewSearchReader(index, access, logger)
	})
}

func registerFileSystemReader(registry *readers.Registry, store *archivefs.FileStore, documentStore ports.DocumentStore, access ports.AccessControl, logger *zap.Logger) {
	registry.Register(shared.ReaderKindFileSys, func() readers.Reader {
		return readers.NewFileSystemReader(store, documentStore, access, registry, logger)
	})
}

func registerArchiveReaders(
	registry *readers.Registry,
	store ports.ArchiveStore,
	schemaRegistry *schemaregistry.Registry,
	access ports.AccessControl,
	resolver *readers.ReferenceResolver,
	logger *zap.Logger,
) {
	registry.Register(shared.ReaderKindArchive, func() readers.Reader {
		return readers.NewArchiveReader(store, schemaRegistry, access, registry, resolver, logger)
	})
	registry.Register(shared.ReaderKindDefinition, func() readers.Reader {
		return readers.NewDefinitionReaderWithArchives(schemaRegistry, store, logger)
	})
}

func ProvideQueryService(registry *readers.Registry, events ports.EventBus, logger *zap.Logger) *services.QueryService {
	return services.New(registry, events, logger)
}
