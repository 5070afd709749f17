//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/wire"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/application/readers"
	"graphqueryreader/application/services"
	"graphqueryreader/infrastructure/archivefs"
	"graphqueryreader/infrastructure/config"
	"graphqueryreader/infrastructure/observability"
	"graphqueryreader/infrastructure/resilience"
	"graphqueryreader/infrastructure/schemaregistry"
)

// Container holds every wired dependency cmd/querycli and
// interfaces/http need to run a request.
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	TracerProvider    *sdktrace.TracerProvider
	Metrics           *observability.Metrics
	Breakers          *resilience.BreakerSet
	DocumentStore     ports.DocumentStore
	SearchIndex       ports.SearchIndex
	ArchiveStore      ports.ArchiveStore
	ArchiveFileStore  *archivefs.FileStore
	SchemaRegistry    *schemaregistry.Registry
	AccessControl     ports.AccessControl
	EventBus          ports.EventBus
	Cache             ports.Cache
	ReaderRegistry    *readers.Registry
	QueryService      *services.QueryService
}

// SuperSet is the complete provider set wired into Container.
var SuperSet = wire.NewSet(
	provideAWSConfig,
	provideDynamoDBClient,
	provideEventBridgeClient,
	provideDocumentStore,
	provideSearchIndex,
	provideArchiveStore,
	provideArchiveFileStore,
	provideSchemaRegistry,
	provideAccessControl,
	provideEventBus,
	provideCache,
	provideBreakers,
	provideMetrics,
	provideTracerProvider,
	provideReferenceResolver,
	provideReaderRegistry,
	provideQueryService,
	wire.Struct(new(Container), "*"),
)

func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) { panic("wire") }

func provideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client { panic("wire") }

func provideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client { panic("wire") }

func provideDocumentStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DocumentStore {
	panic("wire")
}

func provideSearchIndex() ports.SearchIndex { panic("wire") }

func provideArchiveStore() ports.ArchiveStore { panic("wire") }

func provideArchiveFileStore(cfg *config.Config, logger *zap.Logger) (*archivefs.FileStore, error) {
	panic("wire")
}

func provideSchemaRegistry() *schemaregistry.Registry { panic("wire") }

func provideAccessControl(cfg *config.Config) (ports.AccessControl, error) { panic("wire") }

func provideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	panic("wire")
}

func provideCache(cfg *config.Config) (ports.Cache, error) { panic("wire") }

func provideBreakers(logger *zap.Logger) *resilience.BreakerSet { panic("wire") }

func provideMetrics() *observability.Metrics { panic("wire") }

func provideTracerProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	panic("wire")
}

func provideReferenceResolver(
	archiveStore ports.ArchiveStore,
	fileStore *archivefs.FileStore,
	access ports.AccessControl,
	resolvedCache ports.Cache,
	logger *zap.Logger,
) *readers.ReferenceResolver {
	panic("wire")
}

func provideReaderRegistry(
	documentStore ports.DocumentStore,
	searchIndex ports.SearchIndex,
	archiveStore ports.ArchiveStore,
	fileStore *archivefs.FileStore,
	schemaRegistry *schemaregistry.Registry,
	access ports.AccessControl,
	resolver *readers.ReferenceResolver,
	logger *zap.Logger,
) *readers.Registry {
	panic("wire")
}

func provideQueryService(registry *readers.Registry, events ports.EventBus, logger *zap.Logger) *services.QueryService {
	panic("wire")
}

// InitializeContainer builds a fully wired Container for the given
// configuration. Wire regenerates wire_gen.go from this function.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
