// Package dynamodb implements ports.DocumentStore over a single DynamoDB
// table, following the teacher's single-table, generic-repository style
// generalized to a read-only query engine: the reader never writes back to
// any backend (spec.md §2, §5).
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithy "github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Entity is the minimal shape a stored document must expose to participate
// in GenericRepository's read paths.
type Entity interface {
	GetID() string
	GetUserID() string
}

// EntityConfig supplies the per-entity-kind marshaling and key-building
// logic GenericRepository needs, trimmed from the teacher's version to the
// read-only operations this engine performs.
type EntityConfig[T Entity] interface {
	// ParseItem converts a raw DynamoDB item into the generic document map
	// the application layer consumes.
	ParseItem(item map[string]types.AttributeValue) (map[string]interface{}, error)
	// BuildKey constructs the primary key for a direct GetItem lookup.
	BuildKey(id string) map[string]types.AttributeValue
	// GetEntityType names the EntityType discriminator this kind is
	// filtered by in table-wide queries.
	GetEntityType() string
}

// GenericRepository provides the read operations shared by every document
// kind stored in the single table: direct lookup and a filtered,
// paginated scan-by-index query.
type GenericRepository[T Entity] struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	config    EntityConfig[T]
	logger    *zap.Logger
}

// NewGenericRepository constructs a repository bound to one entity kind.
func NewGenericRepository[T Entity](
	client *dynamodb.Client,
	tableName string,
	indexName string,
	config EntityConfig[T],
	logger *zap.Logger,
) *GenericRepository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenericRepository[T]{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		config:    config,
		logger:    logger,
	}
}

// GetByID retrieves one document by its primary key.
func (r *GenericRepository[T]) GetByID(ctx context.Context, id string) (map[string]interface{}, error) {
	key := r.config.BuildKey(id)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, wrapAPIError("get item", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound{EntityType: r.config.GetEntityType(), ID: id}
	}

	doc, err := r.config.ParseItem(out.Item)
	if err != nil {
		return nil, fmt.Errorf("parse item: %w", err)
	}
	return doc, nil
}

// QueryByUser retrieves one page of documents of this kind owned by
// userID, through the GSI named at construction, filtered to this entity
// type, with an optional page size and exclusive start key.
func (r *GenericRepository[T]) QueryByUser(ctx context.Context, userID string, pageSize int32, exclusiveStartKey map[string]types.AttributeValue) ([]map[string]interface{}, map[string]types.AttributeValue, error) {
	keyExpr := expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID)))
	filterExpr := expression.Name("EntityType").Equal(expression.Value(r.config.GetEntityType()))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyExpr).
		WithFilter(filterExpr).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         exclusiveStartKey,
	}
	if pageSize > 0 {
		input.Limit = aws.Int32(pageSize)
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, nil, wrapAPIError("query items", err)
	}

	docs := make([]map[string]interface{}, 0, len(out.Items))
	for _, item := range out.Items {
		doc, err := r.config.ParseItem(item)
		if err != nil {
			r.logger.Warn("skipping item that failed to parse", zap.Error(err), zap.String("entityType", r.config.GetEntityType()))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, out.LastEvaluatedKey, nil
}

// BatchGetByIDs retrieves many documents by id in a single round trip,
// batching into groups of 100 per the DynamoDB BatchGetItem limit.
func (r *GenericRepository[T]) BatchGetByIDs(ctx context.Context, ids []string) ([]map[string]interface{}, error) {
	const batchSize = 100
	docs := make([]map[string]interface{}, 0, len(ids))

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		keys := make([]map[string]types.AttributeValue, 0, end-i)
		for _, id := range ids[i:end] {
			keys = append(keys, r.config.BuildKey(id))
		}

		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.tableName: {Keys: keys},
			},
		})
		if err != nil {
			return nil, wrapAPIError("batch get items", err)
		}
		for _, item := range out.Responses[r.tableName] {
			doc, err := r.config.ParseItem(item)
			if err != nil {
				r.logger.Warn("skipping item that failed to parse", zap.Error(err))
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// wrapAPIError annotates a DynamoDB client error with its service-side
// error code when the SDK surfaces one, so callers can distinguish e.g.
// throttling from a malformed request without string-matching err.Error().
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrNotFound is returned when a direct key lookup finds nothing, letting
// callers distinguish "absent" from a transport failure without string
// matching (spec.md §4.8, NOTFOUND).
type ErrNotFound struct {
	EntityType string
	ID         string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.EntityType, e.ID)
}
