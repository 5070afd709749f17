package dynamodb

import (
	"context"
	"fmt"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
)

// DocumentStore implements ports.DocumentStore over the single DynamoDB
// table, one GenericRepository per entity kind (spec.md §2, DocumentStore;
// grounded on the teacher's generic_repository.go pattern).
type DocumentStore struct {
	uploads  *GenericRepository[uploadEntity]
	entries  *GenericRepository[entryEntity]
	datasets *GenericRepository[datasetEntity]
	users    *GenericRepository[userEntity]
	logger   *zap.Logger
}

// NewDocumentStore wires up the four per-kind repositories against a
// shared client, table, and GSI.
func NewDocumentStore(client *awsdynamodb.Client, tableName, gsiIndexName string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		uploads:  NewGenericRepository[uploadEntity](client, tableName, gsiIndexName, uploadConfig{}, logger),
		entries:  NewGenericRepository[entryEntity](client, tableName, gsiIndexName, entryConfig{}, logger),
		datasets: NewGenericRepository[datasetEntity](client, tableName, gsiIndexName, datasetConfig{}, logger),
		users:    NewGenericRepository[userEntity](client, tableName, gsiIndexName, userConfig{}, logger),
		logger:   logger,
	}
}

func (s *DocumentStore) GetUpload(ctx context.Context, id valueobjects.UploadID) (map[string]interface{}, error) {
	return s.uploads.GetByID(ctx, id.String())
}

func (s *DocumentStore) GetEntry(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error) {
	return s.entries.GetByID(ctx, id.String())
}

func (s *DocumentStore) GetDataset(ctx context.Context, id valueobjects.DatasetID) (map[string]interface{}, error) {
	return s.datasets.GetByID(ctx, id.String())
}

func (s *DocumentStore) GetUser(ctx context.Context, id valueobjects.UserID) (map[string]interface{}, error) {
	return s.users.GetByID(ctx, id.String())
}

func (s *DocumentStore) QueryUploads(ctx context.Context, query *core.UploadQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	if query == nil || query.UserID == "" {
		return nil, fmt.Errorf("upload query must name a user id")
	}
	pageSize := int32(0)
	if pagination != nil {
		pageSize = int32(pagination.PageSize)
	}
	docs, _, err := s.uploads.QueryByUser(ctx, query.UserID, pageSize, nil)
	if err != nil {
		return nil, err
	}
	return filterUploads(docs, query), nil
}

func (s *DocumentStore) QueryEntries(ctx context.Context, query *core.EntryQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	if query == nil || len(query.UploadID) == 0 {
		return nil, fmt.Errorf("entry query must name at least one upload id")
	}
	var all []map[string]interface{}
	for _, upload := range query.UploadID {
		docs, _, err := s.entries.QueryByUser(ctx, upload, 0, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

func (s *DocumentStore) QueryDatasets(ctx context.Context, query *core.DatasetQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	if query == nil || query.UserID == "" {
		return nil, fmt.Errorf("dataset query must name a user id")
	}
	pageSize := int32(0)
	if pagination != nil {
		pageSize = int32(pagination.PageSize)
	}
	docs, _, err := s.datasets.QueryByUser(ctx, query.UserID, pageSize, nil)
	if err != nil {
		return nil, err
	}
	if query.DatasetName == "" {
		return docs, nil
	}
	out := docs[:0]
	for _, d := range docs {
		if name, _ := d["dataset_name"].(string); name == query.DatasetName {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *DocumentStore) EntriesForDataset(ctx context.Context, id valueobjects.DatasetID) ([]valueobjects.EntryID, error) {
	doc, err := s.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, _ := doc["entries"].([]interface{})
	out := make([]valueobjects.EntryID, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		eid, err := valueobjects.NewEntryID(s)
		if err != nil {
			continue
		}
		out = append(out, eid)
	}
	return out, nil
}

func filterUploads(docs []map[string]interface{}, query *core.UploadQuery) []map[string]interface{} {
	out := docs[:0]
	for _, d := range docs {
		if query.UploadName != "" {
			name, _ := d["upload_name"].(string)
			if name != query.UploadName {
				continue
			}
		}
		if query.PublishedOnly {
			published, _ := d["published"].(bool)
			if !published {
				continue
			}
		}
		if query.ProcessingSuccessful != nil {
			ok, _ := d["processing_successful"].(bool)
			if ok != *query.ProcessingSuccessful {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}
