// Package ports defines the interfaces the application layer depends on
// and infrastructure implements — the hexagonal boundary between readers
// and the backends they federate (spec.md §2, §5).
package ports

import (
	"context"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
)

// DocumentStore is the relational-style metadata backend behind the
// MongoReader family: uploads, entries, datasets, and users (spec.md §2).
// Each method returns the stored document as a generic map so a single
// port can serve all four entity kinds without four near-identical
// interfaces, mirroring the teacher's GenericRepository[T] pattern
// generalized one level further.
type DocumentStore interface {
	// GetUpload fetches one upload document by id.
	GetUpload(ctx context.Context, id valueobjects.UploadID) (map[string]interface{}, error)

	// GetEntry fetches one entry document by id.
	GetEntry(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error)

	// GetDataset fetches one dataset document by id.
	GetDataset(ctx context.Context, id valueobjects.DatasetID) (map[string]interface{}, error)

	// GetUser fetches one user document by id.
	GetUser(ctx context.Context, id valueobjects.UserID) (map[string]interface{}, error)

	// QueryUploads returns upload documents matching query, ordered and
	// paginated per pagination (spec.md §6, UploadProcDataQuery).
	QueryUploads(ctx context.Context, query *core.UploadQuery, pagination *core.Pagination) ([]map[string]interface{}, error)

	// QueryEntries returns entry documents matching query.
	QueryEntries(ctx context.Context, query *core.EntryQuery, pagination *core.Pagination) ([]map[string]interface{}, error)

	// QueryDatasets returns dataset documents matching query.
	QueryDatasets(ctx context.Context, query *core.DatasetQuery, pagination *core.Pagination) ([]map[string]interface{}, error)

	// EntriesForDataset lists the entry ids belonging to a dataset, used
	// when a DatasetReader offloads its "entries" field.
	EntriesForDataset(ctx context.Context, id valueobjects.DatasetID) ([]valueobjects.EntryID, error)
}
