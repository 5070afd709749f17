package ports

import (
	"context"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
)

// SearchIndex is the full-text/structured search backend behind the
// ElasticSearchReader, offloaded to from Entry.metadata (spec.md §2, §4.3).
type SearchIndex interface {
	// GetMetadata fetches the indexed metadata document for one entry.
	GetMetadata(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error)

	// Search runs a structured/keyword query over the index, returning
	// matching entry ids in ranked order (spec.md §6, SearchQuery dialect).
	Search(ctx context.Context, query *core.SearchQuery, pagination *core.Pagination) ([]valueobjects.EntryID, error)
}
