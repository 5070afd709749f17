// Package search implements ports.SearchIndex. No example in the
// reference corpus imports a search-engine client (Elasticsearch,
// OpenSearch, Bleve); this package is therefore the one stdlib-only
// component in the engine, built as a small in-memory inverted index
// (documented in DESIGN.md).
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
)

// MemoryIndex is an in-memory ports.SearchIndex: a metadata document per
// entry plus a simple token-to-entries inverted index for keyword search.
type MemoryIndex struct {
	mu       sync.RWMutex
	metadata map[string]map[string]interface{}
	postings map[string]map[string]struct{} // token -> set of entry ids
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		metadata: make(map[string]map[string]interface{}),
		postings: make(map[string]map[string]struct{}),
	}
}

// Index adds or replaces one entry's metadata document, tokenizing its
// string-valued fields into the inverted index.
func (idx *MemoryIndex) Index(entryID string, doc map[string]interface{}) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.metadata[entryID] = doc
	for _, v := range doc {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, token := range tokenize(s) {
			set, ok := idx.postings[token]
			if !ok {
				set = make(map[string]struct{})
				idx.postings[token] = set
			}
			set[entryID] = struct{}{}
		}
	}
}

func (idx *MemoryIndex) GetMetadata(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.metadata[id.String()]
	if !ok {
		return nil, entryNotIndexedError{id: id.String()}
	}
	return doc, nil
}

func (idx *MemoryIndex) Search(ctx context.Context, query *core.SearchQuery, pagination *core.Pagination) ([]valueobjects.EntryID, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matchSet map[string]struct{}
	if query != nil && query.Keyword != "" {
		matchSet = make(map[string]struct{})
		for _, token := range tokenize(query.Keyword) {
			for id := range idx.postings[token] {
				matchSet[id] = struct{}{}
			}
		}
	} else {
		matchSet = make(map[string]struct{}, len(idx.metadata))
		for id := range idx.metadata {
			matchSet[id] = struct{}{}
		}
	}

	if query != nil && len(query.Terms) > 0 {
		for id := range matchSet {
			doc := idx.metadata[id]
			for field, want := range query.Terms {
				if got, ok := doc[field]; !ok || got != want {
					delete(matchSet, id)
					break
				}
			}
		}
	}

	ids := make([]string, 0, len(matchSet))
	for id := range matchSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if pagination != nil && pagination.OrderDesc {
		sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	}

	start := 0
	if pagination != nil && pagination.PageAfterValue != "" {
		for i, id := range ids {
			if id == pagination.PageAfterValue {
				start = i + 1
				break
			}
		}
	}
	if start > len(ids) {
		start = len(ids)
	}
	ids = ids[start:]

	if pagination != nil && pagination.PageSize > 0 && pagination.PageSize < len(ids) {
		ids = ids[:pagination.PageSize]
		pagination.NextPageAfterValue = ids[len(ids)-1]
	} else if pagination != nil {
		pagination.NextPageAfterValue = ""
	}

	out := make([]valueobjects.EntryID, 0, len(ids))
	for _, id := range ids {
		eid, err := valueobjects.NewEntryID(id)
		if err == nil {
			out = append(out, eid)
		}
	}
	return out, nil
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

type entryNotIndexedError struct{ id string }

func (e entryNotIndexedError) Error() string { return "entry " + e.id + " is not indexed" }
