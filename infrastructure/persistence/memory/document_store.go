// Package memory implements the backend ports entirely in-process, for
// tests and for the standalone cmd/querycli harness where wiring a real
// DynamoDB table or search cluster isn't warranted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
)

// DocumentStore is an in-memory ports.DocumentStore backed by four plain
// maps, one per document kind.
type DocumentStore struct {
	mu       sync.RWMutex
	uploads  map[string]map[string]interface{}
	entries  map[string]map[string]interface{}
	datasets map[string]map[string]interface{}
	users    map[string]map[string]interface{}
}

// NewDocumentStore returns an empty store; Seed* methods populate it.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		uploads:  make(map[string]map[string]interface{}),
		entries:  make(map[string]map[string]interface{}),
		datasets: make(map[string]map[string]interface{}),
		users:    make(map[string]map[string]interface{}),
	}
}

func (s *DocumentStore) SeedUpload(id string, doc map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[id] = doc
}

func (s *DocumentStore) SeedEntry(id string, doc map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = doc
}

func (s *DocumentStore) SeedDataset(id string, doc map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[id] = doc
}

func (s *DocumentStore) SeedUser(id string, doc map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = doc
}

func (s *DocumentStore) GetUpload(ctx context.Context, id valueobjects.UploadID) (map[string]interface{}, error) {
	return s.get(s.uploads, id.String(), "upload")
}

func (s *DocumentStore) GetEntry(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error) {
	return s.get(s.entries, id.String(), "entry")
}

func (s *DocumentStore) GetDataset(ctx context.Context, id valueobjects.DatasetID) (map[string]interface{}, error) {
	return s.get(s.datasets, id.String(), "dataset")
}

func (s *DocumentStore) GetUser(ctx context.Context, id valueobjects.UserID) (map[string]interface{}, error) {
	return s.get(s.users, id.String(), "user")
}

func (s *DocumentStore) get(table map[string]map[string]interface{}, id, kind string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := table[id]
	if !ok {
		return nil, fmt.Errorf("%s %q not found", kind, id)
	}
	return doc, nil
}

func (s *DocumentStore) QueryUploads(ctx context.Context, query *core.UploadQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]idDoc, 0, len(s.uploads))
	for id, doc := range s.uploads {
		if query != nil && query.UserID != "" {
			if owner, _ := doc["user_id"].(string); owner != query.UserID {
				continue
			}
		}
		if query != nil && query.UploadName != "" {
			if name, _ := doc["upload_name"].(string); name != query.UploadName {
				continue
			}
		}
		if query != nil && query.PublishedOnly {
			if published, _ := doc["published"].(bool); !published {
				continue
			}
		}
		out = append(out, idDoc{id: id, doc: doc})
	}
	return paginate(out, pagination), nil
}

func (s *DocumentStore) QueryEntries(ctx context.Context, query *core.EntryQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wantUploads := toSet(query.UploadID)
	out := make([]idDoc, 0, len(s.entries))
	for id, doc := range s.entries {
		uploadID, _ := doc["upload_id"].(string)
		if len(wantUploads) > 0 {
			if _, ok := wantUploads[uploadID]; !ok {
				continue
			}
		}
		out = append(out, idDoc{id: id, doc: doc})
	}
	return paginate(out, pagination), nil
}

func (s *DocumentStore) QueryDatasets(ctx context.Context, query *core.DatasetQuery, pagination *core.Pagination) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]idDoc, 0, len(s.datasets))
	for id, doc := range s.datasets {
		if query != nil && query.UserID != "" {
			if owner, _ := doc["user_id"].(string); owner != query.UserID {
				continue
			}
		}
		out = append(out, idDoc{id: id, doc: doc})
	}
	return paginate(out, pagination), nil
}

func (s *DocumentStore) EntriesForDataset(ctx context.Context, id valueobjects.DatasetID) ([]valueobjects.EntryID, error) {
	doc, err := s.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, _ := doc["entries"].([]interface{})
	out := make([]valueobjects.EntryID, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			eid, err := valueobjects.NewEntryID(str)
			if err == nil {
				out = append(out, eid)
			}
		}
	}
	return out, nil
}

// idDoc pairs a document with the id it was seeded under, since the raw
// doc map doesn't necessarily carry its own id field. Map iteration order
// is randomized in Go, so ordering/paging always sorts by this pair
// before slicing, keeping repeated queries deterministic.
type idDoc struct {
	id  string
	doc map[string]interface{}
}

// paginate orders records (by pagination.OrderBy, falling back to id) and
// slices to PageSize after skipping past PageAfterValue, mutating
// pagination.NextPageAfterValue in place so the caller can surface it
// under m_response for the follow-up request (spec.md §4.2).
func paginate(records []idDoc, pagination *core.Pagination) []map[string]interface{} {
	orderBy, desc, pageSize, pageAfter := "", false, 0, ""
	if pagination != nil {
		orderBy, desc, pageSize, pageAfter = pagination.OrderBy, pagination.OrderDesc, pagination.PageSize, pagination.PageAfterValue
	}

	sortKey := func(r idDoc) string {
		if orderBy == "" {
			return r.id
		}
		if v, ok := r.doc[orderBy]; ok {
			return fmt.Sprintf("%v", v)
		}
		return ""
	}

	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := sortKey(records[i]), sortKey(records[j])
		if desc {
			return ki > kj
		}
		return ki < kj
	})

	start := 0
	if pageAfter != "" {
		for i, r := range records {
			if sortKey(r) == pageAfter {
				start = i + 1
				break
			}
		}
	}
	if start > len(records) {
		start = len(records)
	}
	page := records[start:]

	if pageSize > 0 && pageSize < len(page) {
		page = page[:pageSize]
		if pagination != nil {
			pagination.NextPageAfterValue = sortKey(page[len(page)-1])
		}
	} else if pagination != nil {
		pagination.NextPageAfterValue = ""
	}

	out := make([]map[string]interface{}, 0, len(page))
	for _, r := range page {
		out = append(out, r.doc)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
