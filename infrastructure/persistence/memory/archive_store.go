package memory

import (
	"context"
	"fmt"
	"sync"

	"graphqueryreader/domain/core/valueobjects"
)

// ArchiveStore is an in-memory ports.ArchiveStore keyed by entry id,
// pairing each archive document with the schema definition name it
// validates against.
type ArchiveStore struct {
	mu    sync.RWMutex
	byID  map[string]archiveRecord
}

type archiveRecord struct {
	archive        map[string]interface{}
	definitionName string
}

// NewArchiveStore returns an empty store; Seed populates it.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{byID: make(map[string]archiveRecord)}
}

// Seed registers one entry's archive document and definition name.
func (s *ArchiveStore) Seed(entryID string, archive map[string]interface{}, definitionName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[entryID] = archiveRecord{archive: archive, definitionName: definitionName}
}

func (s *ArchiveStore) GetArchive(ctx context.Context, entry valueobjects.EntryID) (map[string]interface{}, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[entry.String()]
	if !ok {
		return nil, "", fmt.Errorf("archive for entry %q not found", entry.String())
	}
	return rec.archive, rec.definitionName, nil
}
