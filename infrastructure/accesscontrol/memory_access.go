// Package accesscontrol implements ports.AccessControl: a Supabase-backed
// adapter for deployments with a real user/permissions table, and an
// in-memory one for tests and the standalone CLI harness.
package accesscontrol

import (
	"context"
	"sync"

	"graphqueryreader/domain/core/valueobjects"
)

// MemoryAccess grants access based on an explicit allow-list, defaulting
// to "deny" for anything not listed — the safer default for a read-only
// federation engine.
type MemoryAccess struct {
	mu            sync.RWMutex
	uploadAllow   map[string]map[string]struct{} // upload -> set of user ids
	entryAllow    map[string]map[string]struct{}
	publicUploads map[string]struct{}
	publicEntries map[string]struct{}
}

// NewMemoryAccess returns an access controller with nothing granted yet.
func NewMemoryAccess() *MemoryAccess {
	return &MemoryAccess{
		uploadAllow:   make(map[string]map[string]struct{}),
		entryAllow:    make(map[string]map[string]struct{}),
		publicUploads: make(map[string]struct{}),
		publicEntries: make(map[string]struct{}),
	}
}

func (a *MemoryAccess) GrantUpload(upload, user string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.uploadAllow[upload]
	if !ok {
		set = make(map[string]struct{})
		a.uploadAllow[upload] = set
	}
	set[user] = struct{}{}
}

func (a *MemoryAccess) GrantEntry(entry, user string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.entryAllow[entry]
	if !ok {
		set = make(map[string]struct{})
		a.entryAllow[entry] = set
	}
	set[user] = struct{}{}
}

func (a *MemoryAccess) PublishUpload(upload string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publicUploads[upload] = struct{}{}
}

func (a *MemoryAccess) PublishEntry(entry string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publicEntries[entry] = struct{}{}
}

func (a *MemoryAccess) CanReadUpload(ctx context.Context, user valueobjects.UserID, upload valueobjects.UploadID) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.publicUploads[upload.String()]; ok {
		return true, nil
	}
	set, ok := a.uploadAllow[upload.String()]
	if !ok {
		return false, nil
	}
	_, granted := set[user.String()]
	return granted, nil
}

func (a *MemoryAccess) CanReadEntry(ctx context.Context, user valueobjects.UserID, entry valueobjects.EntryID) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.publicEntries[entry.String()]; ok {
		return true, nil
	}
	set, ok := a.entryAllow[entry.String()]
	if !ok {
		return false, nil
	}
	_, granted := set[user.String()]
	return granted, nil
}
