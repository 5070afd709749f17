package ports

import (
	"context"

	"graphqueryreader/domain/core/valueobjects"
)

// AccessControl answers whether a principal may read a given upload/entry,
// consulted by every reader before it offloads to a backend (spec.md §4.5,
// Access control; NOACCESS in the error taxonomy).
type AccessControl interface {
	CanReadUpload(ctx context.Context, user valueobjects.UserID, upload valueobjects.UploadID) (bool, error)
	CanReadEntry(ctx context.Context, user valueobjects.UserID, entry valueobjects.EntryID) (bool, error)
}

// EventBus publishes audit events describing completed requests (spec.md
// §9, observability additions). Mirrors the teacher's EventBus port,
// narrowed to publish-only since nothing in this engine subscribes.
type EventBus interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// AuditEvent is the minimal "a query executed" fact published after a
// request completes.
type AuditEvent struct {
	RequestID string
	UserID    string
	RootKeys  []string
	HadErrors bool
}

// Cache is a small TTL cache used for resolved references and computed
// config hashes, mirroring the teacher's Cache port (spec.md §5, Per-
// request pooling; §9 reference-path caching).
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
