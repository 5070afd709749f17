// Package valueobjects holds the small, immutable identifier types the
// engine threads through every GraphNode. They are thin wrappers over
// string, following the teacher's value-object idiom: validated
// construction, no public mutation, equality by value.
package valueobjects

import (
	"fmt"
	"strings"
)

// UploadID identifies an upload (a processing batch of raw files).
type UploadID string

// EntryID identifies a single parsed archive within an upload.
type EntryID string

// DatasetID identifies a named collection of entries.
type DatasetID string

// UserID identifies a principal (author, reviewer, coauthor).
type UserID string

// NewUploadID validates and constructs an UploadID.
func NewUploadID(s string) (UploadID, error) {
	if s == "" {
		return "", fmt.Errorf("upload id must not be empty")
	}
	return UploadID(s), nil
}

// NewEntryID validates and constructs an EntryID.
func NewEntryID(s string) (EntryID, error) {
	if s == "" {
		return "", fmt.Errorf("entry id must not be empty")
	}
	return EntryID(s), nil
}

// NewDatasetID validates and constructs a DatasetID.
func NewDatasetID(s string) (DatasetID, error) {
	if s == "" {
		return "", fmt.Errorf("dataset id must not be empty")
	}
	return DatasetID(s), nil
}

// NewUserID validates and constructs a UserID.
func NewUserID(s string) (UserID, error) {
	if s == "" {
		return "", fmt.Errorf("user id must not be empty")
	}
	return UserID(s), nil
}

// String implementations let these participate as plain strings in logs
// and cache keys without an explicit cast at every call site.
func (id UploadID) String() string  { return string(id) }
func (id EntryID) String() string   { return string(id) }
func (id DatasetID) String() string { return string(id) }
func (id UserID) String() string    { return string(id) }

// CanonicalPath is the tokenized form produced by converting a reference
// into a cache-key/result-placement path, e.g.
// ["uploads", "U", "entries", "E", "archive", "workflow", "0", "calc"].
type CanonicalPath []string

// String renders the canonical path slash-separated, with a leading "/".
func (p CanonicalPath) String() string {
	return "/" + strings.Join([]string(p), "/")
}

// Key returns the string used as a map key for caching and deduplication.
func (p CanonicalPath) Key() string {
	return strings.Join([]string(p), "\x1f")
}

// Equal reports whether two canonical paths name the same location.
func (p CanonicalPath) Equal(other CanonicalPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Append returns a new CanonicalPath with additional segments, never
// mutating the receiver (GraphNode cursors are copy-on-write).
func (p CanonicalPath) Append(segments ...string) CanonicalPath {
	out := make(CanonicalPath, 0, len(p)+len(segments))
	out = append(out, p...)
	out = append(out, segments...)
	return out
}
