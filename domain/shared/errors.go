package shared

import (
	"fmt"
)

// QueryErrorType classifies an error recorded against a response (spec.md §4.8).
type QueryErrorType string

const (
	ErrNoAccess      QueryErrorType = "NOACCESS"
	ErrNotFound      QueryErrorType = "NOTFOUND"
	ErrArchiveError  QueryErrorType = "ARCHIVEERROR"
	ErrGeneral       QueryErrorType = "GENERAL"
)

// QueryErrorEntry is one {error_type, message} pair serialized under m_errors.
type QueryErrorEntry struct {
	Type    QueryErrorType `json:"error_type"`
	Message string         `json:"message"`
}

// ErrorAccumulator collects (error_type -> set<message>) during a walk and
// serializes it at the end, matching the per-reader accumulation described
// in spec.md §4.8. It is not safe for concurrent use — the engine is
// single-threaded cooperative within one request (spec.md §5).
type ErrorAccumulator struct {
	byType map[QueryErrorType]map[string]struct{}
	order  []QueryErrorType
}

// NewErrorAccumulator returns an empty accumulator.
func NewErrorAccumulator() *ErrorAccumulator {
	return &ErrorAccumulator{byType: make(map[QueryErrorType]map[string]struct{})}
}

// Add records a message under the given error type, deduplicating.
func (a *ErrorAccumulator) Add(t QueryErrorType, message string) {
	set, ok := a.byType[t]
	if !ok {
		set = make(map[string]struct{})
		a.byType[t] = set
		a.order = append(a.order, t)
	}
	set[message] = struct{}{}
}

// Addf is a convenience wrapper around Add with fmt.Sprintf formatting.
func (a *ErrorAccumulator) Addf(t QueryErrorType, format string, args ...interface{}) {
	a.Add(t, fmt.Sprintf(format, args...))
}

// Merge folds another accumulator's entries into this one. Used when a
// sub-reader's errors need to bubble into the parent's response.
func (a *ErrorAccumulator) Merge(other *ErrorAccumulator) {
	if other == nil {
		return
	}
	for _, t := range other.order {
		for msg := range other.byType[t] {
			a.Add(t, msg)
		}
	}
}

// Empty reports whether no errors have been recorded; an empty accumulator
// means the response omits m_errors entirely (spec.md §7).
func (a *ErrorAccumulator) Empty() bool {
	return len(a.byType) == 0
}

// Entries serializes the accumulated errors in first-seen type order, with
// messages in stable (insertion-independent) sorted order for determinism.
func (a *ErrorAccumulator) Entries() []QueryErrorEntry {
	if a.Empty() {
		return nil
	}
	entries := make([]QueryErrorEntry, 0)
	for _, t := range a.order {
		msgs := sortedKeys(a.byType[t])
		for _, m := range msgs {
			entries = append(entries, QueryErrorEntry{Type: t, Message: m})
		}
	}
	return entries
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	// Simple insertion sort avoids pulling in "sort" for tiny per-path sets
	// while keeping Entries() deterministic (testable property: determinism).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// ConfigError aborts the whole request at normalization time (spec.md §4.8).
// It is an internal exception type, distinct from the QueryError taxonomy
// that gets recorded per-branch during a walk.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("config error at %q: %s", e.Path, e.Message)
}

// NewConfigError builds a ConfigError naming the offending key path.
func NewConfigError(path, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ArchiveError short-circuits the current branch of a walk; the caller is
// expected to catch it, record it as ARCHIVEERROR, and continue the rest
// of the request (spec.md §4.8, §7).
type ArchiveError struct {
	Message string
	Cause   error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ArchiveError) Unwrap() error { return e.Cause }

// NewArchiveError wraps an underlying cause (possibly nil) as an ArchiveError.
func NewArchiveError(cause error, format string, args ...interface{}) *ArchiveError {
	return &ArchiveError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
