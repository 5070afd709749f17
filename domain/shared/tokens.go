// Package shared holds types and constants that every layer of the reader
// engine depends on: reserved tokens, the searchable-token dispatch table,
// and the error taxonomy accumulated during a walk.
package shared

// ReaderKind identifies which specialized reader owns a subtree.
type ReaderKind string

const (
	ReaderKindUpload    ReaderKind = "upload"
	ReaderKindEntry     ReaderKind = "entry"
	ReaderKindDataset   ReaderKind = "dataset"
	ReaderKindUser      ReaderKind = "user"
	ReaderKindSearch    ReaderKind = "search"
	ReaderKindFileSys   ReaderKind = "files"
	ReaderKindArchive   ReaderKind = "archive"
	ReaderKindDefinition ReaderKind = "definition"
)

// Reserved tokens are never treated as plain record fields.
const (
	TokenRequest    = "m_request"
	TokenDef        = "m_def"
	TokenDatasets   = "m_datasets"
	TokenErrors     = "m_errors"
	TokenResponse   = "m_response"
	TokenIs         = "m_is"
	TokenReferences = "references"
	TokenConfig     = "__CONFIG__"
	TokenWildcard   = "__WILDCARD__"
	TokenCache      = "__CACHE__"
	TokenInternal   = "__INTERNAL__"
)

// searchableTokenMap is the fixed mapping from required-tree key to the
// reader kind it offloads to. It is a lookup table, not a class-
// introspection switch, so new readers can be added without touching the
// dispatch core (design note in spec.md §9).
var searchableTokenMap = map[string]ReaderKind{
	"search":     ReaderKindSearch,
	"metadata":   ReaderKindSearch,
	"entry":      ReaderKindEntry,
	"entries":    ReaderKindEntry,
	"upload":     ReaderKindUpload,
	"uploads":    ReaderKindUpload,
	"user":       ReaderKindUser,
	"users":      ReaderKindUser,
	"dataset":    ReaderKindDataset,
	"m_datasets": ReaderKindDataset,
}

// ReaderKindFor returns the reader kind a searchable token dispatches to,
// and whether the key is a recognized searchable token at all.
func ReaderKindFor(key string) (ReaderKind, bool) {
	kind, ok := searchableTokenMap[key]
	return kind, ok
}

// IsSearchable reports whether pagination/query is permitted on this key.
func IsSearchable(key string) bool {
	_, ok := searchableTokenMap[key]
	return ok
}

// idFieldReaderKinds maps a scalar/list id-field name to the reader it
// should resolve through when resolve_type requests it.
var idFieldReaderKinds = map[string]ReaderKind{
	"user_id":    ReaderKindUser,
	"main_author": ReaderKindUser,
	"upload_id":  ReaderKindUpload,
	"entry_id":   ReaderKindEntry,
	"datasets":   ReaderKindDataset,
	"dataset_id": ReaderKindDataset,
}

// IDReaderKindFor returns the reader kind that owns an id-typed field.
func IDReaderKindFor(field string) (ReaderKind, bool) {
	kind, ok := idFieldReaderKinds[field]
	return kind, ok
}
