// Package core holds the data model shared by every reader: RequestConfig,
// GraphNode, the result container, and reference URLs (spec.md §3).
package core

import "graphqueryreader/domain/shared"

// Directive controls whether reference-typed values expand to their
// targets (spec.md §3).
type Directive string

const (
	DirectivePlain    Directive = "plain"
	DirectiveResolved Directive = "resolved"
)

// IncludeDefinition controls whether a section's schema definition is
// also emitted alongside its data.
type IncludeDefinition string

const (
	IncludeDefinitionNone IncludeDefinition = "none"
	IncludeDefinitionBoth IncludeDefinition = "both"
)

// Query is a domain-specific filter descriptor, tagged by the reader kind
// it targets. Only one of the typed fields is populated, matching
// "tagged by reader kind" in spec.md §9 (Dynamic config objects).
type Query struct {
	Upload  *UploadQuery  `json:"upload,omitempty" validate:"omitempty"`
	Entry   *EntryQuery   `json:"entry,omitempty" validate:"omitempty"`
	Dataset *DatasetQuery `json:"dataset,omitempty" validate:"omitempty"`
	Search  *SearchQuery  `json:"search,omitempty" validate:"omitempty"`
}

// UploadQuery mirrors the UploadProcDataQuery dialect of spec.md §6.
type UploadQuery struct {
	UserID               string   `json:"user_id,omitempty"`
	UploadName           string   `json:"upload_name,omitempty"`
	ProcessingSuccessful *bool    `json:"processing_successful,omitempty"`
	PublishedOnly        bool     `json:"published_only,omitempty"`
	Authors              []string `json:"authors,omitempty"`
}

// EntryQuery mirrors the EntryQuery dialect.
type EntryQuery struct {
	UploadID []string `json:"upload_id,omitempty"`
	EntryID  []string `json:"entry_id,omitempty"`
	Datasets []string `json:"datasets,omitempty"`
}

// DatasetQuery mirrors the DatasetQuery dialect.
type DatasetQuery struct {
	DatasetName string `json:"dataset_name,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// SearchQuery mirrors the search index's Metadata query dialect.
type SearchQuery struct {
	Terms   map[string]interface{} `json:"terms,omitempty"`
	Keyword string                 `json:"keyword,omitempty"`
}

// Pagination is the ordering/slicing descriptor paired with Query.
type Pagination struct {
	PageSize          int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=10000"`
	OrderBy           string `json:"order_by,omitempty"`
	OrderDesc         bool   `json:"order_desc,omitempty"`
	PageAfterValue    string `json:"page_after_value,omitempty"`
	NextPageAfterValue string `json:"next_page_after_value,omitempty"`
}

// ResolveType names which sub-reader a scalar id value should be resolved
// through, when the current value is a known id kind.
type ResolveType string

const (
	ResolveTypeNone    ResolveType = ""
	ResolveTypeUser    ResolveType = "user"
	ResolveTypeUpload  ResolveType = "upload"
	ResolveTypeEntry   ResolveType = "entry"
	ResolveTypeDataset ResolveType = "dataset"
)

// IndexSpec is the parsed `[i]` or `[a:b]` suffix of a required-tree key.
// A nil IndexSpec means no suffix was present.
type IndexSpec struct {
	Single   *int // name[i]
	Start    *int // name[a:b], nil means open start
	End      *int // name[a:b], nil means open end
	IsRange  bool
}

// RequestConfig is a per-subtree configuration (spec.md §3). Every leaf of
// a normalized required tree holds one; every interior node may hold one
// under __CONFIG__, inherited by its children unless overridden.
type RequestConfig struct {
	Directive       Directive         `validate:"required,oneof=plain resolved"`
	ResolveType     ResolveType       `validate:"omitempty,oneof=user upload entry dataset"`
	ResolveInplace  bool
	ResolveDepth    int               `validate:"omitempty,min=0"`
	Depth           int               `validate:"omitempty,min=0"`
	MaxListSize     int               `validate:"omitempty,min=0"`
	MaxDictSize     int               `validate:"omitempty,min=0"`
	Include         []string
	Exclude         []string
	Query           *Query
	Pagination      *Pagination
	IncludeDefinition IncludeDefinition `validate:"omitempty,oneof=none both"`

	// Set by the normalizer from the key string, not user-supplied.
	PropertyName string
	Index        *IndexSpec
}

// DefaultRequestConfig is the config used when no __CONFIG__/shorthand is
// given at a level: plain directive, no stripping, no filters.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{Directive: DirectivePlain}
}

// Merge returns a new RequestConfig with fields from override taking
// precedence over the receiver (the inherited/parent config), matching
// "merges it with the inherited config" in spec.md §4.1. Zero-valued
// fields in override fall back to the receiver.
func (c RequestConfig) Merge(override RequestConfig) RequestConfig {
	out := c
	if override.Directive != "" {
		out.Directive = override.Directive
	}
	if override.ResolveType != "" {
		out.ResolveType = override.ResolveType
	}
	out.ResolveInplace = override.ResolveInplace || c.ResolveInplace
	if override.ResolveDepth != 0 {
		out.ResolveDepth = override.ResolveDepth
	}
	if override.Depth != 0 {
		out.Depth = override.Depth
	}
	if override.MaxListSize != 0 {
		out.MaxListSize = override.MaxListSize
	}
	if override.MaxDictSize != 0 {
		out.MaxDictSize = override.MaxDictSize
	}
	if len(override.Include) > 0 {
		out.Include = override.Include
	}
	if len(override.Exclude) > 0 {
		out.Exclude = override.Exclude
	}
	if override.Query != nil {
		out.Query = override.Query
	}
	if override.Pagination != nil {
		out.Pagination = override.Pagination
	}
	if override.IncludeDefinition != "" {
		out.IncludeDefinition = override.IncludeDefinition
	}
	return out
}

// ValidateFor enforces the rules in spec.md §4.1 against the reader kind
// that will own this config. include_definition is accepted only by the
// schema readers (ArchiveReader, DefinitionReader); depth, resolve_depth
// and the list/dict size caps also by FileSystemReader.
func (c RequestConfig) ValidateFor(kind shared.ReaderKind, path string, searchable bool) error {
	isSchemaReader := kind == shared.ReaderKindArchive || kind == shared.ReaderKindDefinition
	// FileSystemReader is depth-bounded like the schema readers (spec.md
	// §4.5: "lists entries recursively up to config.depth"), even though it
	// carries no schema definition and so gets no include_definition.
	isDepthBounded := isSchemaReader || kind == shared.ReaderKindFileSys

	if !isSchemaReader && c.IncludeDefinition != "" {
		return shared.NewConfigError(path, "include_definition is only valid on archive-like readers")
	}
	if !isDepthBounded {
		if c.Depth != 0 {
			return shared.NewConfigError(path, "depth is only valid on archive-like readers")
		}
		if c.ResolveDepth != 0 {
			return shared.NewConfigError(path, "resolve_depth is only valid on archive-like readers")
		}
		if c.MaxListSize != 0 || c.MaxDictSize != 0 {
			return shared.NewConfigError(path, "max_list_size/max_dict_size are only valid on archive-like readers")
		}
	}
	if (c.Query != nil || c.Pagination != nil) && !searchable {
		return shared.NewConfigError(path, "query/pagination are only valid on searchable keys or the request root")
	}
	if c.Directive != DirectivePlain && c.Directive != DirectiveResolved {
		return shared.NewConfigError(path, "invalid directive %q", c.Directive)
	}
	return nil
}
