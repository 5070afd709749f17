// Package readers implements the family of specialized readers that walk
// a GraphNode through one backend each, sharing a single capability set
// and dispatched through a fixed lookup table rather than type-switch
// polymorphism (spec.md §2, §9).
package readers

import (
	"context"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

// Reader is the capability set every specialized reader implements
// (spec.md §2): Walk descends one GraphNode into its children according to
// a normalized RequestConfig tree (reference values are followed inside
// Walk through the shared ReferenceResolver, not through a Reader method),
// ValidateConfig rejects configs the reader kind can't honor, Read
// fetches the raw backend value at the node's current position, and Close
// releases any per-request handles the reader opened (upload file
// handles, cached definition packages).
type Reader interface {
	// Kind identifies which ReaderKind this instance implements.
	Kind() shared.ReaderKind

	// ValidateConfig enforces reader-specific RequestConfig rules beyond
	// the generic ones in core.RequestConfig.ValidateFor.
	ValidateConfig(cfg core.RequestConfig, path string) error

	// Read fetches the value at node's current position from the backend,
	// without recursing into children.
	Read(ctx context.Context, node core.GraphNode) (interface{}, error)

	// Walk descends node according to the normalized subtree rooted at
	// tree, writing results into node.ResultRoot/RefResultRoot as it goes.
	// level is the already-merged RequestConfig in effect at node.
	Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error

	// Close releases per-request resources this reader instance opened.
	Close() error
}

// NormalizedNode is one level of a required tree after normalization
// (spec.md §4.1): either a leaf carrying only a RequestConfig, or an
// interior node carrying named children plus its own inherited config.
type NormalizedNode struct {
	Config   core.RequestConfig
	Children map[string]*NormalizedNode
	IsLeaf   bool
}

// Registry is the fixed searchable-token dispatch table mapping a
// ReaderKind to the factory that builds a fresh Reader instance scoped to
// one request (spec.md §9: "a lookup table, not a class-introspection
// switch"). Factories are registered by infrastructure/di at startup.
type Registry struct {
	factories map[shared.ReaderKind]func() Reader
}

// NewRegistry returns an empty registry; callers register factories with
// Register before the first Dispatch call.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[shared.ReaderKind]func() Reader)}
}

// Register installs the factory for a reader kind, overwriting any
// previous registration for the same kind.
func (r *Registry) Register(kind shared.ReaderKind, factory func() Reader) {
	r.factories[kind] = factory
}

// Dispatch builds a fresh Reader for kind, or reports that no factory is
// registered — callers surface this as a GENERAL query error rather than
// panicking, since an unregistered kind is a wiring defect, not user input.
func (r *Registry) Dispatch(kind shared.ReaderKind) (Reader, bool) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, false
	}
	return factory(), true
}
