package core

import (
	"fmt"

	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

// SchemaDefinition is the minimal view a GraphNode needs of a section's
// metainfo definition in order to walk an archive shape-aware (resolve
// sub-section nesting, repeats-as-list, id fields). The concrete
// implementation lives in infrastructure/schemaregistry; this interface
// exists here so domain/core never imports infrastructure (spec.md §3,
// Definition).
type SchemaDefinition interface {
	// Name is the definition's qualified name, used in error messages and
	// the "__CACHE__" config-hash namespace.
	Name() string
	// ChildDefinition returns the definition for a named sub-section or
	// quantity, if any.
	ChildDefinition(property string) (SchemaDefinition, bool)
	// IsRepeated reports whether property is a repeating sub-section
	// (rendered as a list in the archive).
	IsRepeated(property string) bool
	// Quantities lists this definition's own leaf quantities, each flagged
	// with whether its type is itself a schema reference (spec.md §4.6,
	// reference rewriting).
	Quantities() []QuantityRef
	// SubSectionNames lists this definition's own nested sub-section names.
	SubSectionNames() []string
	// BaseSections lists the qualified names of sections this definition
	// extends. DefinitionReader emits them as names and does not walk into
	// them.
	BaseSections() []string
}

// QuantityRef names one of a SchemaDefinition's own quantities and whether
// its type is a schema reference, in which case DefinitionReader emits the
// target definition's qualified name (under "type_data") rather than a
// plain leaf.
type QuantityRef struct {
	Name        string
	IsReference bool
}

// GraphNode is the immutable cursor threaded through every reader
// invocation (spec.md §3, §4.4). All fields are read-only from the
// reader's perspective; advancing the walk always produces a new node via
// the With* methods or Goto.
type GraphNode struct {
	// UserID is the requesting principal, threaded through every offload so
	// access-control checks see who is asking rather than an anonymous id
	// (spec.md §4.5, Access control).
	UserID   valueobjects.UserID
	UploadID valueobjects.UploadID
	EntryID  valueobjects.EntryID

	// CurrentPath is where this node's value currently lives in the
	// logical archive tree, used to build canonical reference strings.
	CurrentPath valueobjects.CanonicalPath

	// ResultRoot is the map this node's reader writes into; RefResultRoot
	// is the sibling "references" tree used when a config's
	// resolve_inplace is false (spec.md §4.4, Stripping and resolution).
	ResultRoot    map[string]interface{}
	RefResultRoot map[string]interface{}

	// Archive is the value currently under the cursor; ArchiveRoot is the
	// root of the archive document Archive was reached from, needed so
	// local references ("/…", "#/…") can be resolved by walking down from
	// the top again.
	Archive     interface{}
	ArchiveRoot interface{}

	Definition SchemaDefinition

	// VisitedPath is the set of canonical-path keys already visited on the
	// current root-to-here chain, used for cycle detection (spec.md §8,
	// Cycle safety). Sharing the same underlying map across copies would
	// defeat branch-local cycle tracking, so With* methods that add to it
	// always allocate a new map.
	VisitedPath map[string]struct{}

	CurrentDepth int

	Reader shared.ReaderKind

	Tree *ResultTree
}

// NewRootGraphNode builds the root cursor a QueryService starts a request
// from, anchored at a searchable top-level key (spec.md §4.1, root
// dispatch).
func NewRootGraphNode(kind shared.ReaderKind, userID valueobjects.UserID, tree *ResultTree) GraphNode {
	return GraphNode{
		Reader:        kind,
		UserID:        userID,
		ResultRoot:    tree.Root,
		RefResultRoot: tree.RefRoot,
		VisitedPath:   make(map[string]struct{}),
		Tree:          tree,
	}
}

// WithPath returns a copy anchored at a deeper path, appending segment to
// CurrentPath and setting Archive to archive (ArchiveRoot is unchanged).
func (n GraphNode) WithPath(segment string, archive interface{}) GraphNode {
	n.CurrentPath = n.CurrentPath.Append(segment)
	n.Archive = archive
	n.CurrentDepth++
	return n
}

// WithDefinition returns a copy carrying a new schema definition, used when
// descending into a named sub-section.
func (n GraphNode) WithDefinition(def SchemaDefinition) GraphNode {
	n.Definition = def
	return n
}

// WithReader returns a copy dispatched to a different reader kind, used
// when a searchable token or id field offloads the walk (spec.md §4.3).
func (n GraphNode) WithReader(kind shared.ReaderKind) GraphNode {
	n.Reader = kind
	return n
}

// WithResultRoots returns a copy writing into a different pair of result
// trees, used when a reference resolves out-of-place and the remainder of
// that branch must write under RefRoot instead of Root.
func (n GraphNode) WithResultRoots(resultRoot, refResultRoot map[string]interface{}) GraphNode {
	n.ResultRoot = resultRoot
	n.RefResultRoot = refResultRoot
	return n
}

// visitedCopy returns a new visited-set containing the receiver's entries
// plus key, never mutating the receiver's map (GraphNode is copy-on-write).
func (n GraphNode) visitedCopy(key string) map[string]struct{} {
	out := make(map[string]struct{}, len(n.VisitedPath)+1)
	for k := range n.VisitedPath {
		out[k] = struct{}{}
	}
	out[key] = struct{}{}
	return out
}

// ErrCycleDetected is returned by Goto when a reference would revisit a
// path already on the current walk's chain (spec.md §8, Cycle safety).
type ErrCycleDetected struct {
	Path string
}

func (e *ErrCycleDetected) Error() string {
	return fmt.Sprintf("cycle detected: %s already visited on this branch", e.Path)
}

// ErrResolveDepthExceeded is returned by Goto when following a reference
// would exceed the config's resolve_depth cap (spec.md §4.1, §8).
type ErrResolveDepthExceeded struct {
	Limit int
}

func (e *ErrResolveDepthExceeded) Error() string {
	return fmt.Sprintf("resolve_depth exceeded (limit %d)", e.Limit)
}

// localLookup walks root by path components, treating a component that
// parses as a non-negative integer as a list index when the current value
// is a list (spec.md §4.4, Local goto: "integer components index lists").
func localLookup(root interface{}, path []string) (interface{}, error) {
	cur := root
	for _, seg := range path {
		switch v := cur.(type) {
		case map[string]interface{}:
			next, ok := v[seg]
			if !ok {
				return nil, fmt.Errorf("path segment %q not found", seg)
			}
			cur = next
		case []interface{}:
			idx, err := parseListIndex(seg)
			if err != nil {
				return nil, fmt.Errorf("path segment %q is not a valid list index: %w", seg, err)
			}
			if idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("list index %d out of range", idx)
			}
			cur = v[idx]
		default:
			return nil, fmt.Errorf("cannot descend into scalar at segment %q", seg)
		}
	}
	return cur, nil
}

func parseListIndex(seg string) (int, error) {
	n := 0
	if seg == "" {
		return 0, fmt.Errorf("empty index")
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not numeric")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// Goto follows a parsed Reference from the receiver node and produces the
// GraphNode it resolves to (spec.md §4.4):
//
//   - Local ("/…", "#/…"): strip prefix, walk ArchiveRoot by path
//     components, integer components index lists, produce a new GraphNode
//     anchored at the target within the same archive/result tree.
//   - Remote: parsed via ParseReference, rejected outright if it names
//     another installation. The caller (typically the Reference Resolver)
//     supplies fetchRemote, which loads the target upload's archive/raw
//     content; Goto descends from the returned archive root along the
//     reference's path and otherwise handles path, definition reset,
//     cycle check, and result-tree switching.
//
// When cfg.ResolveInplace is false, the canonical reference path string is
// left at the current result location by the caller, and the returned
// node's ResultRoot/RefResultRoot are swapped to RefRoot with CurrentPath
// reset to the canonical path, so the remainder of that branch writes into
// the sibling references tree instead of in place.
func (n GraphNode) Goto(ref *Reference, cfg RequestConfig, fetchRemote func(*Reference) (archive, archiveRoot interface{}, err error)) (GraphNode, error) {
	if ref.IsCrossInstallation() {
		return GraphNode{}, shared.NewArchiveError(nil, "cross-installation references are not supported: %s", ref.Raw)
	}

	canonical := ref.CanonicalPath(n.UploadID, n.EntryID)
	visitKey := canonical.Key()
	if _, seen := n.VisitedPath[visitKey]; seen {
		return GraphNode{}, &ErrCycleDetected{Path: canonical.String()}
	}
	if cfg.ResolveDepth > 0 && n.CurrentDepth+1 > cfg.ResolveDepth {
		return GraphNode{}, &ErrResolveDepthExceeded{Limit: cfg.ResolveDepth}
	}

	out := n
	out.VisitedPath = n.visitedCopy(visitKey)
	out.Definition = nil
	out.CurrentDepth = n.CurrentDepth + 1

	switch ref.Kind {
	case ReferenceLocal, ReferenceModulePath:
		target, err := localLookup(n.ArchiveRoot, ref.Path)
		if err != nil {
			return GraphNode{}, shared.NewArchiveError(err, "local reference %s could not be resolved", ref.Raw)
		}
		out.Archive = target
		out.CurrentPath = n.CurrentPath.Append(ref.Path...)

	case ReferenceRemote:
		if fetchRemote == nil {
			return GraphNode{}, shared.NewArchiveError(nil, "remote reference %s requires a fetch callback", ref.Raw)
		}
		archive, archiveRoot, err := fetchRemote(ref)
		if err != nil {
			return GraphNode{}, shared.NewArchiveError(err, "remote reference %s could not be resolved", ref.Raw)
		}
		out.UploadID = ref.UploadID
		if ref.TargetKind == TargetKindEntry {
			entryID, _ := valueobjects.NewEntryID(ref.IDOrFile)
			out.EntryID = entryID
		}
		out.Archive = archive
		out.ArchiveRoot = archiveRoot
		if len(ref.Path) > 0 {
			target, err := localLookup(archiveRoot, ref.Path)
			if err != nil {
				return GraphNode{}, shared.NewArchiveError(err, "remote reference %s could not be resolved", ref.Raw)
			}
			out.Archive = target
		}
		out.CurrentPath = canonical
	}

	if !cfg.ResolveInplace {
		out.ResultRoot = n.RefResultRoot
		out.CurrentPath = canonical
	}

	return out, nil
}
