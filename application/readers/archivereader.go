package readers

import (
	"context"

	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
	"graphqueryreader/pkg/globmatch"
)

// archiveReader implements Reader over the schema-bearing scientific
// archive store, offloaded to from Entry.archive and remote "archive"
// references (spec.md §2, ArchiveReader — the largest single reader, since
// it owns reference resolution, schema-aware nesting, and size/depth
// stripping together).
type archiveReader struct {
	store    ports.ArchiveStore
	registry ports.SchemaRegistry
	access   ports.AccessControl
	dispatch *Registry
	resolver *ReferenceResolver
	logger   *zap.Logger
}

// NewArchiveReader returns a Reader backed by an archive store, schema
// registry, shared reference resolver, and the reader registry it offloads
// to DefinitionReader through when include_definition asks for a section's
// schema to be written out (spec.md §4.4 step 3). dispatch may be nil,
// falling back to writing just the definition's qualified name.
func NewArchiveReader(store ports.ArchiveStore, registry ports.SchemaRegistry, access ports.AccessControl, dispatch *Registry, resolver *ReferenceResolver, logger *zap.Logger) Reader {
	return &archiveReader{store: store, registry: registry, access: access, dispatch: dispatch, resolver: resolver, logger: logger}
}

func (r *archiveReader) Kind() shared.ReaderKind { return shared.ReaderKindArchive }

func (r *archiveReader) ValidateConfig(cfg core.RequestConfig, path string) error {
	return cfg.ValidateFor(shared.ReaderKindArchive, path, false)
}

func (r *archiveReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	archive, _, err := r.store.GetArchive(ctx, node.EntryID)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// Walk loads the entry's archive once, resolves its root schema
// definition, and descends per the normalized tree. Every recursive step
// goes through walkValue so the same stripping/reference/depth logic
// applies uniformly whether the cursor is at the archive root or nested
// many levels deep.
func (r *archiveReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	archive, defName, err := r.store.GetArchive(ctx, node.EntryID)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrNotFound, "archive for %s: %v", node.EntryID, err)
		return nil
	}

	var def core.SchemaDefinition
	if r.registry != nil && defName != "" {
		def, err = r.registry.Resolve(defName)
		if err != nil {
			node.Tree.Errors.Addf(shared.ErrGeneral, "resolve definition %q: %v", defName, err)
		}
	}

	root := node
	root.Archive = archive
	root.ArchiveRoot = archive
	root.Definition = def

	if level.IncludeDefinition == core.IncludeDefinitionBoth && def != nil {
		r.emitDefinition(ctx, root, level)
	}

	return r.walkValue(ctx, root, level, tree, archive)
}

// emitDefinition offloads to the DefinitionReader to serialize node's
// schema definition under the current path's "m_def" subkey (spec.md
// §4.4 step 3, §4.6). DefinitionReader owns the path-cache-miss check
// (ResultTree.SeenConfig) that decides whether the definition has already
// been emitted for this (path, config) pair.
func (r *archiveReader) emitDefinition(ctx context.Context, node core.GraphNode, level core.RequestConfig) {
	defPath := node.CurrentPath.Append(shared.TokenDef)

	if r.dispatch == nil {
		core.Populate(node.ResultRoot, []string(defPath), node.Definition.Name(), false)
		return
	}
	reader, ok := r.dispatch.Dispatch(shared.ReaderKindDefinition)
	if !ok {
		core.Populate(node.ResultRoot, []string(defPath), node.Definition.Name(), false)
		return
	}
	defer reader.Close()

	defNode := node
	defNode.CurrentPath = defPath
	defLevel := core.RequestConfig{Directive: level.Directive, Depth: level.Depth, ResolveDepth: level.ResolveDepth}
	if err := reader.Walk(ctx, defNode, defLevel, nil); err != nil {
		node.Tree.Errors.Addf(shared.ErrGeneral, "emit definition at %s: %v", defPath.String(), err)
	}
}

func (r *archiveReader) walkValue(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode, value interface{}) error {
	if level.Depth > 0 && node.CurrentDepth > level.Depth {
		switch value.(type) {
		case map[string]interface{}, []interface{}:
			value = shared.TokenInternal + ":" + node.CurrentPath.String()
		}
		core.Populate(node.ResultRoot, []string(node.CurrentPath), value, false)
		return nil
	}

	if ref, isRef := refString(value); isRef {
		return r.walkReference(ctx, node, level, ref)
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return r.walkMap(ctx, node, level, tree, v)
	case []interface{}:
		return r.walkList(ctx, node, level, tree, v)
	default:
		core.Populate(node.ResultRoot, []string(node.CurrentPath), v, false)
		return nil
	}
}

func (r *archiveReader) walkMap(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode, m map[string]interface{}) error {
	if stripped, did := core.StripIfOversized(m, level, node.CurrentPath.String()); did {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), stripped, false)
		return nil
	}

	if tree == nil || tree.IsLeaf {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), m, false)
		return nil
	}

	for name, child := range tree.Children {
		value, ok := m[name]
		if !ok {
			continue
		}
		if !globmatch.Allowed(name, level.Include, level.Exclude) {
			continue
		}
		childLevel := level.Merge(child.Config)
		childNode := node
		childNode.CurrentPath = node.CurrentPath.Append(name)
		childNode.CurrentDepth = node.CurrentDepth + 1
		if node.Definition != nil {
			if def, ok := node.Definition.ChildDefinition(name); ok {
				childNode.Definition = def
			}
		}
		if err := r.walkValue(ctx, childNode, childLevel, child, value); err != nil {
			node.Tree.Errors.Addf(shared.ErrGeneral, "%s: %v", name, err)
		}
	}
	return nil
}

func (r *archiveReader) walkList(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode, list []interface{}) error {
	if stripped, did := core.StripIfOversized(list, level, node.CurrentPath.String()); did {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), stripped, false)
		return nil
	}

	out := make([]interface{}, len(list))
	for i, item := range list {
		itemNode := node
		itemNode.CurrentDepth = node.CurrentDepth + 1
		itemResult, err := r.materialize(ctx, itemNode, level, tree, item)
		if err != nil {
			node.Tree.Errors.Addf(shared.ErrGeneral, "[%d]: %v", i, err)
			continue
		}
		out[i] = itemResult
	}
	core.Populate(node.ResultRoot, []string(node.CurrentPath), out, false)
	return nil
}

// materialize evaluates a single scalar/map/reference value in isolation
// (used for list elements, which are written back into a freshly built
// slice rather than merged positionally into the shared result tree).
func (r *archiveReader) materialize(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode, value interface{}) (interface{}, error) {
	if ref, isRef := refString(value); isRef {
		resolved, err := r.resolveReferenceValue(ctx, node, level, ref)
		if err != nil {
			return nil, err
		}
		return resolved, nil
	}
	switch v := value.(type) {
	case map[string]interface{}:
		if tree == nil || tree.IsLeaf {
			return v, nil
		}
		out := make(map[string]interface{}, len(tree.Children))
		for name, child := range tree.Children {
			fv, ok := v[name]
			if !ok {
				continue
			}
			childLevel := level.Merge(child.Config)
			resolved, err := r.materialize(ctx, node, childLevel, child, fv)
			if err != nil {
				return nil, err
			}
			out[name] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// walkReference follows a reference-typed quantity according to its
// directive: plain leaves the string as-is, resolved follows it through
// the ReferenceResolver (GraphNode.Goto) and writes the target's value —
// in place when resolve_inplace is set, otherwise under the references
// tree at the target's canonical path, leaving that path string at the
// referring location (spec.md §4.4, Resolution).
func (r *archiveReader) walkReference(ctx context.Context, node core.GraphNode, level core.RequestConfig, raw string) error {
	if level.Directive != core.DirectiveResolved {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), raw, false)
		return nil
	}

	ref, err := core.ParseReference(raw)
	var target core.GraphNode
	if err == nil {
		target, err = r.resolver.Resolve(ctx, node, ref, level)
	}
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrArchiveError, "reference %s: %v", raw, err)
		core.Populate(node.ResultRoot, []string(node.CurrentPath), raw, false)
		return nil
	}
	if level.ResolveInplace || target.ResultRoot == nil {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), target.Archive, false)
		return nil
	}
	core.Populate(node.ResultRoot, []string(node.CurrentPath), target.CurrentPath.String(), false)
	core.Populate(target.ResultRoot, []string(target.CurrentPath), target.Archive, false)
	return nil
}

func (r *archiveReader) resolveReferenceValue(ctx context.Context, node core.GraphNode, level core.RequestConfig, raw string) (interface{}, error) {
	ref, err := core.ParseReference(raw)
	if err != nil {
		return nil, err
	}

	target, err := r.resolver.Resolve(ctx, node, ref, level)
	if err != nil {
		return nil, err
	}

	return target.Archive, nil
}

// refString reports whether value looks like a reference string (spec.md
// §3, Reference URL): it begins with "/", "#" or "..". Dotted module paths
// are not recognized here, so a plain dotted string stays a scalar.
func refString(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	if len(s) == 0 {
		return "", false
	}
	switch s[0] {
	case '/', '#':
		return s, true
	}
	if len(s) > 1 && s[0] == '.' && s[1] == '.' {
		return s, true
	}
	return "", false
}

func (r *archiveReader) Close() error { return nil }
