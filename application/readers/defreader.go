package readers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"graphqueryreader/application/merge"
	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

// entryIDPathRegex matches the "entry_id:<id>.<path...>" custom-definition
// form (spec.md §4.6).
var entryIDPathRegex = regexp.MustCompile(`^entry_id:([^.]+)\.(.+)$`)

// defReader implements Reader over the schema registry, offloaded to
// when a required tree asks for "m_def" or a module-path reference
// rather than following a data-bearing archive quantity (spec.md §2,
// DefinitionReader; §4.4 metainfo references; §4.6). It serializes a
// definition's name, base_sections, quantities and sub_sections.
// Base sections are listed by qualified name and not walked; reference-
// typed quantities and sub-sections are written as their target
// definition's qualified name, not as a reference path string. With
// directive resolved only sub_sections recurse, bounded by
// resolve_depth/depth. It also resolves custom `m_def` schema pointers
// embedded in archive bodies against the owning archive's `definitions`
// package.
type defReader struct {
	registry ports.SchemaRegistry
	archives ports.ArchiveStore
	logger   *zap.Logger
}

// NewDefinitionReader returns a Reader backed by a schema registry port.
// archives may be nil, disabling the "entry_id:<id>.<path>" custom
// definition form (local "#/definitions/..." forms still work off
// node.ArchiveRoot).
func NewDefinitionReader(registry ports.SchemaRegistry, logger *zap.Logger) Reader {
	return NewDefinitionReaderWithArchives(registry, nil, logger)
}

// NewDefinitionReaderWithArchives returns a Reader additionally able to
// load a remote entry's archive when resolving an "entry_id:<id>.<path>"
// custom definition string (spec.md §4.6).
func NewDefinitionReaderWithArchives(registry ports.SchemaRegistry, archives ports.ArchiveStore, logger *zap.Logger) Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &defReader{registry: registry, archives: archives, logger: logger}
}

func (r *defReader) Kind() shared.ReaderKind { return shared.ReaderKindDefinition }

func (r *defReader) ValidateConfig(cfg core.RequestConfig, path string) error {
	return cfg.ValidateFor(shared.ReaderKindDefinition, path, false)
}

func (r *defReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	if node.Definition == nil {
		return nil, shared.NewArchiveError(nil, "no definition in scope at %s", node.CurrentPath.String())
	}
	return node.Definition.Name(), nil
}

func (r *defReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	def, err := r.resolveDefinition(ctx, node)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrArchiveError, "%v", err)
		return nil
	}

	pathKey := node.CurrentPath.String()
	if node.Tree.SeenConfig(pathKey, merge.ConfigHash(level)) {
		return nil
	}

	visited := map[string]struct{}{def.Name(): {}}
	serialized := r.serialize(def, level, pathKey, node.Tree, visited, 0)
	core.Populate(node.ResultRoot, []string(node.CurrentPath), serialized, false)
	return nil
}

func (r *defReader) Close() error { return nil }

// resolveDefinition finds the definition to serialize: a custom `m_def`
// string on the current archive body takes precedence (spec.md §4.6),
// falling back to whatever definition ArchiveReader already attached to
// the node (e.g. from a section's static schema).
func (r *defReader) resolveDefinition(ctx context.Context, node core.GraphNode) (core.SchemaDefinition, error) {
	if archiveMap, ok := node.Archive.(map[string]interface{}); ok {
		if raw, ok := archiveMap[shared.TokenDef].(string); ok && raw != "" {
			def, err := r.parseCustomDefinition(ctx, node, raw)
			if err == nil {
				return def, nil
			}
			if node.Definition == nil {
				return nil, err
			}
			node.Tree.Errors.Addf(shared.ErrArchiveError, "custom definition %q: %v", raw, err)
		}
	}
	if node.Definition != nil {
		return node.Definition, nil
	}
	return nil, fmt.Errorf("no definition in scope at %s", node.CurrentPath.String())
}

// parseCustomDefinition retrieves the definition a custom `m_def` string
// points to, per spec.md §4.6's three forms: a local pointer into the
// current archive's own `definitions` package, an "entry_id:<id>.<path>"
// pointer into another entry's archive, or (falling back) a proxy-style
// serialization treated as a bare qualified name against the global
// registry.
func (r *defReader) parseCustomDefinition(ctx context.Context, node core.GraphNode, mDef string) (core.SchemaDefinition, error) {
	if strings.HasPrefix(mDef, "#/") || strings.HasPrefix(mDef, "/") {
		root, ok := node.ArchiveRoot.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("no archive root to resolve local custom definition %q", mDef)
		}
		defs, ok := root["definitions"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("archive has no definitions package for %q", mDef)
		}
		poolKey := node.UploadID.String() + ":" + node.EntryID.String()
		return r.registry.ResolveCustom(poolKey, defs, splitMDefPath(mDef))
	}

	if m := entryIDPathRegex.FindStringSubmatch(mDef); m != nil {
		if r.archives == nil {
			return nil, fmt.Errorf("no archive store configured to resolve %q", mDef)
		}
		eid, err := valueobjects.NewEntryID(m[1])
		if err != nil {
			return nil, err
		}
		archive, _, err := r.archives.GetArchive(ctx, eid)
		if err != nil {
			return nil, fmt.Errorf("load owning archive for %q: %w", mDef, err)
		}
		defs, ok := archive["definitions"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entry %s has no definitions package", eid)
		}
		poolKey := "entry:" + eid.String()
		return r.registry.ResolveCustom(poolKey, defs, strings.Split(m[2], "."))
	}

	// Proxy-style serialization: fall back to treating the raw string as a
	// dotted qualified name resolved against the global registry.
	return r.registry.Resolve(mDef)
}

// splitMDefPath turns "#/definitions/Section/quantity" into
// ["Section", "quantity"], discarding the leading "#"/"/" and
// "definitions" tokens (spec.md §4.6).
func splitMDefPath(mDef string) []string {
	parts := strings.Split(mDef, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "#" || p == "definitions" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// serialize renders def's own shape as a result map: name, base_sections
// as their qualified names, quantities (a reference-typed one as
// {"type_data": <target's qualified name>}), and sub_sections (each with
// its section's qualified name and repeats flag). With directive resolved,
// sub-sections recurse (bounded by resolve_depth/depth, deduped per-path
// by config hash, guarded against cycles by visited); base sections and
// quantity targets are never expanded. Otherwise only the definition's own
// keys are emitted.
func (r *defReader) serialize(def core.SchemaDefinition, level core.RequestConfig, pathKey string, tree *core.ResultTree, visited map[string]struct{}, depth int) map[string]interface{} {
	out := map[string]interface{}{"name": def.Name()}

	if bases := def.BaseSections(); len(bases) > 0 {
		refs := make([]interface{}, len(bases))
		for i, b := range bases {
			refs[i] = b
		}
		out["base_sections"] = refs
	}

	if quantities := def.Quantities(); len(quantities) > 0 {
		qOut := make(map[string]interface{}, len(quantities))
		for _, q := range quantities {
			if q.IsReference {
				if target, ok := def.ChildDefinition(q.Name); ok {
					qOut[q.Name] = map[string]interface{}{"type_data": target.Name()}
					continue
				}
			}
			qOut[q.Name] = map[string]interface{}{"name": q.Name}
		}
		out["quantities"] = qOut
	}

	if subNames := def.SubSectionNames(); len(subNames) > 0 {
		subOut := make(map[string]interface{}, len(subNames))
		for _, name := range subNames {
			child, ok := def.ChildDefinition(name)
			if !ok {
				continue
			}
			entry := map[string]interface{}{
				"sub_section": child.Name(),
				"repeats":     def.IsRepeated(name),
			}
			if level.Directive == core.DirectiveResolved && withinDepthBudget(level, depth) {
				if _, cyclic := visited[child.Name()]; !cyclic {
					childPathKey := pathKey + "/" + name
					if !tree.SeenConfig(childPathKey, merge.ConfigHash(level)) {
						childVisited := make(map[string]struct{}, len(visited)+1)
						for k := range visited {
							childVisited[k] = struct{}{}
						}
						childVisited[child.Name()] = struct{}{}
						entry["definition"] = r.serialize(child, level, childPathKey, tree, childVisited, depth+1)
					}
				}
			}
			subOut[name] = entry
		}
		out["sub_sections"] = subOut
	}

	return out
}

// withinDepthBudget reports whether recursing one more sub-section level
// stays within both resolve_depth and depth caps (0 means unbounded).
func withinDepthBudget(level core.RequestConfig, depth int) bool {
	if level.ResolveDepth > 0 && depth+1 > level.ResolveDepth {
		return false
	}
	if level.Depth > 0 && depth+1 > level.Depth {
		return false
	}
	return true
}
