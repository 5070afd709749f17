package ports

import "graphqueryreader/domain/core"

// SchemaRegistry resolves a definition name (as stored alongside an
// archive, or named by a module-path reference) to a walkable
// core.SchemaDefinition (spec.md §2, Definition; §4.4 metainfo references).
type SchemaRegistry interface {
	Resolve(name string) (core.SchemaDefinition, error)

	// ResolveCustom resolves path within a custom definitions package
	// embedded in an archive body, memoizing the parsed package under
	// poolKey (spec.md §4.6, custom definitions).
	ResolveCustom(poolKey string, raw map[string]interface{}, path []string) (core.SchemaDefinition, error)
}
