package core

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"
)

// ResultTree is the recursively-merged map container shared by every
// reader in a request chain (spec.md §3, Result container). A single
// top-level response holds a primary tree and a sibling "references" tree
// used when resolve_inplace is false, plus a cache of already-materialized
// (path, config-hash) pairs.
type ResultTree struct {
	Root    map[string]interface{}
	RefRoot map[string]interface{}
	Cache   map[string]map[string]struct{} // path-key -> set of config hashes
	Errors  *ErrorAccumulator
	logger  *zap.Logger
}

// NewResultTree allocates an empty, ready-to-use container.
func NewResultTree(logger *zap.Logger) *ResultTree {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultTree{
		Root:    make(map[string]interface{}),
		RefRoot: make(map[string]interface{}),
		Cache:   make(map[string]map[string]struct{}),
		Errors:  NewErrorAccumulator(),
		logger:  logger,
	}
}

// SeenConfig reports whether (path, configHash) has already been
// materialized, and records it as seen either way — the caller uses the
// boolean to decide whether to skip redundant work (spec.md §3, the
// "__CACHE__" map; §5 Per-request pooling).
func (rt *ResultTree) SeenConfig(pathKey, configHash string) bool {
	set, ok := rt.Cache[pathKey]
	if !ok {
		set = make(map[string]struct{})
		rt.Cache[pathKey] = set
	}
	_, seen := set[configHash]
	set[configHash] = struct{}{}
	return seen
}

// Populate merges value into root at path, per _populate_result in
// spec.md §4.7: dicts merge recursively; lists merge positionally
// (extending with nil filler as needed); sets union; scalar conflicts are
// logged as a warning and the existing value is kept. pathLike marks a
// path as composed of literal string keys that must never be reinterpreted
// as list indices (used by FileSystemReader for numeric directory names).
func Populate(root map[string]interface{}, path []string, value interface{}, pathLike bool) {
	if len(path) == 0 {
		return
	}
	cur := root
	for i := 0; i < len(path)-1; i++ {
		seg := path[i]
		next, ok := cur[seg]
		if !ok {
			nextMap := make(map[string]interface{})
			cur[seg] = nextMap
			cur = nextMap
			continue
		}
		nextMap, ok := next.(map[string]interface{})
		if !ok {
			// A scalar/list already occupies this interior position;
			// replace it with a map so the rest of the path can be
			// written, matching "creating intermediate maps/lists" in
			// spec.md §2 (Result Merger).
			nextMap = make(map[string]interface{})
			cur[seg] = nextMap
		}
		cur = nextMap
	}
	last := path[len(path)-1]
	existing, had := cur[last]
	if !had {
		cur[last] = value
		return
	}
	cur[last] = mergeValue(existing, value, pathLike)
}

func mergeValue(existing, incoming interface{}, pathLike bool) interface{} {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}

	if em, ok := existing.(map[string]interface{}); ok {
		if im, ok := incoming.(map[string]interface{}); ok {
			return mergeMaps(em, im, pathLike)
		}
	}

	if el, ok := existing.([]interface{}); ok {
		if il, ok := incoming.([]interface{}); ok && !pathLike {
			return mergeLists(el, il)
		}
	}

	if es, ok := existing.(map[string]struct{}); ok {
		if is, ok := incoming.(map[string]struct{}); ok {
			return mergeSets(es, is)
		}
	}

	if reflect.TypeOf(existing) != reflect.TypeOf(incoming) {
		// Genuine type mismatch (e.g. a dict later overwritten by a
		// scalar): the later non-null value wins, unlike the same-type
		// scalar conflict below (spec.md §8, merge-commutativity).
		zap.L().Warn("merge conflict: type mismatch; incoming value wins",
			zap.Any("existing", existing), zap.Any("incoming", incoming))
		return incoming
	}

	// Same-type scalar conflict: keep the earlier value, log the conflict.
	if fmt.Sprintf("%v", existing) != fmt.Sprintf("%v", incoming) {
		zap.L().Warn("merge conflict at scalar value; keeping existing",
			zap.Any("existing", existing), zap.Any("incoming", incoming))
	}
	return existing
}

func mergeMaps(a, b map[string]interface{}, pathLike bool) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = mergeValue(existing, v, pathLike)
		} else {
			out[k] = v
		}
	}
	return out
}

func mergeLists(a, b []interface{}) []interface{} {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		var av, bv interface{}
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		switch {
		case av == nil:
			out[i] = bv
		case bv == nil:
			out[i] = av
		default:
			out[i] = mergeValue(av, bv, false)
		}
	}
	return out
}

func mergeSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// StripIfOversized replaces value with the "__INTERNAL__:<ref>" sentinel
// when it exceeds the configured list/dict thresholds (spec.md §4.4,
// Stripping; §8, Depth/size bounds). ref is the canonical reference string
// for the path being written, used as the sentinel's payload.
func StripIfOversized(value interface{}, cfg RequestConfig, ref string) (interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		if cfg.MaxListSize > 0 && len(v) > cfg.MaxListSize {
			return internalSentinel(ref), true
		}
	case map[string]interface{}:
		if cfg.MaxDictSize > 0 && len(v) > cfg.MaxDictSize {
			return internalSentinel(ref), true
		}
	}
	return value, false
}

func internalSentinel(ref string) string {
	return "__INTERNAL__:" + ref
}

// SortedStringKeys is a small determinism helper used by readers that
// iterate maps whose key order must be stable across the process
// (spec.md §8, Determinism).
func SortedStringKeys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
