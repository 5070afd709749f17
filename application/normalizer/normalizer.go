// Package normalizer turns a raw, JSON-shaped required tree into the
// normalized form every reader walks: leaves are fully-validated
// core.RequestConfig values, interior nodes carry an optional inherited
// config (spec.md §4.1).
package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"graphqueryreader/application/readers"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

var validate = validator.New()

// Normalizer parses and validates a raw required tree.
type Normalizer struct{}

// New returns a ready-to-use Normalizer. It holds no state; every call is
// independent, matching the engine's single-threaded, reentrant-across-
// requests model (spec.md §5).
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize walks raw (the parsed JSON body of a required tree) and
// produces the NormalizedNode the root reader starts its walk from.
// parent is the config inherited from above (DefaultRequestConfig at the
// true root); kind is the reader kind that will own this subtree, used to
// validate which fields are legal here.
func (n *Normalizer) Normalize(raw interface{}, parent core.RequestConfig, kind shared.ReaderKind, path string) (*readers.NormalizedNode, error) {
	switch v := raw.(type) {
	case string:
		cfg, err := coerceShorthand(v, parent)
		if err != nil {
			return nil, shared.NewConfigError(path, "%v", err)
		}
		if err := cfg.ValidateFor(kind, path, shared.IsSearchable(lastSegment(path))); err != nil {
			return nil, err
		}
		return &readers.NormalizedNode{Config: cfg, IsLeaf: true}, nil

	case map[string]interface{}:
		return n.normalizeMap(v, parent, kind, path)

	default:
		return nil, shared.NewConfigError(path, "required tree entries must be a string shorthand or an object")
	}
}

func (n *Normalizer) normalizeMap(m map[string]interface{}, parent core.RequestConfig, kind shared.ReaderKind, path string) (*readers.NormalizedNode, error) {
	level := parent

	if raw, ok := m[shared.TokenConfig]; ok {
		overrideMap, ok := raw.(map[string]interface{})
		if !ok {
			return nil, shared.NewConfigError(path, "__CONFIG__ must be an object")
		}
		override, err := decodeRequestConfig(overrideMap)
		if err != nil {
			return nil, shared.NewConfigError(path, "%v", err)
		}
		if err := validate.Struct(override); err != nil {
			return nil, shared.NewConfigError(path, "invalid __CONFIG__: %v", err)
		}
		level = parent.Merge(override)
	}

	if raw, ok := m[shared.TokenRequest]; ok {
		shorthandCfg, err := coerceShorthand(raw, parent)
		if err != nil {
			return nil, shared.NewConfigError(path, "%v", err)
		}
		level = level.Merge(shorthandCfg)
	}

	explicitKeys := make(map[string]struct{}, len(m))
	for key := range m {
		if key == shared.TokenConfig || key == shared.TokenRequest || key == shared.TokenWildcard {
			continue
		}
		name, _ := parseKey(key)
		explicitKeys[name] = struct{}{}
	}

	node := &readers.NormalizedNode{Config: level, Children: make(map[string]*readers.NormalizedNode)}

	if wildcardRaw, ok := m[shared.TokenWildcard]; ok {
		wildcardNode, err := n.Normalize(wildcardRaw, level, kind, path+"."+shared.TokenWildcard)
		if err != nil {
			return nil, err
		}
		node.Children[shared.TokenWildcard] = wildcardNode
	}

	for key, value := range m {
		if key == shared.TokenConfig || key == shared.TokenRequest || key == shared.TokenWildcard {
			continue
		}
		name, index := parseKey(key)
		_ = index // index spec informs reader-side iteration, stored on the child leaf config below

		childKind := kind
		if k, ok := shared.ReaderKindFor(name); ok {
			childKind = k
		} else if k, ok := shared.IDReaderKindFor(name); ok {
			childKind = k
		}

		childPath := path + "." + name
		child, err := n.Normalize(value, level, childKind, childPath)
		if err != nil {
			return nil, err
		}
		if child.IsLeaf {
			child.Config.PropertyName = name
			child.Config.Index = index
		}
		node.Children[name] = child
	}

	if len(node.Children) == 0 {
		node.IsLeaf = true
		node.Children = nil
		if err := level.ValidateFor(kind, path, shared.IsSearchable(lastSegment(path))); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// coerceShorthand accepts either a string directive shorthand or a
// pre-built config-shaped map, per spec.md §4.1 ("*"/"include" → plain,
// "include-resolved" → resolved).
func coerceShorthand(raw interface{}, parent core.RequestConfig) (core.RequestConfig, error) {
	switch v := raw.(type) {
	case string:
		switch v {
		case "*", "include":
			return core.RequestConfig{Directive: core.DirectivePlain}, nil
		case "include-resolved":
			return core.RequestConfig{Directive: core.DirectiveResolved}, nil
		default:
			return core.RequestConfig{}, fmt.Errorf("unrecognized shorthand %q", v)
		}
	case map[string]interface{}:
		return decodeRequestConfig(v)
	default:
		return core.RequestConfig{}, fmt.Errorf("m_request must be a string or an object")
	}
}

// decodeRequestConfig builds a core.RequestConfig from a raw JSON-shaped
// map, the hand-rolled equivalent of the teacher's struct-tag-driven
// config decoding (spec.md §9, Dynamic config objects): no reflection-
// based library in the pack targets this "all fields optional, validate
// after merge" shape, so fields are read out individually.
func decodeRequestConfig(m map[string]interface{}) (core.RequestConfig, error) {
	cfg := core.RequestConfig{}
	if v, ok := m["directive"].(string); ok {
		cfg.Directive = core.Directive(v)
	}
	if v, ok := m["resolve_type"].(string); ok {
		cfg.ResolveType = core.ResolveType(v)
	}
	if v, ok := m["resolve_inplace"].(bool); ok {
		cfg.ResolveInplace = v
	}
	if v, ok := numberField(m, "resolve_depth"); ok {
		cfg.ResolveDepth = v
	}
	if v, ok := numberField(m, "depth"); ok {
		cfg.Depth = v
	}
	if v, ok := numberField(m, "max_list_size"); ok {
		cfg.MaxListSize = v
	}
	if v, ok := numberField(m, "max_dict_size"); ok {
		cfg.MaxDictSize = v
	}
	if v, ok := m["include"].([]interface{}); ok {
		cfg.Include = toStrings(v)
	}
	if v, ok := m["exclude"].([]interface{}); ok {
		cfg.Exclude = toStrings(v)
	}
	if v, ok := m["include_definition"].(string); ok {
		cfg.IncludeDefinition = core.IncludeDefinition(v)
	}
	if v, ok := m["query"].(map[string]interface{}); ok {
		query, err := decodeQuery(v)
		if err != nil {
			return cfg, err
		}
		cfg.Query = query
	}
	if v, ok := m["pagination"].(map[string]interface{}); ok {
		cfg.Pagination = decodePagination(v)
	}
	return cfg, nil
}

func decodeQuery(m map[string]interface{}) (*core.Query, error) {
	q := &core.Query{}
	if upload, ok := m["upload"].(map[string]interface{}); ok {
		uq := &core.UploadQuery{}
		if v, ok := upload["user_id"].(string); ok {
			uq.UserID = v
		}
		if v, ok := upload["upload_name"].(string); ok {
			uq.UploadName = v
		}
		if v, ok := upload["published_only"].(bool); ok {
			uq.PublishedOnly = v
		}
		if v, ok := upload["processing_successful"].(bool); ok {
			uq.ProcessingSuccessful = &v
		}
		if v, ok := upload["authors"].([]interface{}); ok {
			uq.Authors = toStrings(v)
		}
		q.Upload = uq
	}
	if entry, ok := m["entry"].(map[string]interface{}); ok {
		eq := &core.EntryQuery{}
		if v, ok := entry["upload_id"].([]interface{}); ok {
			eq.UploadID = toStrings(v)
		}
		if v, ok := entry["entry_id"].([]interface{}); ok {
			eq.EntryID = toStrings(v)
		}
		if v, ok := entry["datasets"].([]interface{}); ok {
			eq.Datasets = toStrings(v)
		}
		q.Entry = eq
	}
	if dataset, ok := m["dataset"].(map[string]interface{}); ok {
		dq := &core.DatasetQuery{}
		if v, ok := dataset["dataset_name"].(string); ok {
			dq.DatasetName = v
		}
		if v, ok := dataset["user_id"].(string); ok {
			dq.UserID = v
		}
		q.Dataset = dq
	}
	if search, ok := m["search"].(map[string]interface{}); ok {
		sq := &core.SearchQuery{}
		if v, ok := search["keyword"].(string); ok {
			sq.Keyword = v
		}
		if v, ok := search["terms"].(map[string]interface{}); ok {
			sq.Terms = v
		}
		q.Search = sq
	}
	return q, nil
}

func decodePagination(m map[string]interface{}) *core.Pagination {
	p := &core.Pagination{}
	if v, ok := numberField(m, "page_size"); ok {
		p.PageSize = v
	}
	if v, ok := m["order_by"].(string); ok {
		p.OrderBy = v
	}
	if v, ok := m["order_desc"].(bool); ok {
		p.OrderDesc = v
	}
	if v, ok := m["page_after_value"].(string); ok {
		p.PageAfterValue = v
	}
	return p
}

func numberField(m map[string]interface{}, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func toStrings(raw []interface{}) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseKey splits a required-tree key into its bare name and optional
// bracketed index suffix, `name[i]` or `name[a:b]` (spec.md §4.1, §4.7
// _parse_key).
func parseKey(key string) (string, *core.IndexSpec) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, nil
	}
	name := key[:open]
	inner := key[open+1 : len(key)-1]

	if !strings.Contains(inner, ":") {
		n, err := strconv.Atoi(inner)
		if err != nil {
			return key, nil
		}
		return name, &core.IndexSpec{Single: &n}
	}

	parts := strings.SplitN(inner, ":", 2)
	spec := &core.IndexSpec{IsRange: true}
	if parts[0] != "" {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			spec.Start = &n
		}
	}
	if parts[1] != "" {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			spec.End = &n
		}
	}
	return name, spec
}

func lastSegment(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// NormaliseIndex resolves an IndexSpec against a concrete length into a
// half-open [start, end) iteration range, clamping out-of-range endpoints
// (spec.md §4.7, _normalise_index).
func NormaliseIndex(spec *core.IndexSpec, length int) (int, int) {
	if spec == nil {
		return 0, length
	}
	if spec.Single != nil {
		i := clampIndex(*spec.Single, length)
		return i, i + 1
	}
	start := 0
	if spec.Start != nil {
		start = clampIndex(*spec.Start, length)
	}
	end := length
	if spec.End != nil {
		end = clampIndex(*spec.End, length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
