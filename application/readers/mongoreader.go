package readers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

// mongoReader is the generic base shared by UploadReader, EntryReader,
// DatasetReader, and UserReader: all four talk to the same DocumentStore
// port and differ only in which id-kind they fetch and which query dialect
// they accept (spec.md §2, MongoReader family). The name keeps the
// teacher's "document database" vocabulary even though the concrete
// backend here is DynamoDB — the reader only sees ports.DocumentStore.
type mongoReader struct {
	kind     shared.ReaderKind
	store    ports.DocumentStore
	access   ports.AccessControl
	dispatch *Registry
	logger   *zap.Logger
	fetch    func(ctx context.Context, node core.GraphNode) (map[string]interface{}, error)

	// hasSingleTarget reports whether node already names one concrete
	// document of this kind (e.g. node.UploadID is set), as opposed to a
	// plural offload ("uploads") that must list-query instead.
	hasSingleTarget func(node core.GraphNode) bool
	// listFetch runs the reader's query dialect against the document
	// store, used when hasSingleTarget is false and level.Query carries a
	// matching filter (spec.md §6, UploadProcDataQuery/EntryQuery/
	// DatasetQuery).
	listFetch func(ctx context.Context, query *core.Query, pagination *core.Pagination) ([]map[string]interface{}, error)
}

func (r *mongoReader) Kind() shared.ReaderKind { return r.kind }

func (r *mongoReader) ValidateConfig(cfg core.RequestConfig, path string) error {
	return cfg.ValidateFor(r.kind, path, shared.IsSearchable(path))
}

func (r *mongoReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	doc, err := r.fetch(ctx, node)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *mongoReader) Close() error { return nil }

// Walk descends a document's fields per the normalized tree: scalar and
// nested-document fields are merged directly, while any field whose name
// is a searchable token or known id-field offloads to the matching reader
// (spec.md §4.3, Offloading transitions). When dispatched from a plural
// offload with no single target id but a matching Query, it lists
// documents instead of fetching one.
func (r *mongoReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	if r.listFetch != nil && r.hasSingleTarget != nil && !r.hasSingleTarget(node) && level.Query != nil {
		return r.walkList(ctx, node, level, tree)
	}

	doc, err := r.fetch(ctx, node)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrNotFound, "%v", err)
		return nil
	}

	r.populateDoc(ctx, node, node.CurrentPath, level, tree, doc)
	return nil
}

// walkList runs the reader's query dialect and populates a list of
// documents, one per match, each filtered to the requested fields
// (nested searchable-field offloading within a listed item is not
// supported — only scalar/nested-document fields are populated).
func (r *mongoReader) walkList(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	docs, err := r.listFetch(ctx, level.Query, level.Pagination)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrGeneral, "query %s: %v", r.kind, err)
		return nil
	}

	out := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		out = append(out, projectDoc(tree, doc))
	}
	core.Populate(node.ResultRoot, []string(node.CurrentPath), out, false)

	if level.Pagination != nil {
		response := map[string]interface{}{
			"next_page_after_value": level.Pagination.NextPageAfterValue,
			"page_size":             level.Pagination.PageSize,
		}
		core.Populate(node.ResultRoot, []string(node.CurrentPath.Append(shared.TokenResponse)), response, false)
	}
	return nil
}

// projectDoc narrows doc to the fields named in tree, recursing into
// nested-document children; it performs no reader offloads.
func projectDoc(tree *NormalizedNode, doc map[string]interface{}) map[string]interface{} {
	if tree == nil || tree.IsLeaf {
		return doc
	}
	out := make(map[string]interface{}, len(tree.Children))
	for name, child := range tree.Children {
		value, ok := doc[name]
		if !ok {
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			out[name] = projectDoc(child, nested)
		} else {
			out[name] = value
		}
	}
	return out
}

func (r *mongoReader) populateDoc(ctx context.Context, node core.GraphNode, path valueobjects.CanonicalPath, level core.RequestConfig, tree *NormalizedNode, doc map[string]interface{}) {
	if tree == nil || tree.IsLeaf {
		core.Populate(node.ResultRoot, []string(path), doc, false)
		return
	}

	for name, child := range tree.Children {
		value, ok := doc[name]
		childNode := node.WithPath(name, value)

		if kind, isSearchable := shared.ReaderKindFor(name); isSearchable && r.dispatch != nil {
			if err := r.offload(ctx, childNode, level.Merge(child.Config), child, kind); err != nil {
				node.Tree.Errors.Addf(shared.ErrGeneral, "offload %s: %v", name, err)
			}
			continue
		}
		if kind, isID := shared.IDReaderKindFor(name); isID && r.dispatch != nil && child.Config.ResolveType != core.ResolveTypeNone {
			if err := r.offload(ctx, childNode, level.Merge(child.Config), child, kind); err != nil {
				node.Tree.Errors.Addf(shared.ErrGeneral, "resolve %s: %v", name, err)
			}
			continue
		}
		if !ok {
			continue
		}
		core.Populate(node.ResultRoot, []string(childNode.CurrentPath), value, false)
	}
}

func (r *mongoReader) offload(ctx context.Context, node core.GraphNode, cfg core.RequestConfig, tree *NormalizedNode, kind shared.ReaderKind) error {
	reader, ok := r.dispatch.Dispatch(kind)
	if !ok {
		return fmt.Errorf("no reader registered for kind %q", kind)
	}
	defer reader.Close()
	return reader.Walk(ctx, node.WithReader(kind), cfg, tree)
}

// NewUploadReader returns a Reader fetching Upload documents, or listing
// them by query when dispatched plural ("uploads") with no single id.
func NewUploadReader(store ports.DocumentStore, access ports.AccessControl, dispatch *Registry, logger *zap.Logger) Reader {
	return &mongoReader{
		kind: shared.ReaderKindUpload, store: store, access: access, dispatch: dispatch, logger: logger,
		fetch: func(ctx context.Context, node core.GraphNode) (map[string]interface{}, error) {
			if ok, err := access.CanReadUpload(ctx, node.UserID, node.UploadID); err != nil {
				return nil, err
			} else if !ok {
				return nil, fmt.Errorf("access denied to upload %s", node.UploadID)
			}
			return store.GetUpload(ctx, node.UploadID)
		},
		hasSingleTarget: func(node core.GraphNode) bool { return node.UploadID != "" },
		listFetch: func(ctx context.Context, query *core.Query, pagination *core.Pagination) ([]map[string]interface{}, error) {
			if query == nil || query.Upload == nil {
				return nil, fmt.Errorf("uploads list requires an upload query")
			}
			return store.QueryUploads(ctx, query.Upload, pagination)
		},
	}
}

// NewEntryReader returns a Reader fetching Entry documents, or listing
// them by query when dispatched plural ("entries") with no single id.
func NewEntryReader(store ports.DocumentStore, access ports.AccessControl, dispatch *Registry, logger *zap.Logger) Reader {
	return &mongoReader{
		kind: shared.ReaderKindEntry, store: store, access: access, dispatch: dispatch, logger: logger,
		fetch: func(ctx context.Context, node core.GraphNode) (map[string]interface{}, error) {
			if ok, err := access.CanReadEntry(ctx, node.UserID, node.EntryID); err != nil {
				return nil, err
			} else if !ok {
				return nil, fmt.Errorf("access denied to entry %s", node.EntryID)
			}
			return store.GetEntry(ctx, node.EntryID)
		},
		hasSingleTarget: func(node core.GraphNode) bool { return node.EntryID != "" },
		listFetch: func(ctx context.Context, query *core.Query, pagination *core.Pagination) ([]map[string]interface{}, error) {
			if query == nil || query.Entry == nil {
				return nil, fmt.Errorf("entries list requires an entry query")
			}
			return store.QueryEntries(ctx, query.Entry, pagination)
		},
	}
}

// NewDatasetReader returns a Reader fetching Dataset documents, or
// listing them by query when dispatched plural ("m_datasets") with no
// single id.
func NewDatasetReader(store ports.DocumentStore, access ports.AccessControl, dispatch *Registry, logger *zap.Logger) Reader {
	return &mongoReader{
		kind: shared.ReaderKindDataset, store: store, access: access, dispatch: dispatch, logger: logger,
		fetch: func(ctx context.Context, node core.GraphNode) (map[string]interface{}, error) {
			id, err := valueobjects.NewDatasetID(datasetIDFromPath(node))
			if err != nil {
				return nil, err
			}
			return store.GetDataset(ctx, id)
		},
		hasSingleTarget: func(node core.GraphNode) bool { return datasetIDFromPath(node) != "" },
		listFetch: func(ctx context.Context, query *core.Query, pagination *core.Pagination) ([]map[string]interface{}, error) {
			if query == nil || query.Dataset == nil {
				return nil, fmt.Errorf("datasets list requires a dataset query")
			}
			return store.QueryDatasets(ctx, query.Dataset, pagination)
		},
	}
}

// NewUserReader returns a Reader fetching User documents.
func NewUserReader(store ports.DocumentStore, access ports.AccessControl, dispatch *Registry, logger *zap.Logger) Reader {
	return &mongoReader{
		kind: shared.ReaderKindUser, store: store, access: access, dispatch: dispatch, logger: logger,
		fetch: func(ctx context.Context, node core.GraphNode) (map[string]interface{}, error) {
			id, err := valueobjects.NewUserID(userIDFromPath(node))
			if err != nil {
				return nil, err
			}
			return store.GetUser(ctx, id)
		},
	}
}

// datasetIDFromPath and userIDFromPath recover the target id from the
// scalar value an offload was triggered on, since the document store calls
// above need a concrete id rather than the GraphNode's own upload/entry
// coordinates when dispatched from an id-field (e.g. entry.datasets[0]).
func datasetIDFromPath(node core.GraphNode) string {
	if s, ok := node.Archive.(string); ok {
		return s
	}
	return ""
}

func userIDFromPath(node core.GraphNode) string {
	if s, ok := node.Archive.(string); ok {
		return s
	}
	return ""
}
