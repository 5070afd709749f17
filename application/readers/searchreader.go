package readers

import (
	"context"

	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

// searchReader implements Reader over the full-text/structured search
// index, offloaded to from Entry.metadata and the top-level "search" key
// (spec.md §2, ElasticSearchReader; §6, SearchQuery dialect).
type searchReader struct {
	index  ports.SearchIndex
	access ports.AccessControl
	logger *zap.Logger
}

// NewSearchReader returns a Reader backed by a search index port.
func NewSearchReader(index ports.SearchIndex, access ports.AccessControl, logger *zap.Logger) Reader {
	return &searchReader{index: index, access: access, logger: logger}
}

func (r *searchReader) Kind() shared.ReaderKind { return shared.ReaderKindSearch }

func (r *searchReader) ValidateConfig(cfg core.RequestConfig, path string) error {
	return cfg.ValidateFor(shared.ReaderKindSearch, path, true)
}

func (r *searchReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	return r.index.GetMetadata(ctx, node.EntryID)
}

func (r *searchReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	if level.Query != nil && level.Query.Search != nil {
		ids, err := r.index.Search(ctx, level.Query.Search, level.Pagination)
		if err != nil {
			node.Tree.Errors.Addf(shared.ErrGeneral, "search query failed: %v", err)
			return nil
		}
		results := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			results = append(results, id.String())
		}
		core.Populate(node.ResultRoot, []string(node.CurrentPath), results, false)

		if level.Pagination != nil {
			response := map[string]interface{}{
				"next_page_after_value": level.Pagination.NextPageAfterValue,
				"page_size":             level.Pagination.PageSize,
			}
			core.Populate(node.ResultRoot, []string(node.CurrentPath.Append(shared.TokenResponse)), response, false)
		}
		return nil
	}

	meta, err := r.index.GetMetadata(ctx, node.EntryID)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrNotFound, "metadata for %s: %v", node.EntryID, err)
		return nil
	}
	if tree == nil || tree.IsLeaf {
		core.Populate(node.ResultRoot, []string(node.CurrentPath), meta, false)
		return nil
	}
	for name, child := range tree.Children {
		value, ok := meta[name]
		if !ok {
			continue
		}
		childNode := node.WithPath(name, value)
		_ = child
		core.Populate(node.ResultRoot, []string(childNode.CurrentPath), value, false)
	}
	return nil
}

func (r *searchReader) Close() error { return nil }
