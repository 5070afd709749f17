package readers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

type fakeSearchIndex struct {
	metadata map[string]map[string]interface{}
	searchIDs []valueobjects.EntryID
}

func (f *fakeSearchIndex) GetMetadata(ctx context.Context, id valueobjects.EntryID) (map[string]interface{}, error) {
	doc, ok := f.metadata[id.String()]
	if !ok {
		return nil, fmt.Errorf("entry %s not indexed", id)
	}
	return doc, nil
}

func (f *fakeSearchIndex) Search(ctx context.Context, query *core.SearchQuery, pagination *core.Pagination) ([]valueobjects.EntryID, error) {
	return f.searchIDs, nil
}

func TestSearchReaderReadReturnsMetadata(t *testing.T) {
	idx := &fakeSearchIndex{metadata: map[string]map[string]interface{}{"E1": {"keyword": "x"}}}
	reader := NewSearchReader(idx, nil, zap.NewNop())

	entryID, _ := valueobjects.NewEntryID("E1")
	doc, err := reader.Read(context.Background(), core.GraphNode{EntryID: entryID})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"keyword": "x"}, doc)
}

func TestSearchReaderWalkRunsQueryWhenPresent(t *testing.T) {
	e1, _ := valueobjects.NewEntryID("E1")
	e2, _ := valueobjects.NewEntryID("E2")
	idx := &fakeSearchIndex{searchIDs: []valueobjects.EntryID{e1, e2}}
	reader := NewSearchReader(idx, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("u")
	node := core.NewRootGraphNode(shared.ReaderKindSearch, userID, tree)
	node.CurrentPath = valueobjects.CanonicalPath{"search"}

	level := core.RequestConfig{Directive: core.DirectivePlain, Query: &core.Query{Search: &core.SearchQuery{Keyword: "x"}}}
	err := reader.Walk(context.Background(), node, level, nil)
	require.NoError(t, err)

	list, ok := tree.Root["search"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"E1", "E2"}, list)
}

func TestSearchReaderWalkFallsBackToMetadataWithoutQuery(t *testing.T) {
	idx := &fakeSearchIndex{metadata: map[string]map[string]interface{}{"E1": {"keyword": "x", "other": "y"}}}
	reader := NewSearchReader(idx, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("u")
	entryID, _ := valueobjects.NewEntryID("E1")
	node := core.NewRootGraphNode(shared.ReaderKindSearch, userID, tree)
	node.EntryID = entryID
	node.CurrentPath = valueobjects.CanonicalPath{"metadata"}

	level := core.RequestConfig{Directive: core.DirectivePlain}
	normTree := &NormalizedNode{Children: map[string]*NormalizedNode{
		"keyword": {IsLeaf: true},
	}}

	err := reader.Walk(context.Background(), node, level, normTree)
	require.NoError(t, err)

	metadata, ok := tree.Root["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "x", metadata["keyword"])
	assert.NotContains(t, metadata, "other")
}

func TestSearchReaderWalkMissingEntryRecordsNotFoundError(t *testing.T) {
	idx := &fakeSearchIndex{metadata: map[string]map[string]interface{}{}}
	reader := NewSearchReader(idx, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("u")
	entryID, _ := valueobjects.NewEntryID("MISSING")
	node := core.NewRootGraphNode(shared.ReaderKindSearch, userID, tree)
	node.EntryID = entryID

	err := reader.Walk(context.Background(), node, core.RequestConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, tree.Errors.Empty())
}
