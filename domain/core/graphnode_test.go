package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

func TestNewRootGraphNodeSharesResultTreeRoots(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")

	node := NewRootGraphNode(shared.ReaderKindUpload, userID, tree)

	assert.Equal(t, shared.ReaderKindUpload, node.Reader)
	assert.Equal(t, tree.Root, node.ResultRoot)
	assert.Empty(t, node.VisitedPath)
}

func TestWithPathAppendsAndTracksDepth(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	node := NewRootGraphNode(shared.ReaderKindUpload, userID, tree)

	child := node.WithPath("workflow", map[string]interface{}{"x": 1})

	assert.Equal(t, 1, child.CurrentDepth)
	assert.Equal(t, valueobjects.CanonicalPath{"workflow"}, child.CurrentPath)
	assert.Empty(t, node.CurrentPath, "WithPath must not mutate the receiver")
}

func TestGotoDetectsCycle(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")

	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)
	node.UploadID = uploadID
	node.EntryID = entryID
	node.ArchiveRoot = map[string]interface{}{"workflow": map[string]interface{}{"x": 1}}

	ref, err := ParseReference("/workflow")
	require.NoError(t, err)

	cfg := DefaultRequestConfig()
	cfg.ResolveInplace = true

	next, err := node.Goto(ref, cfg, nil)
	require.NoError(t, err)

	// Following the same reference again from the already-visited node
	// must be rejected as a cycle.
	_, err = next.Goto(ref, cfg, nil)
	require.Error(t, err)
	var cycleErr *ErrCycleDetected
	assert.ErrorAs(t, err, &cycleErr)
}

func TestGotoRejectsCrossInstallation(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)

	ref, err := ParseReference("//other/uploads/U1/archive/E1#/x")
	require.NoError(t, err)

	_, err = node.Goto(ref, DefaultRequestConfig(), nil)
	assert.Error(t, err)
}

func TestGotoEnforcesResolveDepth(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")

	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)
	node.UploadID = uploadID
	node.EntryID = entryID
	node.ArchiveRoot = map[string]interface{}{"a": "leaf"}
	node.CurrentDepth = 2

	ref, err := ParseReference("/a")
	require.NoError(t, err)

	cfg := DefaultRequestConfig()
	cfg.ResolveDepth = 2

	_, err = node.Goto(ref, cfg, nil)
	require.Error(t, err)
	var depthErr *ErrResolveDepthExceeded
	assert.ErrorAs(t, err, &depthErr)
}

func TestGotoLocalResolvesWithinArchiveRoot(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")

	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)
	node.UploadID = uploadID
	node.EntryID = entryID
	node.ArchiveRoot = map[string]interface{}{
		"workflow": []interface{}{
			map[string]interface{}{"name": "first"},
			map[string]interface{}{"name": "second"},
		},
	}

	ref, err := ParseReference("/workflow/1/name")
	require.NoError(t, err)

	out, err := node.Goto(ref, DefaultRequestConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out.Archive)
}

func TestGotoRemoteRequiresFetchCallback(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)

	ref, err := ParseReference("../uploads/U2/archive/E2#/x")
	require.NoError(t, err)

	_, err = node.Goto(ref, DefaultRequestConfig(), nil)
	assert.Error(t, err)
}

func TestGotoOutOfPlaceSwapsResultRoots(t *testing.T) {
	tree := NewResultTree(nil)
	userID, _ := valueobjects.NewUserID("U1")
	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")

	node := NewRootGraphNode(shared.ReaderKindArchive, userID, tree)
	node.UploadID = uploadID
	node.EntryID = entryID
	node.ArchiveRoot = map[string]interface{}{"workflow": "value"}

	ref, err := ParseReference("/workflow")
	require.NoError(t, err)

	cfg := DefaultRequestConfig()
	cfg.ResolveInplace = false

	out, err := node.Goto(ref, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, tree.RefRoot, out.ResultRoot, "resolve_inplace=false must redirect writes to the references tree")
}
