package readers

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

type fakeFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() interface{}   { return nil }

type fakeDirEntry struct {
	info fakeFileInfo
}

func (f fakeDirEntry) Name() string              { return f.info.name }
func (f fakeDirEntry) IsDir() bool                { return f.info.isDir }
func (f fakeDirEntry) Type() fs.FileMode          { return f.info.Mode() }
func (f fakeDirEntry) Info() (fs.FileInfo, error) { return f.info, nil }

type fakeArchiveFileStore struct {
	listing map[string][]fs.DirEntry
	files   map[string][]byte
}

func (f *fakeArchiveFileStore) List(ctx context.Context, upload valueobjects.UploadID, dir string) ([]fs.DirEntry, error) {
	return f.listing[dir], nil
}
func (f *fakeArchiveFileStore) Stat(ctx context.Context, upload valueobjects.UploadID, path string) (fs.FileInfo, error) {
	return nil, nil
}
func (f *fakeArchiveFileStore) ReadFile(ctx context.Context, upload valueobjects.UploadID, path string) ([]byte, error) {
	return f.files[path], nil
}

func newFSTestNode(tree *core.ResultTree) core.GraphNode {
	uploadID, _ := valueobjects.NewUploadID("U1")
	userID, _ := valueobjects.NewUserID("u")
	node := core.NewRootGraphNode(shared.ReaderKindFileSys, userID, tree)
	node.UploadID = uploadID
	node.CurrentPath = valueobjects.CanonicalPath{"files"}
	return node
}

func TestFileSystemReaderWalkListsDirectoryEntries(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {
			fakeDirEntry{info: fakeFileInfo{name: "data.json", size: 42}},
			fakeDirEntry{info: fakeFileInfo{name: "subdir", isDir: true}},
		},
	}}
	reader := NewFileSystemReader(store, nil, nil, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	err := reader.Walk(context.Background(), node, core.RequestConfig{}, nil)
	require.NoError(t, err)

	files, ok := tree.Root["files"].(map[string]interface{})
	require.True(t, ok)
	data, ok := files["data.json"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "File", data[shared.TokenIs])
	assert.EqualValues(t, 42, data["size"])

	subdir, ok := files["subdir"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Directory", subdir[shared.TokenIs])
}

func TestFileSystemReaderWalkAppliesGlobFilter(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {
			fakeDirEntry{info: fakeFileInfo{name: "data.json", size: 1}},
			fakeDirEntry{info: fakeFileInfo{name: "notes.txt", size: 1}},
		},
	}}
	reader := NewFileSystemReader(store, nil, nil, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	level := core.RequestConfig{Include: []string{"*.json"}}
	err := reader.Walk(context.Background(), node, level, nil)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	assert.Contains(t, files, "data.json")
	assert.NotContains(t, files, "notes.txt")
}

func TestFileSystemReaderWalkReadsContentWhenRequested(t *testing.T) {
	store := &fakeArchiveFileStore{
		listing: map[string][]fs.DirEntry{"/": {fakeDirEntry{info: fakeFileInfo{name: "data.json", size: 2}}}},
		files:   map[string][]byte{"/data.json": []byte("hi")},
	}
	reader := NewFileSystemReader(store, nil, nil, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	normTree := &NormalizedNode{Children: map[string]*NormalizedNode{
		"data.json": {Children: map[string]*NormalizedNode{"content": {IsLeaf: true}}},
	}}

	err := reader.Walk(context.Background(), node, core.RequestConfig{}, normTree)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	data := files["data.json"].(map[string]interface{})
	assert.Equal(t, []byte("hi"), data["content"])
}

func TestFileSystemReaderWalkRecursesIntoSubdirectories(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {
			fakeDirEntry{info: fakeFileInfo{name: "subdir", isDir: true}},
		},
		"/subdir": {
			fakeDirEntry{info: fakeFileInfo{name: "nested.json", size: 7}},
		},
	}}
	reader := NewFileSystemReader(store, nil, nil, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	err := reader.Walk(context.Background(), node, core.RequestConfig{}, nil)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	subdir := files["subdir"].(map[string]interface{})
	nested, ok := subdir["nested.json"].(map[string]interface{})
	require.True(t, ok, "unlimited depth (Depth=0) must recurse into subdir's own contents")
	assert.Equal(t, "File", nested[shared.TokenIs])
}

func TestFileSystemReaderWalkStopsAtConfiguredDepth(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {
			fakeDirEntry{info: fakeFileInfo{name: "subdir", isDir: true}},
		},
		"/subdir": {
			fakeDirEntry{info: fakeFileInfo{name: "nested.json", size: 7}},
		},
	}}
	reader := NewFileSystemReader(store, nil, nil, nil, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	err := reader.Walk(context.Background(), node, core.RequestConfig{Depth: 1}, nil)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	subdir := files["subdir"].(map[string]interface{})
	assert.Equal(t, "Directory", subdir[shared.TokenIs])
	assert.NotContains(t, subdir, "nested.json", "Depth=1 must not list subdir's own children")
}

func TestFileSystemReaderWalkInlinesMainFileEntryWhenResolved(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {fakeDirEntry{info: fakeFileInfo{name: "vasp.xml", size: 9}}},
	}}

	registry := NewRegistry()
	docStore := &fakeDocumentStore{entries: map[string]map[string]interface{}{
		"E1": {"upload_id": "U1", "entry_id": "E1", "mainfile": "vasp.xml", "n_calc": 1},
	}}
	registry.Register(shared.ReaderKindEntry, func() Reader {
		return NewEntryReader(docStore, &fakeAccessControl{}, registry, zap.NewNop())
	})

	reader := NewFileSystemReader(store, docStore, nil, registry, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	err := reader.Walk(context.Background(), node, core.RequestConfig{Directive: core.DirectiveResolved}, nil)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	main := files["vasp.xml"].(map[string]interface{})
	entry, ok := main["entry"].(map[string]interface{})
	require.True(t, ok, "a main file must be inlined under key \"entry\" when directive is resolved")
	assert.EqualValues(t, 1, entry["n_calc"])
}

func TestFileSystemReaderWalkLeavesMainFilePlainWhenNotResolved(t *testing.T) {
	store := &fakeArchiveFileStore{listing: map[string][]fs.DirEntry{
		"/": {fakeDirEntry{info: fakeFileInfo{name: "vasp.xml", size: 9}}},
	}}

	registry := NewRegistry()
	docStore := &fakeDocumentStore{entries: map[string]map[string]interface{}{
		"E1": {"upload_id": "U1", "entry_id": "E1", "mainfile": "vasp.xml"},
	}}
	registry.Register(shared.ReaderKindEntry, func() Reader {
		return NewEntryReader(docStore, &fakeAccessControl{}, registry, zap.NewNop())
	})

	reader := NewFileSystemReader(store, docStore, nil, registry, zap.NewNop())

	tree := core.NewResultTree(nil)
	node := newFSTestNode(tree)

	err := reader.Walk(context.Background(), node, core.RequestConfig{Directive: core.DirectivePlain}, nil)
	require.NoError(t, err)

	files := tree.Root["files"].(map[string]interface{})
	main := files["vasp.xml"].(map[string]interface{})
	assert.NotContains(t, main, "entry")
}
