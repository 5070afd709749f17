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
)

type fakeArchiveStore struct {
	archives map[string]map[string]interface{}
	calls    int
}

func (f *fakeArchiveStore) GetArchive(ctx context.Context, entry valueobjects.EntryID) (map[string]interface{}, string, error) {
	f.calls++
	doc, ok := f.archives[entry.String()]
	if !ok {
		return nil, "", fmt.Errorf("archive %s not found", entry)
	}
	return doc, "my.definition", nil
}

type fakeCache struct {
	store map[string]interface{}
}

func newFakeCache() *fakeCache { return &fakeCache{store: make(map[string]interface{})} }

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c.store[key]
	return v, ok
}
func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.store[key] = value
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func TestReferenceResolverResolveRemoteEntryUsesCache(t *testing.T) {
	store := &fakeArchiveStore{archives: map[string]map[string]interface{}{
		"E2": {"workflow": "value"},
	}}
	cache := newFakeCache()
	resolver := NewReferenceResolver(store, nil, nil, cache, zap.NewNop())

	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")
	userID, _ := valueobjects.NewUserID("u")
	node := core.GraphNode{UserID: userID, UploadID: uploadID, EntryID: entryID}

	ref, err := core.ParseReference("../uploads/U2/archive/E2#/workflow")
	require.NoError(t, err)

	out, err := resolver.Resolve(context.Background(), node, ref, core.DefaultRequestConfig())
	require.NoError(t, err)
	assert.Equal(t, "value", out.Archive)
	assert.Equal(t, 1, store.calls)

	out2, err := resolver.Resolve(context.Background(), node, ref, core.DefaultRequestConfig())
	require.NoError(t, err)
	assert.Equal(t, out.Archive, out2.Archive)
	assert.Equal(t, 1, store.calls, "second resolution of the same entry should be served from cache")
}

func TestReferenceResolverRejectsCrossInstallation(t *testing.T) {
	resolver := NewReferenceResolver(nil, nil, nil, nil, zap.NewNop())
	ref, err := core.ParseReference("//other/uploads/U1/archive/E1#/x")
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), core.GraphNode{}, ref, core.DefaultRequestConfig())
	assert.Error(t, err)
}

func TestReferenceResolverMissingArchiveStoreSurfacesArchiveError(t *testing.T) {
	resolver := NewReferenceResolver(nil, nil, nil, nil, zap.NewNop())
	ref, err := core.ParseReference("../uploads/U1/archive/E1#/x")
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), core.GraphNode{}, ref, core.DefaultRequestConfig())
	assert.Error(t, err)
}
