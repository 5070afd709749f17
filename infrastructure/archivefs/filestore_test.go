package archivefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core/valueobjects"
)

func TestFileStoreListAndReadFile(t *testing.T) {
	base := t.TempDir()
	uploadDir := filepath.Join(base, "U1")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "data.json"), []byte(`{"a":1}`), 0o644))

	store, err := NewFileStore(base, nil)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(context.Background(), valueobjects.UploadID("U1"), "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())

	content, err := store.ReadFile(context.Background(), valueobjects.UploadID("U1"), "data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))
}

func TestFileStoreStatMissingFileErrors(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "U1"), 0o755))

	store, err := NewFileStore(base, nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Stat(context.Background(), valueobjects.UploadID("U1"), "missing.json")
	assert.Error(t, err)
}

func TestFileStoreInvalidatedTracksChanges(t *testing.T) {
	base := t.TempDir()
	uploadDir := filepath.Join(base, "U1")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))

	store, err := NewFileStore(base, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.Invalidated(valueobjects.UploadID("U1")), "no writes yet, nothing should be invalidated")

	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "new.json"), []byte("{}"), 0o644))

	require.Eventually(t, func() bool {
		return store.Invalidated(valueobjects.UploadID("U1"))
	}, time.Second, 10*time.Millisecond, "expected the watcher to observe the new file")

	assert.False(t, store.Invalidated(valueobjects.UploadID("U1")), "Invalidated must clear the flag once observed")
}
