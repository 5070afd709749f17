package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core/valueobjects"
)

func TestArchiveStoreSeedAndGet(t *testing.T) {
	store := NewArchiveStore()
	store.Seed("E1", map[string]interface{}{"name": "demo"}, "my.definition")

	archive, defName, err := store.GetArchive(context.Background(), valueobjects.EntryID("E1"))
	require.NoError(t, err)
	assert.Equal(t, "demo", archive["name"])
	assert.Equal(t, "my.definition", defName)
}

func TestArchiveStoreGetMissingEntry(t *testing.T) {
	store := NewArchiveStore()
	_, _, err := store.GetArchive(context.Background(), valueobjects.EntryID("missing"))
	assert.Error(t, err)
}
