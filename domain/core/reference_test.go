package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core/valueobjects"
)

func TestParseReferenceLocal(t *testing.T) {
	ref, err := ParseReference("/workflow/0/calc")
	require.NoError(t, err)
	assert.Equal(t, ReferenceLocal, ref.Kind)
	assert.Equal(t, []string{"workflow", "0", "calc"}, ref.Path)
}

func TestParseReferenceLocalFragment(t *testing.T) {
	ref, err := ParseReference("#/workflow/0")
	require.NoError(t, err)
	assert.Equal(t, ReferenceLocal, ref.Kind)
	assert.Equal(t, []string{"workflow", "0"}, ref.Path)
}

func TestParseReferenceEmptyIsError(t *testing.T) {
	_, err := ParseReference("")
	assert.Error(t, err)
}

func TestParseReferenceModulePath(t *testing.T) {
	ref, err := ParseReference("nomad.datamodel.EntryArchive.workflow")
	require.NoError(t, err)
	assert.Equal(t, ReferenceModulePath, ref.Kind)
	assert.Equal(t, []string{"nomad", "datamodel", "EntryArchive", "workflow"}, ref.Path)
}

func TestParseReferenceRemoteArchive(t *testing.T) {
	ref, err := ParseReference("../uploads/U1/archive/E1#/workflow/0")
	require.NoError(t, err)
	assert.Equal(t, ReferenceRemote, ref.Kind)
	assert.Equal(t, "U1", ref.UploadID.String())
	assert.Equal(t, TargetKindEntry, ref.TargetKind)
	assert.Equal(t, "E1", ref.IDOrFile)
	assert.Equal(t, []string{"workflow", "0"}, ref.Path)
	assert.False(t, ref.IsCrossInstallation())
}

func TestParseReferenceRemoteRaw(t *testing.T) {
	ref, err := ParseReference("../uploads/U1/raw/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, TargetKindRaw, ref.TargetKind)
	assert.Equal(t, "dir/file.txt", ref.IDOrFile)
}

func TestParseReferenceCrossInstallation(t *testing.T) {
	ref, err := ParseReference("//other-install/uploads/U1/archive/E1#/x")
	require.NoError(t, err)
	assert.True(t, ref.IsCrossInstallation())
	assert.Equal(t, "other-install", ref.Installation)
}

func TestParseReferenceMalformedRemote(t *testing.T) {
	_, err := ParseReference("../uploads/U1")
	assert.Error(t, err)
}

func TestReferenceCanonicalPathLocalUsesCurrentUploadEntry(t *testing.T) {
	ref, err := ParseReference("/workflow/0")
	require.NoError(t, err)

	uploadID, _ := valueobjects.NewUploadID("U9")
	entryID, _ := valueobjects.NewEntryID("E9")

	cp := ref.CanonicalPath(uploadID, entryID)
	assert.Equal(t, "/uploads/U9/entries/E9/archive/workflow/0", cp.String())
}

func TestReferenceCanonicalPathRemoteUsesItsOwnUploadEntry(t *testing.T) {
	ref, err := ParseReference("../uploads/U1/archive/E1#/workflow")
	require.NoError(t, err)

	uploadID, _ := valueobjects.NewUploadID("ignored")
	entryID, _ := valueobjects.NewEntryID("ignored")

	cp := ref.CanonicalPath(uploadID, entryID)
	assert.Equal(t, "/uploads/U1/entries/E1/archive/workflow", cp.String())
}

func TestReferenceVisitKeyStableForSameTarget(t *testing.T) {
	ref1, _ := ParseReference("/workflow/0")
	ref2, _ := ParseReference("/workflow/0")

	uploadID, _ := valueobjects.NewUploadID("U1")
	entryID, _ := valueobjects.NewEntryID("E1")

	assert.Equal(t, ref1.VisitKey(uploadID, entryID), ref2.VisitKey(uploadID, entryID))
}
