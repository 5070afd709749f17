package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaderKindForSingularAndPluralShareKind(t *testing.T) {
	singular, ok := ReaderKindFor("upload")
	assert.True(t, ok)
	plural, ok := ReaderKindFor("uploads")
	assert.True(t, ok)
	assert.Equal(t, singular, plural)
	assert.Equal(t, ReaderKindUpload, singular)
}

func TestReaderKindForUnknownToken(t *testing.T) {
	_, ok := ReaderKindFor("not_a_token")
	assert.False(t, ok)
}

func TestIsSearchable(t *testing.T) {
	assert.True(t, IsSearchable("search"))
	assert.True(t, IsSearchable("metadata"))
	assert.False(t, IsSearchable("name"))
}

func TestIDReaderKindFor(t *testing.T) {
	kind, ok := IDReaderKindFor("user_id")
	assert.True(t, ok)
	assert.Equal(t, ReaderKindUser, kind)

	_, ok = IDReaderKindFor("not_an_id_field")
	assert.False(t, ok)
}
