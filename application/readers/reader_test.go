package readers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

type stubReader struct {
	kind shared.ReaderKind
}

func (s *stubReader) Kind() shared.ReaderKind { return s.kind }
func (s *stubReader) ValidateConfig(cfg core.RequestConfig, path string) error { return nil }
func (s *stubReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	return nil, nil
}
func (s *stubReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	return nil
}
func (s *stubReader) Close() error { return nil }

func TestRegistryDispatchReturnsFreshInstance(t *testing.T) {
	reg := NewRegistry()
	reg.Register(shared.ReaderKindUpload, func() Reader {
		return &stubReader{kind: shared.ReaderKindUpload}
	})

	r1, ok := reg.Dispatch(shared.ReaderKindUpload)
	require.True(t, ok)
	r2, ok := reg.Dispatch(shared.ReaderKindUpload)
	require.True(t, ok)

	assert.Equal(t, shared.ReaderKindUpload, r1.Kind())
	assert.NotSame(t, r1, r2, "Dispatch must build a fresh instance per call")
}

func TestRegistryDispatchUnknownKind(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Dispatch(shared.ReaderKindSearch)
	assert.False(t, ok)
}

func TestRegistryRegisterOverwritesPriorFactory(t *testing.T) {
	reg := NewRegistry()
	reg.Register(shared.ReaderKindUpload, func() Reader { return &stubReader{kind: shared.ReaderKindUpload} })
	reg.Register(shared.ReaderKindUpload, func() Reader { return &stubReader{kind: shared.ReaderKindEntry} })

	r, ok := reg.Dispatch(shared.ReaderKindUpload)
	require.True(t, ok)
	assert.Equal(t, shared.ReaderKindEntry, r.Kind())
}
