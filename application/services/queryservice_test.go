package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/application/readers"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

type stubTreeReader struct {
	kind     shared.ReaderKind
	walkErr  error
	populate func(node core.GraphNode)
}

func (r *stubTreeReader) Kind() shared.ReaderKind { return r.kind }
func (r *stubTreeReader) ValidateConfig(cfg core.RequestConfig, path string) error { return nil }
func (r *stubTreeReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	return nil, nil
}
func (r *stubTreeReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *readers.NormalizedNode) error {
	if r.populate != nil {
		r.populate(node)
	}
	return r.walkErr
}
func (r *stubTreeReader) Close() error { return nil }

type capturingEventBus struct {
	events []ports.AuditEvent
}

func (b *capturingEventBus) Publish(ctx context.Context, event ports.AuditEvent) error {
	b.events = append(b.events, event)
	return nil
}

func TestQueryServiceReadDispatchesTopLevelKeys(t *testing.T) {
	registry := readers.NewRegistry()
	registry.Register(shared.ReaderKindUpload, func() readers.Reader {
		return &stubTreeReader{kind: shared.ReaderKindUpload, populate: func(node core.GraphNode) {
			core.Populate(node.ResultRoot, []string(node.CurrentPath), map[string]interface{}{"name": "demo"}, false)
		}}
	})
	bus := &capturingEventBus{}
	svc := New(registry, bus, zap.NewNop())

	result, err := svc.Read(context.Background(), "u1", map[string]interface{}{
		"upload": "include",
	})
	require.NoError(t, err)

	upload, ok := result["upload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "demo", upload["name"])

	require.Len(t, bus.events, 1)
	assert.Equal(t, "u1", bus.events[0].UserID)
	assert.NotEmpty(t, bus.events[0].RequestID)
	assert.False(t, bus.events[0].HadErrors)
}

func TestQueryServiceReadUnrecognizedKeyRecordsError(t *testing.T) {
	registry := readers.NewRegistry()
	svc := New(registry, nil, zap.NewNop())

	result, err := svc.Read(context.Background(), "u1", map[string]interface{}{
		"not_a_real_key": "include",
	})
	require.NoError(t, err)
	assert.Contains(t, result, shared.TokenErrors)
}

func TestQueryServiceReadUnregisteredReaderKindRecordsError(t *testing.T) {
	registry := readers.NewRegistry()
	svc := New(registry, nil, zap.NewNop())

	result, err := svc.Read(context.Background(), "u1", map[string]interface{}{
		"upload": "include",
	})
	require.NoError(t, err)
	assert.Contains(t, result, shared.TokenErrors)
}

func TestQueryServiceReadInvalidRequiredTreeReturnsError(t *testing.T) {
	registry := readers.NewRegistry()
	svc := New(registry, nil, zap.NewNop())

	_, err := svc.Read(context.Background(), "u1", map[string]interface{}{
		"upload": 123,
	})
	assert.Error(t, err)
}

func TestQueryServiceReadNilEventBusIsNoop(t *testing.T) {
	registry := readers.NewRegistry()
	svc := New(registry, nil, zap.NewNop())

	_, err := svc.Read(context.Background(), "u1", map[string]interface{}{
		"upload": "include",
	})
	require.NoError(t, err)
}
