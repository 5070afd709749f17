package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/application/readers"
	"graphqueryreader/application/services"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/shared"
)

type echoReader struct{}

func (echoReader) Kind() shared.ReaderKind { return shared.ReaderKindUpload }
func (echoReader) ValidateConfig(cfg core.RequestConfig, path string) error { return nil }
func (echoReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) { return nil, nil }
func (echoReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *readers.NormalizedNode) error {
	node.ResultRoot["upload"] = map[string]interface{}{"upload_name": "demo"}
	return nil
}
func (echoReader) Close() error { return nil }

func newTestHandler() *Handler {
	registry := readers.NewRegistry()
	registry.Register(shared.ReaderKindUpload, func() readers.Reader { return echoReader{} })
	svc := services.New(registry, nil, nil)
	return NewHandler(svc, nil)
}

func mountRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/v1", h.Mount)
	return r
}

func TestQueryHandlerReturnsMergedResult(t *testing.T) {
	r := mountRouter(newTestHandler())

	body, err := json.Marshal(QueryRequest{
		UserID:   "u1",
		Required: map[string]interface{}{"upload": "*"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	upload, ok := resp.Result["upload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "demo", upload["upload_name"])
}

func TestQueryHandlerRejectsMissingUserID(t *testing.T) {
	r := mountRouter(newTestHandler())

	body, _ := json.Marshal(QueryRequest{Required: map[string]interface{}{"upload": "*"}})
	req := httptest.NewRequest("POST", "/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestQueryHandlerRejectsMissingRequired(t *testing.T) {
	r := mountRouter(newTestHandler())

	body, _ := json.Marshal(QueryRequest{UserID: "u1"})
	req := httptest.NewRequest("POST", "/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestQueryHandlerRejectsMalformedJSON(t *testing.T) {
	r := mountRouter(newTestHandler())

	req := httptest.NewRequest("POST", "/v1/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}
