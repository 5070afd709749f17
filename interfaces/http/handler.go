// Package http exposes the query engine over a single read-only HTTP
// endpoint. It provides a chi-mountable handler, not a service launcher:
// nothing here calls http.ListenAndServe (spec.md §6 — booting a server
// is the excluded "service launcher").
//
//go:generate swag init --dir . --generalInfo handler.go --output ../../docs
package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graphqueryreader/application/services"
	apperrors "graphqueryreader/pkg/errors"
)

// Handler adapts QueryService.Read to POST /v1/query.
type Handler struct {
	query  *services.QueryService
	logger *zap.Logger
}

// NewHandler returns a Handler ready to mount.
func NewHandler(query *services.QueryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{query: query, logger: logger}
}

// Mount registers this handler's routes onto r, under whatever prefix the
// caller chose (e.g. r.Route("/v1", handler.Mount)).
func (h *Handler) Mount(r chi.Router) {
	r.Post("/query", h.Query)
}

// Query handles POST /v1/query: decode the required tree, run it through
// QueryService.Read scoped to the request's user_id, and return the
// merged result tree verbatim.
//
// @Summary Run a declarative graph query
// @Description Evaluates a required-tree against the upload/entry/archive graph scoped to user_id
// @Tags query
// @Accept json
// @Produce json
// @Param request body QueryRequest true "Query request"
// @Success 200 {object} map[string]interface{} "Merged result tree"
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 500 {object} map[string]string "Query execution failed"
// @Router /v1/query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidation("request body must be valid JSON"))
		return
	}
	if req.UserID == "" {
		h.respondError(w, apperrors.NewValidation("user_id is required"))
		return
	}
	if req.Required == nil {
		h.respondError(w, apperrors.NewValidation("required is required"))
		return
	}

	result, err := h.query.Read(r.Context(), req.UserID, req.Required)
	if err != nil {
		h.logger.Error("query failed", zap.String("user_id", req.UserID), zap.Error(err))
		h.respondError(w, apperrors.NewInternal("failed to execute query", err))
		return
	}

	h.respondJSON(w, http.StatusOK, QueryResponse{Result: result})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
