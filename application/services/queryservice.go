// Package services hosts the top-level orchestrator that turns one
// required-tree request into a fully materialized response (spec.md §2,
// control flow overview).
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"graphqueryreader/application/normalizer"
	"graphqueryreader/application/ports"
	"graphqueryreader/application/readers"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

// QueryService is the single entry point callers use to execute a
// required tree against the wired reader chain.
type QueryService struct {
	registry   *readers.Registry
	normalizer *normalizer.Normalizer
	events     ports.EventBus
	logger     *zap.Logger
	tracer     trace.Tracer
}

// New wires a QueryService from a reader dispatch registry and the
// ambient logging/tracing/audit concerns. events may be nil — audit
// publishing becomes a no-op.
func New(registry *readers.Registry, events ports.EventBus, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		registry:   registry,
		normalizer: normalizer.New(),
		events:     events,
		logger:     logger,
		tracer:     otel.Tracer("graphqueryreader/queryservice"),
	}
}

// Read normalizes requiredTree, dispatches each top-level key to its
// reader, and returns the merged response (spec.md §2, §7). userID scopes
// every reader's access checks and default visibility.
func (s *QueryService) Read(ctx context.Context, userID string, requiredTree map[string]interface{}) (map[string]interface{}, error) {
	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "QueryService.Read", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("request_id", requestID),
	))
	defer span.End()

	root, err := s.normalizer.Normalize(requiredTree, core.DefaultRequestConfig(), shared.ReaderKindUpload, "$")
	if err != nil {
		return nil, fmt.Errorf("normalize required tree: %w", err)
	}

	tree := core.NewResultTree(s.logger)
	rootKeys := make([]string, 0, len(root.Children))
	userVO := valueobjects.UserID(userID)

	for name, child := range root.Children {
		rootKeys = append(rootKeys, name)

		kind, ok := shared.ReaderKindFor(name)
		if !ok {
			kind, ok = shared.IDReaderKindFor(name)
		}
		if !ok {
			tree.Errors.Addf(shared.ErrGeneral, "%q is not a recognized top-level key", name)
			continue
		}

		reader, ok := s.registry.Dispatch(kind)
		if !ok {
			tree.Errors.Addf(shared.ErrGeneral, "no reader registered for %q", kind)
			continue
		}

		node := core.NewRootGraphNode(kind, userVO, tree)
		node.CurrentPath = node.CurrentPath.Append(name)

		if err := reader.Walk(ctx, node, child.Config, child); err != nil {
			tree.Errors.Addf(shared.ErrGeneral, "%s: %v", name, err)
		}
		if err := reader.Close(); err != nil {
			s.logger.Warn("reader close failed", zap.String("key", name), zap.Error(err))
		}
	}

	response := make(map[string]interface{}, len(tree.Root)+2)
	for k, v := range tree.Root {
		response[k] = v
	}
	if len(tree.RefRoot) > 0 {
		response[shared.TokenReferences] = tree.RefRoot
	}
	if !tree.Errors.Empty() {
		response[shared.TokenErrors] = tree.Errors.Entries()
	}

	s.publishAudit(ctx, requestID, userID, rootKeys, !tree.Errors.Empty())

	return response, nil
}

func (s *QueryService) publishAudit(ctx context.Context, requestID, userID string, rootKeys []string, hadErrors bool) {
	if s.events == nil {
		return
	}
	event := ports.AuditEvent{RequestID: requestID, UserID: userID, RootKeys: rootKeys, HadErrors: hadErrors}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish audit event", zap.String("request_id", requestID), zap.Error(err))
	}
}
