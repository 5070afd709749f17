package readers

import (
	"context"

	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
)

// ReferenceResolver is the shared component every reference-following
// reader goes through to turn a parsed core.Reference into a concrete
// GraphNode, fanning out to the archive store for "archive" targets and
// the file store for "raw" targets (spec.md §2, Reference Resolver; §4.4
// goto semantics). It holds no per-node state — only the backend handles
// needed to fetch whatever a reference names.
type ReferenceResolver struct {
	archives ports.ArchiveStore
	files    ports.ArchiveFileStore
	access   ports.AccessControl
	cache    ports.Cache
	logger   *zap.Logger
}

// NewReferenceResolver builds a resolver over the archive and file
// backends. Either may be nil if the deployment only serves one kind of
// reference target; a nil backend surfaces as an ArchiveError when a
// reference actually needs it. cache may be nil, disabling resolved-entry
// caching entirely.
func NewReferenceResolver(archives ports.ArchiveStore, files ports.ArchiveFileStore, access ports.AccessControl, cache ports.Cache, logger *zap.Logger) *ReferenceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceResolver{archives: archives, files: files, access: access, cache: cache, logger: logger}
}

// Resolve follows ref from node, honoring cfg's resolve_depth/cycle rules
// via GraphNode.Goto, and returns the GraphNode anchored at the target.
func (r *ReferenceResolver) Resolve(ctx context.Context, node core.GraphNode, ref *core.Reference, cfg core.RequestConfig) (core.GraphNode, error) {
	if ref.IsCrossInstallation() {
		return core.GraphNode{}, shared.NewArchiveError(nil, "cross-installation references are not supported: %s", ref.Raw)
	}
	if r.access != nil && ref.Kind == core.ReferenceRemote {
		ok, err := r.access.CanReadEntry(ctx, node.UserID, valueobjects.EntryID(ref.IDOrFile))
		if err != nil {
			return core.GraphNode{}, err
		}
		if !ok {
			return core.GraphNode{}, shared.NewArchiveError(nil, "access denied to %s", ref.Raw)
		}
	}
	return node.Goto(ref, cfg, r.fetchRemote(ctx))
}

func (r *ReferenceResolver) fetchRemote(ctx context.Context) func(*core.Reference) (interface{}, interface{}, error) {
	return func(ref *core.Reference) (interface{}, interface{}, error) {
		switch ref.TargetKind {
		case core.TargetKindEntry:
			if r.archives == nil {
				return nil, nil, shared.NewArchiveError(nil, "no archive store configured to resolve %s", ref.Raw)
			}
			entryID, err := valueobjects.NewEntryID(ref.IDOrFile)
			if err != nil {
				return nil, nil, err
			}

			cacheKey := "archive:" + entryID.String()
			if r.cache != nil {
				if cached, ok := r.cache.Get(ctx, cacheKey); ok {
					return cached, cached, nil
				}
			}

			archive, _, err := r.archives.GetArchive(ctx, entryID)
			if err != nil {
				return nil, nil, err
			}
			if r.cache != nil {
				if err := r.cache.Set(ctx, cacheKey, archive, 0); err != nil {
					r.logger.Warn("failed to cache resolved archive", zap.String("entry_id", entryID.String()), zap.Error(err))
				}
			}
			return archive, archive, nil
		case core.TargetKindRaw:
			if r.files == nil {
				return nil, nil, shared.NewArchiveError(nil, "no file store configured to resolve %s", ref.Raw)
			}
			info, err := r.files.Stat(ctx, ref.UploadID, ref.IDOrFile)
			if err != nil {
				return nil, nil, err
			}
			entry := map[string]interface{}{
				shared.TokenIs: "File",
				"path":         ref.IDOrFile,
				"size":         info.Size(),
			}
			return entry, entry, nil
		default:
			return nil, nil, shared.NewArchiveError(nil, "unrecognized reference target kind for %s", ref.Raw)
		}
	}
}
