package readers

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core"
	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/domain/shared"
	"graphqueryreader/pkg/globmatch"
)

// fsReader implements Reader over the hierarchical raw-file backend,
// offloaded to from Upload.files and remote "raw" references (spec.md §2,
// FileSystemReader; §4.3, §4.4). Directory entries are exposed as a dict
// keyed by name (pathLike — numeric names never become list indices);
// files carry path/size metadata rather than their full contents unless a
// leaf config explicitly asks for "content". With directive "resolved", a
// file that is some entry's main file is inlined under key "entry"
// (spec.md §4.5).
type fsReader struct {
	store    ports.ArchiveFileStore
	docs     ports.DocumentStore
	access   ports.AccessControl
	dispatch *Registry
	logger   *zap.Logger
}

// NewFileSystemReader returns a Reader backed by an ArchiveFileStore port.
// docs and dispatch may be nil, disabling main-file-to-entry inlining
// entirely (plain directory listing still works).
func NewFileSystemReader(store ports.ArchiveFileStore, docs ports.DocumentStore, access ports.AccessControl, dispatch *Registry, logger *zap.Logger) Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fsReader{store: store, docs: docs, access: access, dispatch: dispatch, logger: logger}
}

func (r *fsReader) Kind() shared.ReaderKind { return shared.ReaderKindFileSys }

func (r *fsReader) ValidateConfig(cfg core.RequestConfig, path string) error {
	return cfg.ValidateFor(shared.ReaderKindFileSys, path, false)
}

func (r *fsReader) Read(ctx context.Context, node core.GraphNode) (interface{}, error) {
	dirPath := currentDirPath(node)
	return r.store.List(ctx, node.UploadID, dirPath)
}

func (r *fsReader) Walk(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode) error {
	mainfiles := r.mainfileIndex(ctx, node)

	listing, err := r.walkDir(ctx, node, level, tree, currentDirPath(node), 0, mainfiles)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrNotFound, "%v", err)
		return nil
	}

	core.Populate(node.ResultRoot, []string(node.CurrentPath), listing, true)
	return nil
}

func (r *fsReader) Close() error { return nil }

// walkDir lists one directory level and recurses into subdirectories up to
// level.Depth (0 means unlimited), matching spec.md §4.5's "lists entries
// recursively up to config.depth". Each subdirectory's own children are
// merged directly into its entry's map, alongside m_is/path, so the
// listing reads as one nested tree rather than a flat index.
func (r *fsReader) walkDir(ctx context.Context, node core.GraphNode, level core.RequestConfig, tree *NormalizedNode, dirPath string, depth int, mainfiles map[string]string) (map[string]interface{}, error) {
	entries, err := r.store.List(ctx, node.UploadID, dirPath)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dirPath, err)
	}

	listing := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		if !globmatch.Allowed(entry.Name(), level.Include, level.Exclude) {
			continue
		}
		childPath := path.Join(dirPath, entry.Name())
		childTree := subTree(tree, entry.Name())

		if entry.IsDir() {
			dirValue := map[string]interface{}{
				shared.TokenIs: "Directory",
				"path":         childPath,
			}
			if level.Depth == 0 || depth+1 < level.Depth {
				children, err := r.walkDir(ctx, node, level, childTree, childPath, depth+1, mainfiles)
				if err != nil {
					node.Tree.Errors.Addf(shared.ErrGeneral, "%v", err)
				} else {
					for name, value := range children {
						dirValue[name] = value
					}
				}
			}
			listing[entry.Name()] = dirValue
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		fileValue := map[string]interface{}{
			shared.TokenIs: "File",
			"path":         childPath,
			"size":         info.Size(),
		}
		if wantsContent(childTree, "content") {
			content, err := r.store.ReadFile(ctx, node.UploadID, childPath)
			if err != nil {
				node.Tree.Errors.Addf(shared.ErrGeneral, "read file %s: %v", childPath, err)
			} else {
				fileValue["content"] = content
			}
		}

		if level.Directive == core.DirectiveResolved {
			if entryID, ok := mainfiles[strings.TrimPrefix(childPath, "/")]; ok {
				r.inlineEntry(ctx, node, level, childTree, entryID, fileValue)
			}
		}

		listing[entry.Name()] = fileValue
	}
	return listing, nil
}

// inlineEntry offloads to the EntryReader for the processed entry whose
// main file is at childPath, writing its result under fileValue["entry"]
// (spec.md §4.5). Failure is recorded on the tree and otherwise ignored —
// the raw file listing for childPath still stands.
func (r *fsReader) inlineEntry(ctx context.Context, node core.GraphNode, level core.RequestConfig, childTree *NormalizedNode, entryID string, fileValue map[string]interface{}) {
	if r.dispatch == nil {
		return
	}
	reader, ok := r.dispatch.Dispatch(shared.ReaderKindEntry)
	if !ok {
		return
	}
	defer reader.Close()

	eid, err := valueobjects.NewEntryID(entryID)
	if err != nil {
		node.Tree.Errors.Addf(shared.ErrGeneral, "invalid main-file entry id %q: %v", entryID, err)
		return
	}

	entryNode := node
	entryNode.EntryID = eid
	entryNode.ResultRoot = fileValue
	entryNode.CurrentPath = valueobjects.CanonicalPath{"entry"}
	entryNode.Reader = shared.ReaderKindEntry

	// The entry sub-walk gets its own plain config rather than inheriting
	// level verbatim: Depth/Include/Exclude are FileSystemReader-specific
	// and would misapply to a document fetch.
	entryLevel := core.RequestConfig{Directive: level.Directive, ResolveType: level.ResolveType}

	entryTree := subTree(childTree, "entry")
	if err := reader.Walk(ctx, entryNode, entryLevel, entryTree); err != nil {
		node.Tree.Errors.Addf(shared.ErrGeneral, "inline entry %s: %v", entryID, err)
	}
}

// mainfileIndex builds a path -> entry id lookup for every processed entry
// under this upload, so file listing can spot which raw file is some
// entry's main file (spec.md §4.5). Returns an empty map (never nil) when
// docs is unset or the lookup fails, so callers can range over it freely.
func (r *fsReader) mainfileIndex(ctx context.Context, node core.GraphNode) map[string]string {
	out := make(map[string]string)
	if r.docs == nil || node.UploadID == "" {
		return out
	}
	entries, err := r.docs.QueryEntries(ctx, &core.EntryQuery{UploadID: []string{node.UploadID.String()}}, nil)
	if err != nil {
		r.logger.Warn("failed to list entries for main-file lookup", zap.String("upload_id", node.UploadID.String()), zap.Error(err))
		return out
	}
	for _, doc := range entries {
		mainfile, _ := doc["mainfile"].(string)
		entryID, _ := doc["entry_id"].(string)
		if mainfile == "" || entryID == "" {
			continue
		}
		out[strings.TrimPrefix(mainfile, "/")] = entryID
	}
	return out
}

// currentDirPath recovers the directory path the cursor names from its
// canonical path suffix after the "files" offload boundary.
func currentDirPath(node core.GraphNode) string {
	segments := []string(node.CurrentPath)
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "files" {
			segments = segments[i+1:]
			break
		}
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// subTree returns the normalized child named name, or nil if tree is nil
// or has no such child — wantsContent and the recursive walk both treat a
// nil child tree as "no further shape constraints below this point".
func subTree(tree *NormalizedNode, name string) *NormalizedNode {
	if tree == nil {
		return nil
	}
	child, ok := tree.Children[name]
	if !ok {
		return nil
	}
	return child
}

func wantsContent(tree *NormalizedNode, name string) bool {
	if tree == nil {
		return false
	}
	_, wantsChild := tree.Children[name]
	return wantsChild
}
