// Package merge implements the Result Merger component: writing values
// into the shared result container at a path, deduplicating repeated work
// through the per-request config-hash cache (spec.md §2, Result Merger;
// §4.7, _populate_result).
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"graphqueryreader/domain/core"
)

// Merger writes reader output into a core.ResultTree, consulting the
// config-hash cache before letting a reader redo work already done for an
// equivalent (path, config) pair within the same request.
type Merger struct {
	tree   *core.ResultTree
	logger *zap.Logger
}

// New returns a Merger bound to one request's result tree.
func New(tree *core.ResultTree, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{tree: tree, logger: logger}
}

// Write merges value into the tree at path, honoring pathLike for
// directory-style keys that must never become list indices.
func (m *Merger) Write(path []string, value interface{}, pathLike bool) {
	core.Populate(m.tree.Root, path, value, pathLike)
}

// WriteRef merges value into the references tree at path, used when a
// reader resolves a reference out-of-place (resolve_inplace=false).
func (m *Merger) WriteRef(path []string, value interface{}, pathLike bool) {
	core.Populate(m.tree.RefRoot, path, value, pathLike)
}

// SeenConfig reports whether the (path, config) pair has already been
// materialized this request, skipping redundant backend calls for
// identical subtrees reached via two different offload paths.
func (m *Merger) SeenConfig(pathKey string, cfg core.RequestConfig) bool {
	hash := ConfigHash(cfg)
	return m.tree.SeenConfig(pathKey, hash)
}

// ConfigHash computes a stable hash of a RequestConfig for use as a
// dedup key. Field order doesn't matter since json.Marshal on a struct
// emits its fields in declaration order deterministically.
func ConfigHash(cfg core.RequestConfig) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
