// Package archivefs implements ports.ArchiveFileStore over a local
// directory tree, one subdirectory per upload, with fsnotify watching the
// root and each upload directory present when the store is opened, so
// writes there invalidate that upload's listing; deeper subdirectories
// and uploads created later are not watched (grounded on the teacher's
// infrastructure/config/watcher.go
// fsnotify usage, generalized from config hot-reload to file-tree
// invalidation).
package archivefs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"graphqueryreader/domain/core/valueobjects"
)

// FileStore implements ports.ArchiveFileStore by reading a local
// directory tree rooted at Base/<upload_id>/....
type FileStore struct {
	base    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	invalid map[string]struct{} // upload ids whose listings changed since last List
}

// NewFileStore opens a watcher over base and returns a ready FileStore.
// Close must be called to release the watcher.
func NewFileStore(base string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(base); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", base, err)
	}
	if entries, err := os.ReadDir(base); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				_ = watcher.Add(filepath.Join(base, e.Name()))
			}
		}
	}

	store := &FileStore{base: base, logger: logger, watcher: watcher, invalid: make(map[string]struct{})}
	go store.watch()
	return store, nil
}

func (s *FileStore) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			upload := s.uploadFromEventPath(event.Name)
			if upload == "" {
				continue
			}
			s.mu.Lock()
			s.invalid[upload] = struct{}{}
			s.mu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("fsnotify watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) uploadFromEventPath(path string) string {
	rel, err := filepath.Rel(s.base, path)
	if err != nil {
		return ""
	}
	first := rel
	if idx := indexOfSeparator(rel); idx >= 0 {
		first = rel[:idx]
	}
	return first
}

func indexOfSeparator(p string) int {
	for i, r := range p {
		if r == os.PathSeparator || r == '/' {
			return i
		}
	}
	return -1
}

func (s *FileStore) List(ctx context.Context, upload valueobjects.UploadID, dir string) ([]fs.DirEntry, error) {
	full := filepath.Join(s.base, upload.String(), dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", full, err)
	}
	return entries, nil
}

func (s *FileStore) Stat(ctx context.Context, upload valueobjects.UploadID, path string) (fs.FileInfo, error) {
	full := filepath.Join(s.base, upload.String(), path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	return info, nil
}

func (s *FileStore) ReadFile(ctx context.Context, upload valueobjects.UploadID, path string) ([]byte, error) {
	full := filepath.Join(s.base, upload.String(), path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return data, nil
}

// Invalidated reports and clears whether upload's raw tree has changed on
// disk since the last call, letting a caching layer above this store
// (e.g. a bounded LRU of directory listings) know when to drop entries.
func (s *FileStore) Invalidated(upload valueobjects.UploadID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, changed := s.invalid[upload.String()]
	delete(s.invalid, upload.String())
	return changed
}

// Close stops the fsnotify watcher goroutine.
func (s *FileStore) Close() error {
	return s.watcher.Close()
}
