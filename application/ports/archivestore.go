package ports

import (
	"context"
	"io/fs"

	"graphqueryreader/domain/core/valueobjects"
)

// ArchiveFileStore is the hierarchical raw-file backend behind the
// FileSystemReader, offloaded to from Upload.files and remote "raw"
// references (spec.md §2, §4.3, §4.4).
type ArchiveFileStore interface {
	// List returns the immediate children of dir within the given
	// upload's raw file tree, in directory order.
	List(ctx context.Context, upload valueobjects.UploadID, dir string) ([]fs.DirEntry, error)

	// Stat returns metadata for a single path without reading its
	// contents, used when only size/mtime/name are requested.
	Stat(ctx context.Context, upload valueobjects.UploadID, path string) (fs.FileInfo, error)

	// ReadFile returns the full contents of a raw file. Large reads are
	// capped by the caller via RequestConfig's size limits before this is
	// invoked for anything but small files.
	ReadFile(ctx context.Context, upload valueobjects.UploadID, path string) ([]byte, error)
}

// ArchiveStore is the schema-bearing scientific-archive backend behind the
// ArchiveReader and DefinitionReader, offloaded to from Entry.archive and
// remote "archive" references (spec.md §2, §4.3, §4.4).
type ArchiveStore interface {
	// GetArchive returns the full parsed archive document for one entry,
	// together with the schema definition name it validates against.
	GetArchive(ctx context.Context, entry valueobjects.EntryID) (archive map[string]interface{}, definitionName string, err error)
}
