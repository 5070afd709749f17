package core

import (
	"strconv"
	"strings"
	"time"

	"graphqueryreader/domain/core/valueobjects"
	"graphqueryreader/pkg/refpath"
)

// pathSegmentCache holds the split form of reference path fragments,
// which recur heavily across a single walk (the same reference string
// is often hit once per list element). New never errors for a positive
// size, so the zero-value fallback below is unreachable in practice.
var pathSegmentCache, _ = refpath.New(4096, 10*time.Minute)

// ReferenceKind distinguishes the shape a reference string was written in.
type ReferenceKind int

const (
	// ReferenceLocal is "/path" or "#/path" inside the current archive.
	ReferenceLocal ReferenceKind = iota
	// ReferenceRemote is "../uploads/U/archive/E#/path" (or ...raw/F#/path).
	ReferenceRemote
	// ReferenceModulePath is a dotted metainfo module reference, e.g.
	// "nomad.datamodel.EntryArchive.workflow".
	ReferenceModulePath
)

// TargetKind selects how the remote upload/id-or-file segment of a
// reference names its target (spec.md §4.4 goto()).
type TargetKind string

const (
	TargetKindEntry TargetKind = "entry"
	TargetKindRaw   TargetKind = "raw"
)

// Reference is the parsed form of a reference string found in an archive
// quantity value (spec.md §3, Reference URL).
type Reference struct {
	Kind ReferenceKind

	// Populated when Kind == ReferenceRemote.
	Installation string // non-empty means cross-installation (unsupported)
	UploadID     valueobjects.UploadID
	IDOrFile     string
	TargetKind   TargetKind

	// Path is the dot/slash-separated path within the target archive,
	// already split into components (integers stay as numeric strings;
	// _normalise_index interprets them against the live archive shape).
	Path []string

	// Raw is the original, unparsed reference string — kept so a failed
	// goto() can fall back to leaving it in place (spec.md §4.4).
	Raw string
}

// ParseReference parses a reference string per spec.md §4.7
// (_convert_ref_to_path) and §4.4 (goto). Local references begin with "/"
// or "#/" and share the current upload/entry; remote ones are of the form
// "../uploads/<upload>/archive/<entry-or-file>#/<path>", optionally
// prefixed with an installation host the engine always rejects.
func ParseReference(raw string) (*Reference, error) {
	if raw == "" {
		return nil, errEmptyReference
	}

	if strings.HasPrefix(raw, "//") && strings.Contains(raw, "/uploads/") {
		return parseRemoteReference(raw)
	}

	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#/") || raw == "#" {
		return &Reference{Kind: ReferenceLocal, Path: splitPath(stripLocalPrefix(raw)), Raw: raw}, nil
	}

	if strings.Contains(raw, "/uploads/") {
		return parseRemoteReference(raw)
	}

	if strings.Contains(raw, ".") && !strings.Contains(raw, "/") {
		return &Reference{Kind: ReferenceModulePath, Path: strings.Split(raw, "."), Raw: raw}, nil
	}

	// Fall back to treating it as a local path fragment.
	return &Reference{Kind: ReferenceLocal, Path: splitPath(raw), Raw: raw}, nil
}

func stripLocalPrefix(raw string) string {
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(raw, "/")
	return raw
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	if pathSegmentCache != nil {
		if cached, ok := pathSegmentCache.Get(p); ok {
			return cached
		}
	}
	segments := strings.Split(p, "/")
	if pathSegmentCache != nil {
		pathSegmentCache.Put(p, segments)
	}
	return segments
}

// parseRemoteReference handles "[//installation]../uploads/U/archive/E#/path"
// and the raw-file variant "../uploads/U/raw/path/to/file#/path".
func parseRemoteReference(raw string) (*Reference, error) {
	rest := raw
	installation := ""
	if strings.HasPrefix(rest, "//") {
		// "//installation/uploads/..." — cross-installation form, rejected
		// at dispatch time per spec.md §4.4/§9 (extension point only).
		rest = strings.TrimPrefix(rest, "//")
		if idx := strings.Index(rest, "/uploads/"); idx >= 0 {
			installation = rest[:idx]
			rest = rest[idx:]
		}
	} else {
		rest = strings.TrimPrefix(rest, "..")
	}

	fragIdx := strings.Index(rest, "#")
	head := rest
	fragment := ""
	if fragIdx >= 0 {
		head = rest[:fragIdx]
		fragment = rest[fragIdx+1:]
	}

	head = strings.Trim(head, "/")
	segments := strings.Split(head, "/")
	// segments: ["uploads", U, "archive"|"raw", id-or-file...]
	if len(segments) < 3 || segments[0] != "uploads" {
		return nil, errMalformedReference(raw)
	}
	uploadID := segments[1]
	kindToken := segments[2]

	var targetKind TargetKind
	var idOrFile string
	switch kindToken {
	case "archive":
		if len(segments) < 4 {
			return nil, errMalformedReference(raw)
		}
		targetKind = TargetKindEntry
		idOrFile = segments[3]
	case "raw":
		targetKind = TargetKindRaw
		idOrFile = strings.Join(segments[3:], "/")
	default:
		return nil, errMalformedReference(raw)
	}

	up, err := valueobjects.NewUploadID(uploadID)
	if err != nil {
		return nil, err
	}

	return &Reference{
		Kind:         ReferenceRemote,
		Installation: installation,
		UploadID:     up,
		IDOrFile:     idOrFile,
		TargetKind:   targetKind,
		Path:         splitPath(fragment),
		Raw:          raw,
	}, nil
}

// IsCrossInstallation reports whether this reference names another
// installation, which the engine always rejects (spec.md §4.4, Non-goals).
func (r *Reference) IsCrossInstallation() bool {
	return r.Installation != ""
}

// CanonicalPath builds the canonical reference path used for caching,
// hoisted-reference placement, and cycle detection (spec.md §4.7).
// uploadID/entryID are the current node's coordinates, used to fill in
// local references which otherwise carry no upload/entry of their own.
func (r *Reference) CanonicalPath(uploadID valueobjects.UploadID, entryID valueobjects.EntryID) valueobjects.CanonicalPath {
	switch r.Kind {
	case ReferenceModulePath:
		return append(valueobjects.CanonicalPath{"metainfo"}, r.Path...)
	case ReferenceLocal:
		base := valueobjects.CanonicalPath{"uploads", uploadID.String(), "entries", entryID.String(), "archive"}
		return base.Append(r.Path...)
	default: // ReferenceRemote
		base := valueobjects.CanonicalPath{"uploads", r.UploadID.String(), "entries", r.IDOrFile, "archive"}
		return base.Append(r.Path...)
	}
}

// CanonicalString renders the canonical "/uploads/U/entries/E/archive/p"
// style reference string left behind when resolve_inplace is false.
func (r *Reference) CanonicalString(uploadID valueobjects.UploadID, entryID valueobjects.EntryID) string {
	return r.CanonicalPath(uploadID, entryID).String()
}

// VisitKey is the string placed into a GraphNode's visited set, unique per
// resolution target so cycle detection (spec.md §8, Cycle safety) can
// compare it with ==.
func (r *Reference) VisitKey(uploadID valueobjects.UploadID, entryID valueobjects.EntryID) string {
	return r.CanonicalPath(uploadID, entryID).Key()
}

type refError string

func (e refError) Error() string { return string(e) }

var errEmptyReference = refError("empty reference string")

func errMalformedReference(raw string) error {
	return refError("malformed reference: " + strconv.Quote(raw))
}
