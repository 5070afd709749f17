// Package globmatch evaluates a RequestConfig's Include/Exclude glob
// lists against a candidate key, the filter fsReader and archiveReader
// apply before materializing a child (spec.md §4.4, §4.6 filtering).
package globmatch

import "github.com/bmatcuk/doublestar/v4"

// Allowed reports whether name passes the include/exclude filter: it
// must match at least one include pattern (or includes is empty) and
// must not match any exclude pattern. Exclude always wins over include.
func Allowed(name string, includes, excludes []string) bool {
	for _, pattern := range excludes {
		if matches(pattern, name) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, pattern := range includes {
		if matches(pattern, name) {
			return true
		}
	}
	return false
}

func matches(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	if err != nil {
		return false
	}
	return ok
}
