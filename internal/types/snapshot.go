package types

import "sort"

// FileSnapshot maps repository-relative paths to their content.
// A nil value means the path was in the candidate set but absent from the
// repository. Snapshots are built once by the collector and treated as
// immutable for the rest of the run.
type FileSnapshot map[string]*string

// Content returns the file content and whether the file is present.
func (s FileSnapshot) Content(path string) (string, bool) {
	c, ok := s[path]
	if !ok || c == nil {
		return "", false
	}
	return *c, true
}

// Has reports whether the path resolved to actual content.
func (s FileSnapshot) Has(path string) bool {
	_, ok := s.Content(path)
	return ok
}

// HasAny reports whether at least one of the paths is present.
func (s FileSnapshot) HasAny(paths ...string) bool {
	for _, p := range paths {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Paths returns every candidate path in the snapshot, sorted, including
// absent ones.
func (s FileSnapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
