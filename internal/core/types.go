// Package core provides the business logic for pythrun.
// It has zero UI dependencies and is independently testable.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceKind identifies where a run's dependency set came from.
type SourceKind string

const (
	// SourceImports means the set was inferred from the script's import statements.
	SourceImports SourceKind = "imports"
	// SourceRequirements means the set was read from a requirements manifest.
	SourceRequirements SourceKind = "requirements"
)

// valid reports whether the kind is one of the known values.
// Used when loading persisted records to detect corruption.
func (k SourceKind) valid() bool {
	return k == SourceImports || k == SourceRequirements
}

// DependencySource is the chosen origin of a run's dependency set.
// ManifestPath is set only for SourceRequirements.
type DependencySource struct {
	Kind         SourceKind
	ManifestPath string
}

// DependencySet is an unordered set of package names, case-sensitive
// as written in source or manifest.
type DependencySet map[string]struct{}

// NewDependencySet builds a set from the given names, collapsing duplicates.
func NewDependencySet(names ...string) DependencySet {
	s := make(DependencySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts a name into the set.
func (s DependencySet) Add(name string) {
	s[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s DependencySet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Equal reports whether both sets contain exactly the same names.
func (s DependencySet) Equal(other DependencySet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the names in lexical order. Iteration over the map is
// unordered; all user-facing output and install loops go through this.
func (s DependencySet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Script describes the script being run. Path is absolute and
// symlink-resolved; immutable for the duration of the run.
type Script struct {
	Path string
	Dir  string
	Stem string // base name without extension, used for manifest lookup
}

// ResolveScript resolves a user-supplied script path into a Script.
// The path must name an existing regular file.
func ResolveScript(path string) (*Script, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving script path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving script path: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat script: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("script path %s is a directory", resolved)
	}

	base := filepath.Base(resolved)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return &Script{
		Path: resolved,
		Dir:  filepath.Dir(resolved),
		Stem: stem,
	}, nil
}
