package core

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sharedManifestName = "requirements.txt"

// manifestCandidates returns the manifest paths checked for a script,
// in precedence order: script-specific first, then shared.
func manifestCandidates(script *Script) []string {
	return []string{
		filepath.Join(script.Dir, script.Stem+".requirements.txt"),
		filepath.Join(script.Dir, sharedManifestName),
	}
}

// SelectSource chooses the dependency source for a run and computes the
// corresponding dependency set.
//
// Precedence: <stem>.requirements.txt next to the script, then
// requirements.txt in the script's directory, then imports inferred
// from the script source. An existing manifest that cannot be read or
// a script that cannot be parsed is fatal.
func SelectSource(script *Script, rt Runtime) (DependencySource, DependencySet, error) {
	for _, path := range manifestCandidates(script) {
		if !fileExists(path) {
			continue
		}
		set, err := ParseManifest(path)
		if err != nil {
			return DependencySource{}, nil, err
		}
		return DependencySource{Kind: SourceRequirements, ManifestPath: path}, set, nil
	}

	names, err := rt.ExtractImports(script.Path)
	if err != nil {
		return DependencySource{}, nil, err
	}
	return DependencySource{Kind: SourceImports}, NewDependencySet(names...), nil
}

// ParseManifest reads a requirements manifest: one package name per
// line, blanks and #-comments skipped, duplicates collapsed.
func ParseManifest(path string) (DependencySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	set := make(DependencySet)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return set, nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists reports whether path names an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
