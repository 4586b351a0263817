package core

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Environment location prefixes, one per source kind. Two distinct
// (kind, path) pairs never share a directory even on a hash collision
// of paths across kinds.
const (
	requirementsEnvPrefix = "req_"
	importsEnvPrefix      = "script_"
)

// identityHashLen is the number of hex characters kept from the path
// hash. 16 hex chars of SHA-256 make accidental collisions between
// distinct paths negligible; resistance beyond that is not a goal.
const identityHashLen = 16

// EnvironmentIdentity derives the stable identity for a (kind, path)
// pair. The identity depends only on the path, never on manifest
// contents or the current import set, so edits reuse the same
// environment instead of orphaning old ones. Pure function; no I/O.
func EnvironmentIdentity(primaryPath string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(primaryPath)))
	return hex.EncodeToString(sum[:])[:identityHashLen]
}

// EnvironmentLocation maps a (kind, primaryPath) pair to its directory
// under baseDir. For SourceRequirements primaryPath is the manifest's
// absolute path; for SourceImports it is the script's absolute path.
// Deterministic across runs and machines for the same inputs.
func EnvironmentLocation(baseDir string, kind SourceKind, primaryPath string) string {
	prefix := importsEnvPrefix
	if kind == SourceRequirements {
		prefix = requirementsEnvPrefix
	}
	return filepath.Join(baseDir, prefix+EnvironmentIdentity(primaryPath))
}

// sourcePrimaryPath returns the path whose identity keys the
// environment for the given source.
func sourcePrimaryPath(script *Script, src DependencySource) string {
	if src.Kind == SourceRequirements {
		return src.ManifestPath
	}
	return script.Path
}
