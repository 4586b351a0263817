package core

import (
	"fmt"
	"strings"
)

// VerifyImports checks, for a manifest-driven run, that every
// non-builtin module the script imports is actually resolvable in the
// environment. This catches a manifest that is missing an entry the
// code needs: installation succeeded for everything listed, yet the
// script would still crash on import.
//
// Unresolvable imports are a hard pre-execution error. Callers skip
// this check for inferred-imports runs, where the installed set is
// derived from the same extraction and is definitionally complete
// barring install failures already surfaced by the installer.
func VerifyImports(rt Runtime, envDir string, script *Script) error {
	names, err := rt.ExtractImports(script.Path)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range NewDependencySet(names...).Sorted() {
		if rt.IsBuiltin(name) {
			continue
		}
		if !rt.IsAvailable(envDir, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("script imports modules not provided by the environment: %s (add them to the manifest)",
			strings.Join(missing, ", "))
	}
	return nil
}
