package core

import (
	"fmt"
	"os"
)

// Action is the lifecycle decision for an environment, evaluated once
// per run.
type Action int

const (
	// ActionReuse means kind and set are unchanged; no installation.
	ActionReuse Action = iota
	// ActionInstall means the environment is kept (or freshly created)
	// and the full current set is handed to the installer.
	ActionInstall
	// ActionRecreate means the source kind changed for this identity:
	// the directory was destroyed and rebuilt, and a full install is
	// forced regardless of set equality.
	ActionRecreate
)

// String returns the action name for messages and tests.
func (a Action) String() string {
	switch a {
	case ActionReuse:
		return "reuse"
	case ActionInstall:
		return "install"
	case ActionRecreate:
		return "recreate"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Plan is the terminal outcome of the lifecycle state machine: a
// guaranteed-existing environment location plus what to do with it.
type Plan struct {
	Location     string
	Action       Action
	Created      bool          // directory was created during this run
	Dependencies DependencySet // current set, installed in full when required
	RemovedStale []string      // other-kind environments of this script that were destroyed
}

// InstallRequired reports whether the installer must run.
func (p *Plan) InstallRequired() bool {
	return p.Action != ActionReuse
}

// PlanEnvironment compares the current dependency source and set
// against the cached fingerprint and the directory's existence, and
// settles on reuse, reinstall-in-place, or destroy-and-recreate.
//
// Transitions, in evaluation order:
//  1. cached kind present, different from the current kind, and the
//     directory exists -> destroy and recreate, force full install;
//  2. directory missing -> create it;
//  3. kind unchanged, set unchanged -> reuse as-is;
//  4. otherwise (set changed, or no prior record) -> reinstall in
//     place with the full current set; the installer skips what is
//     already satisfied.
//
// A set change under the same kind never destroys the directory, so
// the metadata creation record survives reinstalls.
//
// Because the location prefix encodes the kind, a manifest<->inferred
// switch for a script resolves to a different directory; the stale one
// is found through its creation metadata and destroyed (see
// removeStaleKindEnvironments).
func PlanEnvironment(rt Runtime, baseDir string, script *Script, src DependencySource, deps DependencySet, systemSitePackages bool) (*Plan, error) {
	location := EnvironmentLocation(baseDir, src.Kind, sourcePrimaryPath(script, src))

	removedStale, err := removeStaleKindEnvironments(baseDir, script, src.Kind, location)
	if err != nil {
		return nil, err
	}

	cachedSet, cachedKind, hasRecord, err := LoadFingerprint(location)
	if err != nil {
		return nil, err
	}

	exists := dirExists(location)
	plan := &Plan{Location: location, Dependencies: deps, RemovedStale: removedStale}

	switch {
	case exists && hasRecord && cachedKind != src.Kind:
		// The identity is the same path but its dependency source
		// changed shape (manifest <-> inferred). Assumptions baked into
		// the environment are stale; rebuild from scratch.
		if err := os.RemoveAll(location); err != nil {
			return nil, fmt.Errorf("removing stale environment %s: %w", location, err)
		}
		if err := createEnvironment(rt, location, script, systemSitePackages); err != nil {
			return nil, err
		}
		plan.Action = ActionRecreate
		plan.Created = true

	case !exists:
		if err := createEnvironment(rt, location, script, systemSitePackages); err != nil {
			return nil, err
		}
		plan.Action = ActionInstall
		plan.Created = true

	case hasRecord && cachedKind == src.Kind && cachedSet.Equal(deps):
		plan.Action = ActionReuse

	default:
		// Set changed under the same kind, or the directory exists with
		// no readable record. Reinstall in place.
		plan.Action = ActionInstall
	}

	return plan, nil
}

// removeStaleKindEnvironments destroys environments created by this
// script whose recorded source kind differs from the current run's.
// This is the manifest<->inferred rebuild: the kinds live at different
// locations, so the flip leaves the old directory behind with stale
// assumptions baked in. The current location is exempt (the in-place
// recreate path handles it).
func removeStaleKindEnvironments(baseDir string, script *Script, kind SourceKind, currentLocation string) ([]string, error) {
	infos, err := ListEnvironments(baseDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, info := range infos {
		if info.Location == currentLocation {
			continue
		}
		if info.ScriptPath != script.Path {
			continue
		}
		if info.Kind == "" || info.Kind == kind {
			continue
		}
		if err := os.RemoveAll(info.Location); err != nil {
			return removed, fmt.Errorf("removing stale environment %s: %w", info.Location, err)
		}
		removed = append(removed, info.Location)
	}
	return removed, nil
}

// createEnvironment provisions a fresh environment and writes its
// creation metadata.
func createEnvironment(rt Runtime, location string, script *Script, systemSitePackages bool) error {
	if err := rt.CreateEnv(location, systemSitePackages); err != nil {
		return err
	}
	if err := WriteMetadata(location, script.Path); err != nil {
		return err
	}
	return nil
}
