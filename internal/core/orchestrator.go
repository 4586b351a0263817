package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfirmPolicy decides whether to run the script anyway after some
// dependency installations failed. Injected by the caller so the core
// stays free of terminal interaction.
type ConfirmPolicy func(failed []string) bool

// RunOptions configures a single run.
type RunOptions struct {
	Args               []string // passed through to the script verbatim
	EnvsDir            string   // base directory for environments
	SystemSitePackages bool     // include system site packages at creation
	Aliases            map[string]string
	Confirm            ConfirmPolicy // nil declines
	Printer            *Printer
}

// Orchestrator wires the pipeline: source selection, identity
// resolution, lifecycle decision, installation, verification,
// execution. All steps are sequential and blocking; there is no
// locking between concurrent invocations against the same identity
// (documented precondition: don't do that).
type Orchestrator struct {
	rt Runtime
}

// NewOrchestrator creates an Orchestrator over the given runtime.
func NewOrchestrator(rt Runtime) *Orchestrator {
	return &Orchestrator{rt: rt}
}

// Run executes scriptPath inside its managed environment and returns
// the exit code the tool should finish with. A non-nil error is always
// a pre-execution failure; once the script starts, its exit status is
// propagated, never interpreted.
func (o *Orchestrator) Run(ctx context.Context, scriptPath string, opts RunOptions) (int, error) {
	p := opts.Printer
	if p == nil {
		p = NewPrinter(false)
	}

	script, err := ResolveScript(scriptPath)
	if err != nil {
		return 1, err
	}

	src, deps, err := SelectSource(script, o.rt)
	if err != nil {
		return 1, err
	}
	if src.Kind == SourceRequirements {
		p.Infof("Using manifest %s", src.ManifestPath)
	} else {
		p.Infof("Using imports inferred from %s", filepath.Base(script.Path))
	}

	plan, err := PlanEnvironment(o.rt, opts.EnvsDir, script, src, deps, opts.SystemSitePackages)
	if err != nil {
		return 1, err
	}

	for _, stale := range plan.RemovedStale {
		p.Infof("Dependency source changed; removed stale environment %s", stale)
	}

	switch plan.Action {
	case ActionRecreate:
		p.Infof("Dependency source changed; recreating environment %s", plan.Location)
	case ActionInstall:
		if plan.Created {
			p.Infof("Created environment %s", plan.Location)
		} else {
			p.Infof("Dependency set changed; updating environment %s", plan.Location)
		}
	case ActionReuse:
		p.Infof("Environment up to date: %s", plan.Location)
	}

	if plan.InstallRequired() {
		report := InstallDependencies(o.rt, plan.Location, deps, opts.Aliases, p)

		// The fingerprint records the attempted set even when some
		// installs failed and even if the user declines below: a later
		// run with the same still-failing set must not hammer a known-bad
		// install without the set itself changing.
		if err := SaveFingerprint(plan.Location, deps, src.Kind); err != nil {
			return 1, err
		}

		if len(report.Failed) > 0 {
			p.Errorf("%d package(s) failed to install: %s",
				len(report.Failed), strings.Join(report.Failed, ", "))
			if opts.Confirm == nil || !opts.Confirm(report.Failed) {
				return 1, fmt.Errorf("aborted: %d package(s) failed to install", len(report.Failed))
			}
			p.Warnf("continuing with missing packages")
		}
	}

	if src.Kind == SourceRequirements {
		if err := VerifyImports(o.rt, plan.Location, script); err != nil {
			return 1, err
		}
	}

	code, err := o.rt.Run(ctx, plan.Location, script.Path, opts.Args)
	if err != nil {
		return 1, err
	}
	if code != 0 {
		p.Warnf("script exited with code %d", code)
	}
	return code, nil
}

// EnvInfo describes one cached environment for listings.
type EnvInfo struct {
	Location   string
	Kind       SourceKind
	ScriptPath string
	CreatedAt  string
	Packages   []string
}

// ListEnvironments reads every environment under baseDir, newest
// directory name last (lexical order, which is stable across runs).
func ListEnvironments(baseDir string) ([]EnvInfo, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading environments directory: %w", err)
	}

	var infos []EnvInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, requirementsEnvPrefix) && !strings.HasPrefix(name, importsEnvPrefix) {
			continue
		}

		location := filepath.Join(baseDir, name)
		info := EnvInfo{Location: location}

		if set, kind, ok, err := LoadFingerprint(location); err == nil && ok {
			info.Kind = kind
			info.Packages = set.Sorted()
		}
		if meta, err := ReadMetadata(location); err == nil && meta != nil {
			info.ScriptPath = meta.ScriptPath
			info.CreatedAt = meta.CreatedAt
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Location < infos[j].Location })
	return infos, nil
}

// CleanScript removes the cached environments associated with a
// script: the one keyed to the script itself plus any keyed to a
// manifest next to it, plus any environment whose metadata names the
// script (covers manifests deleted since creation). Returns the
// removed locations.
func CleanScript(baseDir, scriptPath string) ([]string, error) {
	script, err := ResolveScript(scriptPath)
	if err != nil {
		return nil, err
	}

	candidates := map[string]struct{}{
		EnvironmentLocation(baseDir, SourceImports, script.Path): {},
	}
	for _, manifest := range manifestCandidates(script) {
		if fileExists(manifest) {
			candidates[EnvironmentLocation(baseDir, SourceRequirements, manifest)] = struct{}{}
		}
	}

	if infos, err := ListEnvironments(baseDir); err == nil {
		for _, info := range infos {
			if info.ScriptPath == script.Path {
				candidates[info.Location] = struct{}{}
			}
		}
	}

	var removed []string
	for location := range candidates {
		if !dirExists(location) {
			continue
		}
		if err := os.RemoveAll(location); err != nil {
			return removed, fmt.Errorf("removing %s: %w", location, err)
		}
		removed = append(removed, location)
	}
	sort.Strings(removed)
	return removed, nil
}
