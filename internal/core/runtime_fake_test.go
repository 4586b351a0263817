package core

import (
	"context"
	"fmt"
	"os"
)

// fakeRuntime is an in-memory Runtime. Environments are real temp
// directories (the lifecycle checks their existence on disk) but
// interpreter behavior is scripted per test.
type fakeRuntime struct {
	// imports maps script path -> extracted import names.
	imports map[string][]string
	// extractErr, when set, fails every extraction (parse error).
	extractErr error
	// builtins are modules that resolve without installation.
	builtins map[string]bool
	// installed tracks modules importable per environment.
	installed map[string]map[string]bool
	// provides maps an installed package name to the module it makes
	// importable (e.g. pyyaml -> yaml). Defaults to the package name.
	provides map[string]string
	// failInstall lists package names whose installation fails.
	failInstall map[string]bool

	createCalls  []string
	installCalls []string
	runCalls     []string
	runExit      int
	runErr       error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		imports:     make(map[string][]string),
		builtins:    make(map[string]bool),
		installed:   make(map[string]map[string]bool),
		provides:    make(map[string]string),
		failInstall: make(map[string]bool),
	}
}

func (f *fakeRuntime) ExtractImports(scriptPath string) ([]string, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.imports[scriptPath], nil
}

func (f *fakeRuntime) CreateEnv(location string, systemSitePackages bool) error {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return err
	}
	f.createCalls = append(f.createCalls, location)
	if f.installed[location] == nil {
		f.installed[location] = make(map[string]bool)
	}
	return nil
}

func (f *fakeRuntime) IsAvailable(envDir, module string) bool {
	if f.builtins[module] {
		return true
	}
	return f.installed[envDir][module]
}

func (f *fakeRuntime) IsBuiltin(module string) bool {
	return f.builtins[module]
}

func (f *fakeRuntime) Install(envDir, pkg string) error {
	f.installCalls = append(f.installCalls, pkg)
	if f.failInstall[pkg] {
		return fmt.Errorf("no matching distribution found for %s", pkg)
	}
	module := pkg
	if m, ok := f.provides[pkg]; ok {
		module = m
	}
	if f.installed[envDir] == nil {
		f.installed[envDir] = make(map[string]bool)
	}
	f.installed[envDir][module] = true
	return nil
}

func (f *fakeRuntime) Run(ctx context.Context, envDir, scriptPath string, args []string) (int, error) {
	f.runCalls = append(f.runCalls, scriptPath)
	return f.runExit, f.runErr
}
