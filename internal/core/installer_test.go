package core

import (
	"io"
	"reflect"
	"testing"
)

func quietPrinter() *Printer {
	return &Printer{Quiet: false, Out: io.Discard, Err: io.Discard}
}

func TestInstallDependencies_InstallsMissing(t *testing.T) {
	rt := newFakeRuntime()
	env := t.TempDir()
	rt.installed[env] = map[string]bool{}

	report := InstallDependencies(rt, env, NewDependencySet("requests", "flask"), nil, quietPrinter())

	if !reflect.DeepEqual(report.Installed, []string{"flask", "requests"}) {
		t.Errorf("Installed = %v", report.Installed)
	}
	if len(report.Failed) != 0 {
		t.Errorf("Failed = %v, want none", report.Failed)
	}
	if !rt.IsAvailable(env, "requests") || !rt.IsAvailable(env, "flask") {
		t.Error("packages not available after install")
	}
}

func TestInstallDependencies_SkipsAvailable(t *testing.T) {
	rt := newFakeRuntime()
	env := t.TempDir()
	rt.installed[env] = map[string]bool{"requests": true}

	report := InstallDependencies(rt, env, NewDependencySet("requests", "flask"), nil, quietPrinter())

	if !reflect.DeepEqual(report.Skipped, []string{"requests"}) {
		t.Errorf("Skipped = %v, want [requests]", report.Skipped)
	}
	if !reflect.DeepEqual(rt.installCalls, []string{"flask"}) {
		t.Errorf("installCalls = %v, want [flask]", rt.installCalls)
	}
}

func TestInstallDependencies_BuiltinsNeverInstalled(t *testing.T) {
	rt := newFakeRuntime()
	rt.builtins["json"] = true
	env := t.TempDir()
	rt.installed[env] = map[string]bool{}

	report := InstallDependencies(rt, env, NewDependencySet("json"), nil, quietPrinter())

	if len(rt.installCalls) != 0 {
		t.Errorf("installCalls = %v, want none for a builtin", rt.installCalls)
	}
	if !reflect.DeepEqual(report.Skipped, []string{"json"}) {
		t.Errorf("Skipped = %v", report.Skipped)
	}
}

func TestInstallDependencies_AliasMapping(t *testing.T) {
	rt := newFakeRuntime()
	rt.provides["pyyaml"] = "yaml"
	env := t.TempDir()
	rt.installed[env] = map[string]bool{}

	aliases := map[string]string{"yaml": "pyyaml"}
	report := InstallDependencies(rt, env, NewDependencySet("yaml"), aliases, quietPrinter())

	if !reflect.DeepEqual(rt.installCalls, []string{"pyyaml"}) {
		t.Errorf("installCalls = %v, want [pyyaml]", rt.installCalls)
	}
	// The report speaks the user's language, not pip's.
	if !reflect.DeepEqual(report.Installed, []string{"yaml"}) {
		t.Errorf("Installed = %v, want [yaml]", report.Installed)
	}
	if !rt.IsAvailable(env, "yaml") {
		t.Error("yaml not importable after installing pyyaml")
	}
}

func TestInstallDependencies_FailureContinues(t *testing.T) {
	rt := newFakeRuntime()
	rt.failInstall["badpkg"] = true
	env := t.TempDir()
	rt.installed[env] = map[string]bool{}

	report := InstallDependencies(rt, env, NewDependencySet("aaa", "badpkg", "zzz"), nil, quietPrinter())

	// All three were attempted; the failure did not abort the pass.
	if !reflect.DeepEqual(rt.installCalls, []string{"aaa", "badpkg", "zzz"}) {
		t.Errorf("installCalls = %v", rt.installCalls)
	}
	if !reflect.DeepEqual(report.Failed, []string{"badpkg"}) {
		t.Errorf("Failed = %v, want [badpkg]", report.Failed)
	}
	if !reflect.DeepEqual(report.Installed, []string{"aaa", "zzz"}) {
		t.Errorf("Installed = %v, want [aaa zzz]", report.Installed)
	}
}
