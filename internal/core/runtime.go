package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
)

// Runtime abstracts the Python-side primitives the core depends on:
// import extraction, environment creation, availability probes, package
// installation, and script execution. The core never shells out
// directly; tests substitute a fake.
type Runtime interface {
	// ExtractImports returns the top-level module names imported by the
	// script. Malformed source fails with a line/column diagnostic.
	ExtractImports(scriptPath string) ([]string, error)

	// CreateEnv creates a fresh virtualenv at location. Fails if the
	// location is unwritable.
	CreateEnv(location string, systemSitePackages bool) error

	// IsAvailable reports whether module is importable inside the
	// environment. Unavailability is a normal false, never an error.
	IsAvailable(envDir, module string) bool

	// IsBuiltin reports whether module resolves without any
	// installation step (standard library / builtin).
	IsBuiltin(module string) bool

	// Install installs one package into the environment.
	Install(envDir, pkg string) error

	// Run executes the script inside the environment with the given
	// args and returns its exit code. Interruption maps to exit code 1.
	Run(ctx context.Context, envDir, scriptPath string, args []string) (int, error)
}

// extractProgram is the AST probe handed to the base interpreter.
// It prints the sorted top-level import names as a JSON array, or a
// file:line:col diagnostic on a syntax error.
const extractProgram = `
import ast, json, sys

path = sys.argv[1]
with open(path, "r", encoding="utf-8") as f:
    source = f.read()
try:
    tree = ast.parse(source, filename=path)
except SyntaxError as e:
    sys.stderr.write("%s:%s:%s: %s\n" % (e.filename, e.lineno, e.offset, e.msg))
    sys.exit(1)

names = set()
for node in ast.walk(tree):
    if isinstance(node, ast.Import):
        for alias in node.names:
            names.add(alias.name.split(".")[0])
    elif isinstance(node, ast.ImportFrom):
        if node.module and node.level == 0:
            names.add(node.module.split(".")[0])
print(json.dumps(sorted(names)))
`

// availableProgram probes whether a module is importable. find_spec can
// itself raise for odd names; any failure counts as unavailable.
const availableProgram = `
import importlib.util, sys
try:
    found = importlib.util.find_spec(sys.argv[1]) is not None
except Exception:
    found = False
sys.exit(0 if found else 1)
`

// builtinProgram answers the standard-library membership query against
// the runtime's own module registry, never a static list.
const builtinProgram = `
import sys
name = sys.argv[1]
builtin = name in sys.stdlib_module_names or name in sys.builtin_module_names
sys.exit(0 if builtin else 1)
`

// PyRuntime implements Runtime by shelling out to a base Python
// interpreter and to the per-environment interpreter under <env>/bin.
type PyRuntime struct {
	// Interpreter is the base interpreter used to create environments
	// and to answer parse/builtin queries (e.g. "python3").
	Interpreter string
}

// NewPyRuntime creates a PyRuntime over the given base interpreter.
func NewPyRuntime(interpreter string) *PyRuntime {
	return &PyRuntime{Interpreter: interpreter}
}

// EnvPython returns the path of the interpreter inside an environment.
func EnvPython(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, "Scripts", "python.exe")
	}
	return filepath.Join(envDir, "bin", "python")
}

// ExtractImports runs the AST probe over the script.
func (r *PyRuntime) ExtractImports(scriptPath string) ([]string, error) {
	cmd := exec.Command(r.Interpreter, "-c", extractProgram, scriptPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return nil, fmt.Errorf("parsing script: %s", diag)
		}
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(stdout.String()), &names); err != nil {
		return nil, fmt.Errorf("decoding import list: %w", err)
	}
	return names, nil
}

// CreateEnv creates a virtualenv via `python -m venv`.
func (r *PyRuntime) CreateEnv(location string, systemSitePackages bool) error {
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("creating environments directory: %w", err)
	}

	args := []string{"-m", "venv"}
	if systemSitePackages {
		args = append(args, "--system-site-packages")
	}
	args = append(args, location)

	cmd := exec.Command(r.Interpreter, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("creating environment at %s: %w\n%s", location, err, trimOutput(output))
	}
	return nil
}

// IsAvailable probes the environment's interpreter for the module.
func (r *PyRuntime) IsAvailable(envDir, module string) bool {
	cmd := exec.Command(EnvPython(envDir), "-c", availableProgram, module)
	return cmd.Run() == nil
}

// IsBuiltin asks the base interpreter whether the module ships with it.
func (r *PyRuntime) IsBuiltin(module string) bool {
	cmd := exec.Command(r.Interpreter, "-c", builtinProgram, module)
	return cmd.Run() == nil
}

// Install runs pip inside the environment for a single package.
func (r *PyRuntime) Install(envDir, pkg string) error {
	cmd := exec.Command(EnvPython(envDir), "-m", "pip", "install", pkg)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pip install %s: %w\n%s", pkg, err, trimOutput(output))
	}
	return nil
}

// Run executes the script with inherited stdio. SIGINT and SIGTERM are
// forwarded to the child; an interrupted run finishes as a clean exit 1
// rather than a stack trace.
func (r *PyRuntime) Run(ctx context.Context, envDir, scriptPath string, args []string) (int, error) {
	cmd := exec.Command(EnvPython(envDir), append([]string{scriptPath}, args...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("starting script: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	interrupted := false
	ctxDone := ctx.Done()
	for {
		select {
		case <-ctxDone:
			_ = cmd.Process.Signal(syscall.SIGTERM)
			interrupted = true
			ctxDone = nil
		case sig := <-sigCh:
			// Forward and keep waiting; the child decides when to die.
			_ = cmd.Process.Signal(sig)
			interrupted = true
		case err := <-done:
			if interrupted {
				return 1, nil
			}
			if err == nil {
				return 0, nil
			}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code := exitErr.ExitCode()
				if code < 0 {
					// Killed by a signal we did not forward.
					return 1, nil
				}
				return code, nil
			}
			return 1, fmt.Errorf("running script: %w", err)
		}
	}
}

// trimOutput keeps the tail of subprocess output for error messages.
func trimOutput(output []byte) string {
	const maxLines = 15
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
