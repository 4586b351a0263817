package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avasquez/pythrun/cmd/pythrun/cmd"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"pythrun": func() {
			os.Exit(cmd.Execute())
		},
	})
}

// TestScript runs the e2e scenarios in testdata/script. Each scenario
// points PYTHRUN_PYTHON at a stub interpreter (a shell script shipped
// in the archive) so no real Python is needed: the stub answers the
// venv/pip/import-probe invocations and "runs" scripts with sh.
func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 filepath.Join("testdata", "script"),
		RequireExplicitExec: true,
		Setup: func(e *testscript.Env) error {
			// Set HOME to WORK so ~/.pythrun/ is created inside the temp dir.
			e.Vars = append(e.Vars, "HOME="+e.WorkDir)
			return nil
		},
	})
}
