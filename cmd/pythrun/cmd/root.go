package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/avasquez/pythrun/internal/core"
	"github.com/avasquez/pythrun/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// scriptExit carries the script's exit code from the run out to main.
var scriptExit int

var rootCmd = &cobra.Command{
	Use:   "pythrun <script> [args...]",
	Short: "Run a Python script in an automatically managed virtualenv",
	Long: `pythrun runs an ad-hoc Python script inside a reproducible, isolated
virtualenv without manual environment management.

Dependencies come from <script>.requirements.txt next to the script,
else requirements.txt in the script's directory, else the script's own
import statements. Environments are cached under ~/.pythrun/envs and
keyed to the dependency source, so unchanged scripts start instantly
on the second run.

Arguments after the script path are passed through to it verbatim.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScript,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pythrun %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	// Flags after the script path belong to the script, not to us.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress non-critical output")
	rootCmd.Flags().Bool("no-system-packages", false, "Exclude system site packages from new environments")
	rootCmd.Flags().String("envs-dir", "", "Base directory for environments (default: ~/.pythrun/envs)")
	rootCmd.AddCommand(versionCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	cm, err := core.NewConfigManager()
	if err != nil {
		return err
	}
	cfg, err := cm.Load()
	if err != nil {
		return err
	}
	aliases, err := cm.LoadAliases()
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noSystem, _ := cmd.Flags().GetBool("no-system-packages")
	envsDir, _ := cmd.Flags().GetString("envs-dir")
	if envsDir == "" {
		envsDir = cfg.EnvsDir
	}

	printer := core.NewPrinter(quiet || cfg.Quiet)
	orch := core.NewOrchestrator(core.NewPyRuntime(cfg.Python))

	code, err := orch.Run(context.Background(), args[0], core.RunOptions{
		Args:               args[1:],
		EnvsDir:            envsDir,
		SystemSitePackages: !noSystem,
		Aliases:            aliases,
		Confirm:            confirmPolicy(printer),
		Printer:            printer,
	})
	if err != nil {
		return err
	}
	scriptExit = code
	return nil
}

// confirmPolicy prompts interactively on a terminal and declines
// otherwise, so unattended runs never execute a script with
// known-missing dependencies.
func confirmPolicy(p *core.Printer) core.ConfirmPolicy {
	return func(failed []string) bool {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			p.Errorf("not a terminal; refusing to continue with failed installs")
			return false
		}
		ok, err := tui.ConfirmInstallFailures(failed)
		if err != nil {
			p.Errorf("%v", err)
			return false
		}
		return ok
	}
}

// Execute runs the root command and returns the process exit code:
// the script's own exit code on the success path, 1 on internal
// failures, interruption, or declined continuation.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return scriptExit
}
