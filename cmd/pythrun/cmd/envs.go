package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/avasquez/pythrun/internal/core"
	"github.com/spf13/cobra"
)

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List cached environments",
	Long: `List every cached environment: its location, dependency source kind,
the script that created it, and its creation time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		envsDir, err := resolveEnvsDir(cmd)
		if err != nil {
			return err
		}

		infos, err := core.ListEnvironments(envsDir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(os.Stdout, "No cached environments.")
			return nil
		}

		for _, info := range infos {
			fmt.Fprintf(os.Stdout, "%s\n", info.Location)
			if info.Kind != "" {
				fmt.Fprintf(os.Stdout, "  Source: %s\n", info.Kind)
			}
			if info.ScriptPath != "" {
				fmt.Fprintf(os.Stdout, "  Script: %s\n", info.ScriptPath)
			}
			if info.CreatedAt != "" {
				fmt.Fprintf(os.Stdout, "  Created: %s\n", info.CreatedAt)
			}
			if len(info.Packages) > 0 {
				fmt.Fprintf(os.Stdout, "  Packages: %s\n", strings.Join(info.Packages, ", "))
			}
		}
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <script>",
	Short: "Remove the cached environment(s) for a script",
	Long: `Remove the cached environments associated with a script: the one keyed
to the script itself and any keyed to a manifest next to it. The next
run provisions from scratch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envsDir, err := resolveEnvsDir(cmd)
		if err != nil {
			return err
		}

		removed, err := core.CleanScript(envsDir, args[0])
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			fmt.Fprintln(os.Stdout, "Nothing to remove.")
			return nil
		}
		for _, location := range removed {
			fmt.Fprintf(os.Stdout, "Removed: %s\n", location)
		}
		return nil
	},
}

// resolveEnvsDir applies the --envs-dir flag over the configured base.
func resolveEnvsDir(cmd *cobra.Command) (string, error) {
	cm, err := core.NewConfigManager()
	if err != nil {
		return "", err
	}
	cfg, err := cm.Load()
	if err != nil {
		return "", err
	}
	if flagDir, _ := cmd.Flags().GetString("envs-dir"); flagDir != "" {
		return flagDir, nil
	}
	return cfg.EnvsDir, nil
}

func init() {
	envsCmd.Flags().String("envs-dir", "", "Base directory for environments")
	cleanCmd.Flags().String("envs-dir", "", "Base directory for environments")
	rootCmd.AddCommand(envsCmd)
	rootCmd.AddCommand(cleanCmd)
}
