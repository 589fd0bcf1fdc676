package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/core"
	"github.com/kolkov/enginecore/internal/modcheck"
)

func init() {
	rootCmd.AddCommand(newModuleCmd())
}

func newModuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "module [dir]",
		Short: "Check that a game module can be loaded by this engine",
		Long: `The module command finds the go.mod of a game module or plugin, starting
at dir (default: the current directory) and walking up, and checks the
engine version it requires against this build.

Example:
  enginectl module ./plugins/weather
  enginectl module --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			path := modcheck.Find(abs)
			if path == "" {
				return fmt.Errorf("no go.mod found at or above %s", abs)
			}
			r, err := modcheck.Inspect(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printVerbose(w, "go.mod: %s\n", r.GoMod)
			if r.Replace != "" {
				printVerbose(w, "replaced by: %s\n", r.Replace)
			}
			if err := r.Compatible(core.Version); err != nil {
				return err
			}
			printInfo(w, "%s requires %s %s: compatible with %s\n", r.Module, modcheck.EnginePath, r.Requires, core.Version)
			return nil
		},
	}
}

