package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

func init() {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with type identity manifests",
	}
	cmd.AddCommand(newManifestCheckCmd())
	rootCmd.AddCommand(cmd)
}

func newManifestCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check a manifest against this build's types",
		Long: `The check command loads a type identity manifest, written by
"enginectl types --json" or by a module build, and imports it into a fresh
copy of the engine registry. It fails if the manifest's ABI is not
compatible or if any type it names differs from the local definition.

Example:
  enginectl manifest check plugin.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := typeinfo.UnmarshalManifest(data)
			if err != nil {
				return err
			}

			reg, closeFn, err := engineTypes()
			if err != nil {
				return err
			}
			defer closeFn()

			w := cmd.OutOrStdout()
			before := reg.Len()
			rebuilt, err := reg.Import(m)
			if err != nil {
				return fmt.Errorf("manifest %s: %w", args[0], err)
			}
			printInfo(w, "manifest %s OK (abi %s, %d types, %d new)\n", args[0], m.ABI, len(rebuilt), reg.Len()-before)
			for _, t := range rebuilt {
				printVerbose(w, "  %s\n", t)
			}
			return nil
		},
	}
}
