package main

import (
	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/internal/config"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
	"github.com/kolkov/enginecore/internal/engine"
	"github.com/kolkov/enginecore/internal/platform/window"
)

func init() {
	rootCmd.AddCommand(newTypesCmd())
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the engine type tree",
		Long: `The types command prints every type the engine registers at startup,
indented by depth. With --json it prints the identity manifest instead,
which "manifest check" accepts.

Example:
  enginectl types
  enginectl types --json > engine.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, closeFn, err := engineTypes()
			if err != nil {
				return err
			}
			defer closeFn()

			w := cmd.OutOrStdout()
			if jsonOut {
				data, err := typeinfo.MarshalManifest(reg.Export())
				if err != nil {
					return err
				}
				_, err = w.Write(append(data, '\n'))
				return err
			}
			printVerbose(w, "abi %s, %d types\n", reg.ABI(), reg.Len())
			return engine.DumpTypes(w, reg)
		},
	}
}

// engineTypes starts a headless engine and returns its registry.
func engineTypes() (*typeinfo.Registry, func(), error) {
	e, err := engine.New(config.Default(), window.NewHeadless(), nil, nil)
	if err != nil {
		return nil, nil, err
	}
	return e.Types(), func() { e.Close(nil) }, nil
}
