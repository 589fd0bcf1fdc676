package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := core.GetInfo()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "enginectl %s\n", info.Version)
		fmt.Fprintf(w, "  abi: %s\n", info.ABI)
		fmt.Fprintf(w, "  allocation pool: %d slots\n", info.PoolSize)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
