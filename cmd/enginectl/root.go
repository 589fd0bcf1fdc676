package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/enginecore/core"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "enginectl",
	Short: "Inspect the engine runtime core",
	Long: `enginectl inspects the engine runtime core: the registered type graph,
type identity manifests exchanged with dynamically loaded modules, and the
behaviour of the tracking allocator under load.`,
	Version:       core.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printInfo prints unless in quiet mode.
func printInfo(w io.Writer, format string, args ...any) {
	if !quiet {
		fmt.Fprintf(w, format, args...)
	}
}

// printVerbose prints only in verbose mode.
func printVerbose(w io.Writer, format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(w, format, args...)
	}
}
