package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:     "run-test-orchestrator",
	Short:   "Parallel run-test orchestrator for the managed-runtime integration suite",
	Long:    `Expands numbered test cases across the variant matrix, filters against the known-failure catalogue, and runs the survivors under a bounded worker pool.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "orchestrator config file (default: XDG config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "emit a permanent line per combination instead of overwriting the progress line")

	rootCmd.AddCommand(runCmd)
	registerAxisFlags(runCmd)
}

func main() {
	if err := variant.ValidateUniqueness(); err != nil {
		fmt.Fprintln(os.Stderr, "internal error:", err)
		os.Exit(2)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
