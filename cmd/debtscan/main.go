package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/debtscan/debtscan/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "debtscan",
	Short: "A multi-language technical debt analyzer",
	Long: `debtscan parses Rust and Python sources into ASTs, derives per-function
complexity and role metrics, builds a cross-file call graph, optionally
ingests LCOV coverage, and produces a ranked list of technical-debt items
with scoring, refactoring hints, and structural findings such as god
objects, dead code, duplication, and error-handling gaps.`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
