// Package main provides the entry point for the javafmt CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/javafmt/cmd/javafmt/commands"
	"github.com/Sumatoshi-tech/javafmt/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "javafmt",
		Short: "javafmt - a Java source formatter and style checker",
		Long: `javafmt parses Java source files and applies a configurable set of
style rules (line length, indentation, brace placement, and more).

Commands:
  check   Validate files against the configured rules, writing nothing
  format  Rewrite files to satisfy the configured rules`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewFormatCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		if !commands.IsExitError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(commands.ExitCode(err))
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "javafmt %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
