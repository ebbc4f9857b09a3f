package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
)

// NewFormatCommand builds the `format` subcommand: runs the pipeline with
// writes enabled (spec.md 6), unless --dry-run is given.
func NewFormatCommand() *cobra.Command {
	return newFormatCommandWithDeps(initObservabilityDefault)
}

func newFormatCommandWithDeps(otelInit observabilityInitFunc) *cobra.Command {
	r := newRunner(pipeline.ModeFormat, otelInit)

	cmd := &cobra.Command{
		Use:   "format [path...]",
		Short: "Rewrite Java sources to satisfy the configured rules",
		Args:  cobra.MinimumNArgs(1),
		RunE:  r.run,
	}

	r.registerCommonFlags(cmd)

	cmd.Flags().BoolVar(&r.dryRun, "dry-run", false, "Report what would change without writing files (matches check mode's violation set)")
	cmd.Flags().BoolVar(&r.failOnChanges, "fail-on-changes", false, "Exit non-zero if any file was rewritten")

	return cmd
}
