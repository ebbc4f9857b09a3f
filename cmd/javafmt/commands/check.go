package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
)

// NewCheckCommand builds the `check` subcommand: runs the pipeline in
// validation-only mode (spec.md 6) and never writes a file.
func NewCheckCommand() *cobra.Command {
	return newCheckCommandWithDeps(initObservabilityDefault)
}

func newCheckCommandWithDeps(otelInit observabilityInitFunc) *cobra.Command {
	r := newRunner(pipeline.ModeCheck, otelInit)

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Validate Java sources against the configured rules without modifying them",
		Args:  cobra.MinimumNArgs(1),
		RunE:  r.run,
	}

	r.registerCommonFlags(cmd)

	cmd.Flags().StringVar(&r.schedule, "schedule", "", "Cron expression (robfig/cron syntax) to re-run check unattended, e.g. \"0 3 * * *\"")

	return cmd
}
