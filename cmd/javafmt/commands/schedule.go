package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/robfig/cron/v3"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// runScheduled runs the batch once immediately, then again on every firing
// of cronExpr, until ctx is cancelled — check.go's unattended mode
// (SPEC_FULL.md 6), grounded on the teacher pack's robfig/cron scheduler.
// Unlike that scheduler, each run here is still check-only: a schedule
// entry that would write files is out of scope for an unattended job.
func (r *runner) runScheduled(
	ctx context.Context, b *batch, roots []string, out, progressWriter io.Writer, threshold edit.Severity,
) error {
	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid --schedule %q: %w", r.schedule, err)
	}

	c := cron.New()

	runErrCh := make(chan error, 1)

	entryID, err := c.AddFunc(r.schedule, func() {
		if _, runErr := r.runOnce(ctx, b, roots, out, threshold); runErr != nil {
			select {
			case runErrCh <- runErr:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", r.schedule, err)
	}

	if _, runErr := r.runOnce(ctx, b, roots, out, threshold); runErr != nil {
		return runErr
	}

	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	r.progressf(progressWriter, "scheduled %q, entry %d, next run %s", r.schedule, entryID, c.Entry(entryID).Next)

	select {
	case <-ctx.Done():
		return nil
	case err := <-runErrCh:
		return err
	}
}
