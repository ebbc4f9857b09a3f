package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
	"github.com/Sumatoshi-tech/javafmt/internal/scheduler"
)

// newTestScheduler builds a real Scheduler with no pipeline behind it —
// fine for these tests since Cancel() is checked before a path is ever
// admitted, so Process is never reached.
func newTestScheduler() *scheduler.Scheduler {
	return scheduler.New(nil, scheduler.Config{MaxConcurrency: 1})
}

func violation(ruleID string, sev edit.Severity) edit.Violation {
	return edit.Violation{
		RuleID:   ruleID,
		Severity: sev,
		Message:  "test violation",
		Range:    arena.Range{Start: arena.Position{Line: 1, Column: 1}, End: arena.Position{Line: 1, Column: 2}},
	}
}

func TestReportObserver_TracksChangedAndThreshold(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	obs := newReportObserver(false, &out, true)
	obs.reset(&out, edit.SeverityWarning)

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "A.java",
		Output: &pipeline.FormattedOutput{
			SourcePath: "A.java",
			Changed:    true,
			Violations: []edit.Violation{violation("line-length", edit.SeverityInfo)},
		},
	})

	require.True(t, obs.anyChanged())
	require.False(t, obs.anyAtOrAboveThreshold(), "an info violation must not trip a warning threshold")

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "B.java",
		Output: &pipeline.FormattedOutput{
			SourcePath: "B.java",
			Violations: []edit.Violation{violation("brace-style", edit.SeverityError)},
		},
	})

	require.True(t, obs.anyAtOrAboveThreshold(), "an error violation must trip a warning threshold")
}

func TestReportObserver_FailFastCancelsOnFailure(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	sched := newTestScheduler()
	obs := newReportObserver(false, &out, true)
	obs.reset(&out, edit.SeverityInfo)
	obs.failFast = true
	obs.sched = sched

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "C.java",
		Err: &pipeline.PipelineError{
			Kind:       pipeline.ErrorKindParse,
			StageName:  "parse",
			SourcePath: "C.java",
			Message:    "unexpected token",
		},
	})

	result := sched.Run(context.Background(), []string{"X.java", "Y.java"})
	require.Equal(t, 2, result.SkippedCount, "Cancel() must stop all further admissions")
	require.Contains(t, out.String(), "unexpected token")
}

func TestReportObserver_MaxViolationsCancelsOnceReached(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	sched := newTestScheduler()
	obs := newReportObserver(false, &out, true)
	obs.reset(&out, edit.SeverityInfo)
	obs.maxViolations = 2
	obs.sched = sched

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "D.java",
		Output: &pipeline.FormattedOutput{
			SourcePath: "D.java",
			Violations: []edit.Violation{violation("line-length", edit.SeverityInfo)},
		},
	})
	require.Equal(t, 1, obs.violations)

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "E.java",
		Output: &pipeline.FormattedOutput{
			SourcePath: "E.java",
			Violations: []edit.Violation{violation("line-length", edit.SeverityInfo)},
		},
	})
	require.Equal(t, 2, obs.violations)

	result := sched.Run(context.Background(), []string{"X.java", "Y.java"})
	require.Equal(t, 2, result.SkippedCount, "crossing the max-violations=2 budget must cancel the scheduler")
}

func TestReportObserver_JSONOutputIsOneObjectPerFile(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	obs := newReportObserver(true, &out, true)
	obs.reset(&out, edit.SeverityInfo)

	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "F.java",
		Output: &pipeline.FormattedOutput{
			SourcePath: "F.java",
			Violations: []edit.Violation{violation("line-length", edit.SeverityWarning)},
		},
	})
	obs.FileFinished(pipeline.PerFileResult{
		SourcePath: "G.java",
		Output:     &pipeline.FormattedOutput{SourcePath: "G.java"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "F.java", first["file"])
}
