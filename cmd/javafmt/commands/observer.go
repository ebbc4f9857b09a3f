package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
	"github.com/Sumatoshi-tech/javafmt/internal/report"
	"github.com/Sumatoshi-tech/javafmt/internal/scheduler"
)

// writeJSONReport writes rep as a single NDJSON line — one stable-shape
// report object per file, per spec.md 6, streamed as each file finishes
// rather than buffered into one array.
func writeJSONReport(w io.Writer, rep report.FileReport) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(rep)
}

// reportObserver renders each file's result as it completes and tracks
// the running totals runner.exitCode and the --fail-fast/--max-violations
// early-cancellation flags need. It implements pipeline.ProgressObserver
// and must be safe for concurrent use (spec.md 5: the observer is a
// shared resource across every in-flight file).
type reportObserver struct {
	jsonOutput bool
	silent     bool

	failFast      bool
	maxViolations int

	mu          sync.Mutex
	out         io.Writer
	threshold   edit.Severity
	changed     bool
	aboveThresh bool
	violations  int

	sched *scheduler.Scheduler
}

var _ pipeline.ProgressObserver = (*reportObserver)(nil)

func newReportObserver(jsonOutput bool, out io.Writer, silent bool) *reportObserver {
	return &reportObserver{jsonOutput: jsonOutput, out: out, silent: silent}
}

// reset prepares the observer for a fresh run, redirecting file reports
// to out and re-evaluating violations against threshold. Used by --watch
// to reuse one observer/scheduler pair across repeated runs.
func (o *reportObserver) reset(out io.Writer, threshold edit.Severity) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.out = out
	o.threshold = threshold
	o.changed = false
	o.aboveThresh = false
	o.violations = 0
}

func (o *reportObserver) FileStarted(path string) {
	if !o.silent {
		fmt.Fprintf(o.out, "javafmt: processing %s\n", path)
	}
}

func (o *reportObserver) FileFinished(result pipeline.PerFileResult) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !result.Success() {
		fmt.Fprintf(o.out, "%s: %s: %s\n", result.Err.StageName, result.Err.SourcePath, result.Err.Message)

		if o.failFast && o.sched != nil {
			o.sched.Cancel()
		}

		return
	}

	out := result.Output

	if out.Changed {
		o.changed = true
	}

	for _, v := range out.Violations {
		o.violations++

		if v.Severity >= o.threshold {
			o.aboveThresh = true
		}
	}

	rep := report.BuildFileReport(out.SourcePath, time.Now(), out.Violations)

	if o.jsonOutput {
		writeJSONReport(o.out, rep)
	} else {
		report.WriteHuman(o.out, rep)
	}

	if o.maxViolations > 0 && o.violations >= o.maxViolations && o.sched != nil {
		o.sched.Cancel()
	}
}

func (o *reportObserver) anyChanged() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.changed
}

func (o *reportObserver) anyAtOrAboveThreshold() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.aboveThresh
}
