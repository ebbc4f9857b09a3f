package pipeline

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/rule"
	"github.com/Sumatoshi-tech/javafmt/internal/security"
)

// ProgressObserver receives callbacks as a file moves through the
// pipeline, for progress reporting (spec.md 6's human-readable output).
type ProgressObserver interface {
	FileStarted(path string)
	FileFinished(result PerFileResult)
}

// NoopObserver implements ProgressObserver with no-ops.
type NoopObserver struct{}

func (NoopObserver) FileStarted(string)            {}
func (NoopObserver) FileFinished(result PerFileResult) {}

// Metrics records per-file outcomes for external observability. The
// production implementation is internal/observability.PipelineMetrics
// (OTel counters/histogram/gauge); a nil Options.Metrics falls back to
// NoopMetrics so instrumentation stays optional.
type Metrics interface {
	// RecordFile reports one completed file: its status ("ok" or
	// "error"), wall-clock duration, and violation count.
	RecordFile(ctx context.Context, status string, duration time.Duration, violations int)

	// TrackInflight marks a file as in-flight and returns a function to
	// call once its pipeline run completes.
	TrackInflight(ctx context.Context) func()
}

// NoopMetrics implements Metrics with no-ops.
type NoopMetrics struct{}

func (NoopMetrics) RecordFile(context.Context, string, time.Duration, int) {}
func (NoopMetrics) TrackInflight(context.Context) func()                   { return func() {} }

// Status values RecordFile is called with, matching
// internal/observability.PipelineMetrics' exported constants without
// requiring this package to import observability.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Options configures a Pipeline.
type Options struct {
	Guards         *security.Guards
	TargetVersion  string
	Engine         *rule.Engine
	Mode           Mode
	EnabledRuleIDs map[string]bool
	RuleParams     map[string]map[string]any
	Observer       ProgressObserver
	Metrics        Metrics
}

// Pipeline chains the three stages for one file at a time. Concurrency
// across files is the scheduler's concern (internal/scheduler), not
// this package's.
type Pipeline struct {
	parse   *ParseStage
	format  *FormatStage
	write   *WriteStage
	obs     ProgressObserver
	metrics Metrics
}

// New constructs a Pipeline from Options.
func New(opts Options) *Pipeline {
	obs := opts.Observer
	if obs == nil {
		obs = NoopObserver{}
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &Pipeline{
		parse: &ParseStage{Guards: opts.Guards, TargetVersion: opts.TargetVersion},
		format: &FormatStage{
			Engine:         opts.Engine,
			Mode:           opts.Mode,
			EnabledRuleIDs: opts.EnabledRuleIDs,
			RuleParams:     opts.RuleParams,
		},
		write:   &WriteStage{DryRun: opts.Mode == ModeCheck},
		obs:     obs,
		metrics: metrics,
	}
}

// Process runs one file through Parse -> Format -> Write, short-
// circuiting at the first stage failure (spec.md 4.2). The file is
// tracked as in-flight and its outcome recorded for the duration of the
// call, regardless of which stage it fails at.
func (p *Pipeline) Process(ctx context.Context, path string) PerFileResult {
	p.obs.FileStarted(path)

	done := p.metrics.TrackInflight(ctx)
	start := time.Now()

	var res PerFileResult

	defer func() {
		status := StatusOK
		violations := 0

		switch {
		case !res.Success():
			status = StatusError
		case res.Output != nil:
			violations = len(res.Output.Violations)
		}

		p.metrics.RecordFile(ctx, status, time.Since(start), violations)
		done()
		p.obs.FileFinished(res)
	}()

	parsed := p.parse.Execute(ctx, path)
	if !parsed.Ok() {
		res = PerFileResult{SourcePath: path, Err: parsed.Err()}
		return res
	}

	formatted := p.format.Execute(ctx, parsed.Value())
	if !formatted.Ok() {
		res = PerFileResult{SourcePath: path, Err: formatted.Err()}
		return res
	}

	written := p.write.Execute(ctx, formatted.Value())
	if !written.Ok() {
		res = PerFileResult{SourcePath: path, Err: written.Err()}
		return res
	}

	res = PerFileResult{SourcePath: path, Output: written.Value()}

	return res
}
