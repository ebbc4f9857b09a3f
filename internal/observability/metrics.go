package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal      = "javafmt.files.total"
	metricFileDuration    = "javafmt.file.duration.seconds"
	metricViolationsTotal = "javafmt.violations.total"
	metricInflightFiles   = "javafmt.inflight.files"

	attrStatus = "status"

	// StatusOK and StatusError are the status attribute values RecordFile
	// expects; exported so callers (internal/pipeline) don't restate the
	// strings.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 60s, from a single small file
// to a large batch run under --fail-fast.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the OTel instruments that the per-file pipeline
// (internal/pipeline.Pipeline.Process) records for every file; the batch
// scheduler records none of them: a files-processed counter, a per-file duration histogram, a cumulative
// violations counter, and an in-flight-files gauge, per SPEC_FULL.md
// "Observability".
type PipelineMetrics struct {
	filesTotal      metric.Int64Counter
	fileDuration    metric.Float64Histogram
	violationsTotal metric.Int64Counter
	inflightFiles   metric.Int64UpDownCounter
}

// NewPipelineMetrics creates the pipeline's OTel instruments from the
// given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		filesTotal:      b.counter(metricFilesTotal, "Total number of files processed", "{file}"),
		fileDuration:    b.histogram(metricFileDuration, "Per-file pipeline duration in seconds", "s", durationBucketBoundaries...),
		violationsTotal: b.counter(metricViolationsTotal, "Total number of violations reported", "{violation}"),
		inflightFiles:   b.upDownCounter(metricInflightFiles, "Number of files currently being processed", "{file}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordFile records one completed file's outcome: status ("ok" or
// "error"), wall-clock duration, and the number of violations the file
// produced (spec.md §6's per-file result, rolled up for export).
func (pm *PipelineMetrics) RecordFile(ctx context.Context, status string, duration time.Duration, violations int) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	pm.filesTotal.Add(ctx, 1, attrs)
	pm.fileDuration.Record(ctx, duration.Seconds(), attrs)

	if violations > 0 {
		pm.violationsTotal.Add(ctx, int64(violations))
	}
}

// TrackInflight increments the in-flight-files gauge and returns a
// function to decrement it once the file's pipeline run completes.
func (pm *PipelineMetrics) TrackInflight(ctx context.Context) func() {
	pm.inflightFiles.Add(ctx, 1)

	return func() {
		pm.inflightFiles.Add(ctx, -1)
	}
}
