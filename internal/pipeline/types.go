// Package pipeline implements the per-file Chain-of-Responsibility
// (spec.md 4.2): Parse -> Format -> Write, with strict short-circuiting
// and railway-style stage results.
package pipeline

import (
	"fmt"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// ErrorKind classifies why a file failed somewhere in the pipeline.
type ErrorKind uint8

const (
	ErrorKindParse ErrorKind = iota
	ErrorKindIO
	ErrorKindSecurityViolation
	ErrorKindRuleFailure
	ErrorKindTimeout
	ErrorKindEditConflict
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindParse:
		return "parse_error"
	case ErrorKindIO:
		return "io_error"
	case ErrorKindSecurityViolation:
		return "security_violation"
	case ErrorKindRuleFailure:
		return "rule_failure"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindEditConflict:
		return "edit_conflict"
	default:
		return "unknown"
	}
}

// PipelineError is the structured failure a stage returns. It always
// names the stage and file it originated from, per spec.md 6's
// per-file error reporting.
type PipelineError struct {
	Kind       ErrorKind
	StageName  string
	SourcePath string
	Message    string
	Cause      error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.StageName, e.SourcePath, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s: %s", e.StageName, e.SourcePath, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// StageResult is the railway-oriented sum type every Stage returns:
// exactly one of a value or a *PipelineError (spec.md 4.2).
type StageResult[T any] struct {
	value T
	err   *PipelineError
	ok    bool
}

// Success wraps a value as a successful StageResult.
func Success[T any](v T) StageResult[T] {
	return StageResult[T]{value: v, ok: true}
}

// Failure wraps a *PipelineError as a failed StageResult.
func Failure[T any](err *PipelineError) StageResult[T] {
	return StageResult[T]{err: err}
}

// Ok reports whether the result carries a value rather than an error.
func (r StageResult[T]) Ok() bool { return r.ok }

// Value returns the carried value. Only meaningful when Ok() is true.
func (r StageResult[T]) Value() T { return r.value }

// Err returns the carried error, or nil if Ok() is true.
func (r StageResult[T]) Err() *PipelineError { return r.err }

// FormattedOutput is the terminal value produced by the format stage:
// the (possibly rewritten) source text plus any violations collected
// along the way.
type FormattedOutput struct {
	SourcePath string
	Text       string
	Changed    bool
	Violations []edit.Violation
}

// PerFileResult is what Pipeline.Process returns for a single file: an
// error XOR a formatted output, never both.
type PerFileResult struct {
	SourcePath string
	Output     *FormattedOutput
	Err        *PipelineError
}

// Success reports whether the file was processed without error.
func (r PerFileResult) Success() bool { return r.Err == nil }

// BatchResult aggregates PerFileResult across an entire run (spec.md
// 5's scheduler contract): per-file failures never abort the batch.
type BatchResult struct {
	SuccessCount int
	ErrorCount   int
	SkippedCount int
	Errors       []*PipelineError
}
