// Package rule defines the capability contract every style rule
// satisfies (spec.md 4.3): a stable id, a priority, a cheap validation
// precheck, and the Apply method that produces edits and violations over
// a read-only Context. Concrete rules live in internal/rules.
package rule

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// Default execution and memory budgets a rule may exceed to have its run
// treated as a failure (spec.md 4.3).
const (
	DefaultMaxExecutionTime = 5 * time.Second
	DefaultMaxMemoryBytes   = 100 * 1024 * 1024
)

// ValidationResult is the outcome of a rule's cheap precheck: a rule may
// opt out of a file entirely by returning a non-OK result, e.g. because
// the file is empty or the rule's configuration disables it for this
// path.
type ValidationResult struct {
	OK     bool
	Reason string
}

// Valid is the passing ValidationResult.
func Valid() ValidationResult { return ValidationResult{OK: true} }

// Invalid constructs a failing ValidationResult with the given reason.
func Invalid(reason string) ValidationResult { return ValidationResult{Reason: reason} }

// Metrics captures lightweight counters a rule may report from Apply, for
// diagnostics and future rule-performance tuning.
type Metrics struct {
	NodesVisited       int
	EditsProduced      int
	ViolationsProduced int
}

// ApplyResult is one rule's output for one file: the edits and violations
// it produced, plus optional metrics.
type ApplyResult struct {
	Edits      []edit.Edit
	Violations []edit.Violation
	Metrics    Metrics
}

// Rule is the capability set every concrete rule implementation
// satisfies. Apply must be pure with respect to the Context's arena — no
// mutation, no I/O — and should respect MaxExecutionTime/MaxMemoryBytes;
// the Engine enforces the former via a context deadline and treats
// exceeding either as an isolated rule failure, never a pipeline-wide one.
type Rule interface {
	RuleID() string
	Priority() int
	Validate(ctx *Context) ValidationResult
	Apply(ctx context.Context, rctx *Context) (ApplyResult, error)

	// MaxExecutionTime and MaxMemoryBytes return this rule's declared
	// budgets. Returning <= 0 selects DefaultMaxExecutionTime /
	// DefaultMaxMemoryBytes.
	MaxExecutionTime() time.Duration
	MaxMemoryBytes() int64
}
