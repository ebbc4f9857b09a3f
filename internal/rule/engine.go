package rule

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// Mode selects whether the engine applies its merged edits to produce new
// text (Format) or converts the would-be edits into diagnostic
// violations without touching the text (Check) — spec.md 4.3 step 6.
type Mode uint8

const (
	ModeFormat Mode = iota
	ModeCheck
)

// ErrRuleTimeout is wrapped into the failure recorded when a rule exceeds
// its declared MaxExecutionTime.
var ErrRuleTimeout = errors.New("rule: execution deadline exceeded")

// ErrRuleMemoryBudget is wrapped into the failure recorded when a rule's
// sampled heap growth exceeds its declared MaxMemoryBytes.
var ErrRuleMemoryBudget = errors.New("rule: memory budget exceeded")

// Result is the Engine's merged, post-processed output for one file.
type Result struct {
	FinalText    string
	EditsApplied int
	Violations   []edit.Violation
}

// Engine runs a fixed set of rules over a Context and merges their
// output (spec.md 4.3).
type Engine struct {
	rules []Rule
}

// NewEngine constructs an Engine over rules. Rules are (re-)sorted by
// priority inside Run, so callers may pass them in any order.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Run executes every rule in priority order against rctx. Rules never
// observe each other's edits — each receives the same, unmodified
// Context — so edits are composed post-hoc by Merge rather than
// interleaved (spec.md 4.3 step 2). One rule's failure, panic, timeout,
// or memory-budget overrun is isolated: it becomes a RuleFailure
// violation and peer rules continue.
func (e *Engine) Run(ctx context.Context, rctx *Context, mode Mode) (Result, error) {
	ordered := make([]Rule, len(e.rules))
	copy(ordered, e.rules)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority() != ordered[j].Priority() {
			return ordered[i].Priority() < ordered[j].Priority()
		}

		return ordered[i].RuleID() < ordered[j].RuleID()
	})

	var allEdits []edit.Edit

	var allViolations []edit.Violation

	for _, ru := range ordered {
		if vr := ru.Validate(rctx); !vr.OK {
			continue
		}

		res, err := e.runOne(ctx, ru, rctx)
		if err != nil {
			allViolations = append(allViolations, ruleFailureViolation(ru, err))
			continue
		}

		allEdits = append(allEdits, res.Edits...)
		allViolations = append(allViolations, res.Violations...)
	}

	applied, suppressed := edit.Merge(allEdits, rctx.Range)
	allViolations = append(allViolations, suppressed...)

	if mode == ModeCheck {
		for _, e2 := range applied {
			allViolations = append(allViolations, wouldEditViolation(e2, rctx))
		}

		return Result{FinalText: string(rctx.SourceText), Violations: allViolations}, nil
	}

	finalText, err := edit.Apply(rctx.SourceText, applied)
	if err != nil {
		return Result{}, fmt.Errorf("merge produced unapplicable edits: %w", err)
	}

	return Result{FinalText: finalText, EditsApplied: len(applied), Violations: allViolations}, nil
}

type ruleOutcome struct {
	res ApplyResult
	err error
}

// runOne executes one rule on its own goroutine so a hung or panicking
// rule cannot take down the engine: Run enforces the rule's declared
// timeout via context, and recovers a panic into an error. A rule that
// ignores its context and never returns still leaks a goroutine — rules
// are a trust boundary the spec places on rule authors, not something
// the engine can preempt (Go has no safe way to kill a running goroutine).
func (e *Engine) runOne(ctx context.Context, ru Rule, rctx *Context) (ApplyResult, error) {
	timeout := ru.MaxExecutionTime()
	if timeout <= 0 {
		timeout = DefaultMaxExecutionTime
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var before runtime.MemStats

	runtime.ReadMemStats(&before)

	done := make(chan ruleOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- ruleOutcome{err: fmt.Errorf("rule %s panicked: %v", ru.RuleID(), r)}
			}
		}()

		res, err := ru.Apply(runCtx, rctx)
		done <- ruleOutcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return ApplyResult{}, o.err
		}

		budget := ru.MaxMemoryBytes()
		if budget <= 0 {
			budget = DefaultMaxMemoryBytes
		}

		var after runtime.MemStats

		runtime.ReadMemStats(&after)

		if delta := int64(after.HeapAlloc) - int64(before.HeapAlloc); delta > budget {
			return ApplyResult{}, fmt.Errorf("%w: %s grew heap by %d bytes (budget %d)",
				ErrRuleMemoryBudget, ru.RuleID(), delta, budget)
		}

		return o.res, nil
	case <-runCtx.Done():
		return ApplyResult{}, fmt.Errorf("%w: rule %s exceeded %s", ErrRuleTimeout, ru.RuleID(), timeout)
	}
}

func ruleFailureViolation(ru Rule, err error) edit.Violation {
	return edit.Violation{
		RuleID:   ru.RuleID(),
		Severity: edit.SeverityWarning,
		Message:  fmt.Sprintf("%s: %v", edit.KindRuleFailure, err),
	}
}

func wouldEditViolation(e edit.Edit, rctx *Context) edit.Violation {
	return edit.Violation{
		RuleID:      e.RuleID,
		Range:       rctx.Range(e.Range.Start, e.Range.End),
		StartOffset: e.Range.Start,
		EndOffset:   e.Range.End,
		Severity:    edit.SeverityWarning,
		Message:     fmt.Sprintf("%s: would apply a fix here (run in format mode to apply)", edit.KindWouldEdit),
		SuggestedFix: &edit.Fix{
			Description: "apply with format mode",
			AutoFixable: true,
		},
	}
}
