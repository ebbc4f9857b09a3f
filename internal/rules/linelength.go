// Package rules holds the concrete rule implementations SPEC_FULL.md 4.3a
// names: line-length, indentation, and brace-style. Each satisfies
// internal/rule.Rule and is registered via RegisterAll.
package rules

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/rule"
)

// LineLengthRuleID is the rule's stable identifier. It is a hyphenated
// name with no dot, like the other built-in rule IDs.
const LineLengthRuleID = "line-length"

const defaultMaxLineLength = 120

// defaultLineLengthPriority runs after the structural rules (indentation,
// brace style) so it measures lines whose indentation and brace placement
// are already final.
const defaultLineLengthPriority = 100

// LineLength flags (and, in format mode, wraps) any physical line longer
// than Max bytes. It operates on the raw source text rather than the
// AST, since line length is a textual rather than syntactic property —
// the rule interface (spec.md 4.3) does not require a rule to touch the
// arena at all.
type LineLength struct {
	priority int
	max      int
}

// NewLineLength constructs the rule with the spec's default priority and
// the given maximum line length. max <= 0 uses the documented default of
// 120 (spec.md 8 scenario 2).
func NewLineLength(max int) *LineLength {
	if max <= 0 {
		max = defaultMaxLineLength
	}

	return &LineLength{priority: defaultLineLengthPriority, max: max}
}

// RuleID implements rule.Rule.
func (r *LineLength) RuleID() string { return LineLengthRuleID }

// Priority implements rule.Rule.
func (r *LineLength) Priority() int { return r.priority }

// MaxExecutionTime implements rule.Rule, selecting the engine's default.
func (r *LineLength) MaxExecutionTime() time.Duration { return 0 }

// MaxMemoryBytes implements rule.Rule, selecting the engine's default.
func (r *LineLength) MaxMemoryBytes() int64 { return 0 }

// Validate opts the rule out of empty files, where no line can exceed any
// positive maximum.
func (r *LineLength) Validate(rctx *rule.Context) rule.ValidationResult {
	if len(rctx.SourceText) == 0 {
		return rule.Invalid("empty source")
	}

	return rule.Valid()
}

// Apply scans physical lines for length, emitting a single-newline-
// insertion auto-fix edit for every line over the limit. It reports no
// violation of its own: the engine's check-mode pass (internal/rule.Engine.Run)
// synthesizes exactly one diagnostic violation per surviving edit, so a
// rule that also emitted its own violation for the same range would
// double-count it (spec.md 8 scenario 2 expects one violation per
// over-long line, not two).
func (r *LineLength) Apply(_ context.Context, rctx *rule.Context) (rule.ApplyResult, error) {
	max := r.configuredMax(rctx)

	var edits []edit.Edit

	text := rctx.SourceText
	lineStart := uint32(0)

	for i := 0; i <= len(text); i++ {
		atEnd := i == len(text)
		if !atEnd && text[i] != '\n' {
			continue
		}

		lineLen := int(uint32(i) - lineStart)
		if lineLen > max {
			wrapAt := lineStart + uint32(max)

			edits = append(edits, edit.Edit{
				Range:       edit.ByteRange{Start: wrapAt, End: wrapAt},
				Replacement: "\n",
				RuleID:      r.RuleID(),
				Priority:    r.priority,
			})
		}

		lineStart = uint32(i) + 1

		if atEnd {
			break
		}
	}

	return rule.ApplyResult{
		Edits: edits,
		Metrics: rule.Metrics{
			EditsProduced: len(edits),
		},
	}, nil
}

// configuredMax reads the "max" param (an int) if present, else falls
// back to the rule's constructed default.
func (r *LineLength) configuredMax(rctx *rule.Context) int {
	max := r.max

	if v, ok := rctx.RuleParams(r.RuleID())["max"]; ok {
		switch n := v.(type) {
		case int:
			if n > 0 {
				max = n
			}
		case float64: // config loaders (viper/yaml) commonly decode numbers as float64
			if n > 0 {
				max = int(n)
			}
		}
	}

	return max
}
