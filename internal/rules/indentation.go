package rules

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/rule"
)

// IndentationRuleID is the stable identifier spec.md 4.3 requires of every
// rule.
const IndentationRuleID = "indentation"

const (
	defaultIndentWidth    = 4
	defaultIndentPriority = 50
)

// Indentation aligns each non-blank physical line's leading whitespace to
// its brace-nesting depth: every '{' increases the depth of the lines that
// follow it by one, every '}' decreases it, and a line beginning with '}'
// is itself dedented before the closing brace is counted. It runs early
// (priority 50), ahead of brace-style and line-length, since both of those
// rules read a line's content as already indented correctly.
type Indentation struct {
	priority int
	width    int
	useTabs  bool
}

// NewIndentation constructs the rule with the spec's default priority.
// width <= 0 uses the documented default of 4 spaces.
func NewIndentation(width int, useTabs bool) *Indentation {
	if width <= 0 {
		width = defaultIndentWidth
	}

	return &Indentation{priority: defaultIndentPriority, width: width, useTabs: useTabs}
}

// RuleID implements rule.Rule.
func (r *Indentation) RuleID() string { return IndentationRuleID }

// Priority implements rule.Rule.
func (r *Indentation) Priority() int { return r.priority }

// MaxExecutionTime implements rule.Rule, selecting the engine's default.
func (r *Indentation) MaxExecutionTime() time.Duration { return 0 }

// MaxMemoryBytes implements rule.Rule, selecting the engine's default.
func (r *Indentation) MaxMemoryBytes() int64 { return 0 }

// Validate opts the rule out of empty files, where there is no line to
// indent.
func (r *Indentation) Validate(rctx *rule.Context) rule.ValidationResult {
	if len(rctx.SourceText) == 0 {
		return rule.Invalid("empty source")
	}

	return rule.Valid()
}

// Apply scans physical lines, tracking brace depth as it goes, and emits a
// Warning violation plus a re-indent auto-fix for every non-blank line
// whose leading whitespace does not match its depth.
func (r *Indentation) Apply(_ context.Context, rctx *rule.Context) (rule.ApplyResult, error) {
	width, useTabs := r.configured(rctx)

	text := rctx.SourceText
	mask := maskLiteralsAndComments(text)

	var (
		violations []edit.Violation
		edits      []edit.Edit
	)

	depth := 0
	lineStart := uint32(0)
	lineNo := 1

	for i := 0; i <= len(text); i++ {
		atEnd := i == len(text)
		if !atEnd && text[i] != '\n' {
			continue
		}

		line := text[lineStart:uint32(i)]
		trimmed := bytes.TrimLeft(line, " \t\r")
		leadingLen := len(line) - len(trimmed)

		if len(trimmed) > 0 {
			lineDepth := depth
			if trimmed[0] == '}' {
				lineDepth--

				if lineDepth < 0 {
					lineDepth = 0
				}
			}

			want := indentString(lineDepth, width, useTabs)
			got := string(line[:leadingLen])

			if got != want {
				start := lineStart
				end := lineStart + uint32(leadingLen)
				rng := rctx.Range(start, end)

				violations = append(violations, edit.Violation{
					RuleID:      r.RuleID(),
					Range:       rng,
					StartOffset: start,
					EndOffset:   end,
					Severity:    edit.SeverityWarning,
					Message: fmt.Sprintf("line %d is indented with %d leading whitespace byte(s), expected %d at depth %d",
						lineNo, leadingLen, len(want), lineDepth),
					SuggestedFix: &edit.Fix{
						Description: "re-indent line to match brace depth",
						AutoFixable: true,
					},
				})

				edits = append(edits, edit.Edit{
					Range:       edit.ByteRange{Start: start, End: end},
					Replacement: want,
					RuleID:      r.RuleID(),
					Priority:    r.priority,
				})
			}

			depth += netBraceDelta(line, int(lineStart), mask)
			if depth < 0 {
				depth = 0
			}
		}

		lineStart = uint32(i) + 1
		lineNo++

		if atEnd {
			break
		}
	}

	return rule.ApplyResult{
		Edits:      edits,
		Violations: violations,
		Metrics: rule.Metrics{
			EditsProduced:      len(edits),
			ViolationsProduced: len(violations),
		},
	}, nil
}

// configured reads the "width"/"use_tabs" params if present, else falls
// back to the rule's constructed defaults.
func (r *Indentation) configured(rctx *rule.Context) (width int, useTabs bool) {
	width, useTabs = r.width, r.useTabs

	params := rctx.RuleParams(r.RuleID())

	if v, ok := params["width"]; ok {
		switch n := v.(type) {
		case int:
			if n > 0 {
				width = n
			}
		case float64:
			if n > 0 {
				width = int(n)
			}
		}
	}

	if v, ok := params["use_tabs"]; ok {
		if b, ok := v.(bool); ok {
			useTabs = b
		}
	}

	return width, useTabs
}

// indentString renders the leading whitespace for a line at the given
// brace depth.
func indentString(depth, width int, useTabs bool) string {
	if useTabs {
		return strings.Repeat("\t", depth)
	}

	return strings.Repeat(" ", depth*width)
}

// netBraceDelta counts the code '{' and '}' bytes within line (whose first
// byte sits at absolute offset lineStart in the original text), ignoring
// any that mask marks as falling inside a literal or comment.
func netBraceDelta(line []byte, lineStart int, mask []bool) int {
	delta := 0

	for j, c := range line {
		if !mask[lineStart+j] {
			continue
		}

		switch c {
		case '{':
			delta++
		case '}':
			delta--
		}
	}

	return delta
}
