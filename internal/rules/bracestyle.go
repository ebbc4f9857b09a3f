package rules

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/rule"
)

// BraceStyleRuleID is the stable identifier spec.md 4.3 requires of every
// rule.
const BraceStyleRuleID = "brace-style"

// BraceStyle enumerates where an opening brace belongs relative to the
// declaration or statement that introduces it.
type BraceStyle int

const (
	// BraceStyleSameLine keeps the opening brace on the same physical
	// line as the declaration it opens (K&R style): "void f() {".
	BraceStyleSameLine BraceStyle = iota
	// BraceStyleNextLine puts the opening brace alone on its own line
	// (Allman style).
	BraceStyleNextLine
)

const defaultBraceStylePriority = 60

// BraceStyleRule repositions an opening brace that disagrees with the
// configured style. It runs after indentation (priority 60 > 50) so the
// line it moves a brace onto is already correctly indented, and before
// line-length (100) so a brace it joins onto a line is accounted for by
// that rule's scan.
type BraceStyleRule struct {
	priority int
	style    BraceStyle
}

// NewBraceStyle constructs the rule with the spec's default priority.
func NewBraceStyle(style BraceStyle) *BraceStyleRule {
	return &BraceStyleRule{priority: defaultBraceStylePriority, style: style}
}

// RuleID implements rule.Rule.
func (r *BraceStyleRule) RuleID() string { return BraceStyleRuleID }

// Priority implements rule.Rule.
func (r *BraceStyleRule) Priority() int { return r.priority }

// MaxExecutionTime implements rule.Rule, selecting the engine's default.
func (r *BraceStyleRule) MaxExecutionTime() time.Duration { return 0 }

// MaxMemoryBytes implements rule.Rule, selecting the engine's default.
func (r *BraceStyleRule) MaxMemoryBytes() int64 { return 0 }

// Validate opts the rule out of empty files, where there is no brace to
// reposition.
func (r *BraceStyleRule) Validate(rctx *rule.Context) rule.ValidationResult {
	if len(rctx.SourceText) == 0 {
		return rule.Invalid("empty source")
	}

	return rule.Valid()
}

// Apply walks every code '{' (skipping ones inside literals or comments)
// and, when its placement disagrees with the configured style, emits a
// Warning violation plus an auto-fix that moves it into place.
func (r *BraceStyleRule) Apply(_ context.Context, rctx *rule.Context) (rule.ApplyResult, error) {
	style := r.configuredStyle(rctx)

	text := rctx.SourceText
	mask := maskLiteralsAndComments(text)

	var (
		violations []edit.Violation
		edits      []edit.Edit
	)

	for i, c := range text {
		if c != '{' || !mask[i] {
			continue
		}

		lineStart := lineStartOf(text, i)
		before := text[lineStart:i]
		onOwnLine := len(trimHorizontalSpace(before)) == 0

		switch {
		case style == BraceStyleNextLine && !onOwnLine:
			wsStart := i
			for wsStart > lineStart && isHorizontalSpace(text[wsStart-1]) {
				wsStart--
			}

			indent := leadingWhitespace(text, lineStart)
			start, end := uint32(wsStart), uint32(i)

			violations = append(violations, edit.Violation{
				RuleID:      r.RuleID(),
				Range:       rctx.Range(start, end),
				StartOffset: start,
				EndOffset:   end,
				Severity:    edit.SeverityWarning,
				Message:     "opening brace should start its own line",
				SuggestedFix: &edit.Fix{
					Description: "move opening brace onto its own line",
					AutoFixable: true,
				},
			})
			edits = append(edits, edit.Edit{
				Range:       edit.ByteRange{Start: uint32(wsStart), End: uint32(i)},
				Replacement: "\n" + indent,
				RuleID:      r.RuleID(),
				Priority:    r.priority,
			})

		case style == BraceStyleSameLine && onOwnLine:
			contentEnd := lineStart
			for contentEnd > 0 && isNewline(text[contentEnd-1]) {
				contentEnd--
			}

			for contentEnd > 0 && isHorizontalSpace(text[contentEnd-1]) {
				contentEnd--
			}

			if contentEnd == 0 {
				continue
			}

			start, end := uint32(contentEnd), uint32(i)

			violations = append(violations, edit.Violation{
				RuleID:      r.RuleID(),
				Range:       rctx.Range(start, end),
				StartOffset: start,
				EndOffset:   end,
				Severity:    edit.SeverityWarning,
				Message:     "opening brace should join the previous line",
				SuggestedFix: &edit.Fix{
					Description: "join opening brace onto the previous line",
					AutoFixable: true,
				},
			})
			edits = append(edits, edit.Edit{
				Range:       edit.ByteRange{Start: uint32(contentEnd), End: uint32(i)},
				Replacement: " ",
				RuleID:      r.RuleID(),
				Priority:    r.priority,
			})
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

// configuredStyle reads the "style" param ("same-line"/"next-line") if
// present, else falls back to the rule's constructed default.
func (r *BraceStyleRule) configuredStyle(rctx *rule.Context) BraceStyle {
	style := r.style

	if v, ok := rctx.RuleParams(r.RuleID())["style"]; ok {
		if s, ok := v.(string); ok {
			switch s {
			case "same-line":
				style = BraceStyleSameLine
			case "next-line":
				style = BraceStyleNextLine
			}
		}
	}

	return style
}

func trimHorizontalSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isHorizontalSpace(b[start]) {
		start++
	}

	return b[start:]
}

func isNewline(b byte) bool { return b == '\n' || b == '\r' }
