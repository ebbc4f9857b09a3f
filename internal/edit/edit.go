// Package edit implements spec.md 3/4.3's text-edit model: the Edit and
// Violation data shapes, conflict detection between edits, the
// deterministic merge that resolves conflicts in favor of the
// higher-priority rule, and application of the surviving edits to source
// text.
package edit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
)

// ErrInvalidEditRange is returned by Apply when an edit's range falls
// outside the text it is being applied to.
var ErrInvalidEditRange = errors.New("edit: invalid range for application")

// ByteRange is a half-open [Start, End) span of byte offsets into source
// text. Edits and the rule engine work in byte offsets, since arena cells
// (internal/arena) are themselves byte-offset addressed; arena.Range
// (line/column) is reserved for the user-facing positions carried by
// Violation.
type ByteRange struct {
	Start uint32
	End   uint32
}

// Overlaps reports whether r and other share any byte position strictly
// between the endpoints of both (spec.md 3's edit-conflict rule).
func (r ByteRange) Overlaps(other ByteRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Edit is a (range, replacement) pair produced by a rule (spec.md 3).
type Edit struct {
	Range       ByteRange
	Replacement string
	RuleID      string
	Priority    int
}

// Severity classifies a Violation's importance (spec.md 3).
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String renders the severity the way spec.md 6's JSON report does.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// Fix describes a rule's suggested repair, whether or not it was
// actually applied (spec.md 6's "fixes" array).
type Fix struct {
	Description string
	AutoFixable bool
}

// Synthetic rule-id-like tags the engine itself uses for diagnostics it
// produces (as opposed to diagnostics a concrete rule produced).
const (
	KindEditSuppressed = "core.edit-suppressed"
	KindRuleFailure    = "core.rule-failure"
	KindWouldEdit      = "core.would-edit"
)

// Violation is a diagnostic: a rule_id, range, severity, message, and
// optional suggested fix (spec.md 3). A Violation with no SuggestedFix is
// purely diagnostic.
type Violation struct {
	RuleID       string
	Range        arena.Range
	StartOffset  uint32
	EndOffset    uint32
	Severity     Severity
	Message      string
	SuggestedFix *Fix
}

// Sort orders edits by (range.start, range.end, priority, rule id), the
// deterministic order spec.md 4.3 step 3 mandates before conflict
// detection.
func Sort(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}

		if a.Range.End != b.Range.End {
			return a.Range.End < b.Range.End
		}

		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}

		return a.RuleID < b.RuleID
	})
}

// higherPriority reports whether a wins over b in a conflict: lower
// Priority value runs earlier and wins (spec.md 4.3 step 4); ties break
// on rule id.
func higherPriority(a, b Edit) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}

	return a.RuleID < b.RuleID
}

// Merge sorts edits deterministically, resolves every overlap in favor of
// the higher-priority (lower Priority value, i.e. earlier-running) edit,
// and returns the surviving non-overlapping edits plus one Violation per
// dropped edit (spec.md 4.3 steps 3-4). positions converts a byte span
// into the line/column arena.Range a Violation carries.
func Merge(edits []Edit, positions func(start, end uint32) arena.Range) ([]Edit, []Violation) {
	if len(edits) == 0 {
		return nil, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	Sort(sorted)

	var applied []Edit

	var suppressed []Violation

	for _, candidate := range sorted {
		winner := candidate
		survivors := make([]Edit, 0, len(applied))

		for _, existing := range applied {
			if !existing.Range.Overlaps(winner.Range) {
				survivors = append(survivors, existing)
				continue
			}

			var loser Edit
			if higherPriority(winner, existing) {
				loser = existing
			} else {
				loser = winner
				winner = existing
			}

			suppressed = append(suppressed, Violation{
				RuleID:      loser.RuleID,
				Range:       positions(loser.Range.Start, loser.Range.End),
				StartOffset: loser.Range.Start,
				EndOffset:   loser.Range.End,
				Severity:    SeverityWarning,
				Message: fmt.Sprintf("%s: edit from %s suppressed; conflicts with higher-priority edit from %s",
					KindEditSuppressed, loser.RuleID, winner.RuleID),
			})
		}

		applied = append(survivors, winner)
	}

	Sort(applied)

	return applied, suppressed
}

// Apply applies non-overlapping edits to source, walking them in reverse
// order of range.start so earlier offsets stay valid while later ones are
// rewritten (spec.md 4.3 step 5).
func Apply(source []byte, edits []Edit) (string, error) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Range.Start > ordered[j].Range.Start })

	buf := append([]byte(nil), source...)

	for _, e := range ordered {
		if e.Range.Start > e.Range.End || int(e.Range.End) > len(buf) {
			return "", fmt.Errorf("%w: [%d,%d) over %d-byte text (rule %s)",
				ErrInvalidEditRange, e.Range.Start, e.Range.End, len(buf), e.RuleID)
		}

		next := make([]byte, 0, len(buf)-int(e.Range.End-e.Range.Start)+len(e.Replacement))
		next = append(next, buf[:e.Range.Start]...)
		next = append(next, e.Replacement...)
		next = append(next, buf[e.Range.End:]...)
		buf = next
	}

	return string(buf), nil
}
