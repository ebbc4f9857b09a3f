// Package report renders a file's violations into the stable JSON shape
// spec.md 6 defines, or into a colorized human-readable summary.
package report

import (
	"encoding/json"
	"time"

	"github.com/Sumatoshi-tech/javafmt/internal/edit"
)

// Location mirrors spec.md 6's nested location object.
type Location struct {
	Line          int    `json:"line"`
	Column        int    `json:"column"`
	StartPosition uint32 `json:"startPosition"`
	EndPosition   uint32 `json:"endPosition"`
}

// Fix mirrors spec.md 6's per-violation suggested fix.
type Fix struct {
	Description string `json:"description"`
	AutoFixable bool   `json:"autoFixable"`
}

// ViolationEntry is one entry in the JSON report's violations array.
type ViolationEntry struct {
	RuleID   string   `json:"ruleId"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Fixes    []Fix    `json:"fixes"`
}

// Summary mirrors spec.md 6's aggregate counts.
type Summary struct {
	TotalViolations int `json:"totalViolations"`
	ErrorCount      int `json:"errorCount"`
	WarningCount    int `json:"warningCount"`
	InfoCount       int `json:"infoCount"`
}

// RuleCount is one entry in groupedByRule.
type RuleCount struct {
	Count int `json:"count"`
}

// FileReport is the root object of the stable JSON shape.
type FileReport struct {
	Version       string               `json:"version"`
	File          string               `json:"file"`
	Timestamp     string               `json:"timestamp"`
	Summary       Summary              `json:"summary"`
	Violations    []ViolationEntry     `json:"violations"`
	GroupedByRule map[string]RuleCount `json:"groupedByRule"`
}

const reportVersion = "1.0"

// BuildFileReport converts a rule engine's raw violations for one file
// into the stable report shape. timestamp is the moment the report was
// generated; it is converted to UTC and formatted as RFC 3339 here.
func BuildFileReport(sourcePath string, timestamp time.Time, violations []edit.Violation) FileReport {
	rep := FileReport{
		Version:       reportVersion,
		File:          sourcePath,
		Timestamp:     timestamp.UTC().Format(time.RFC3339),
		Violations:    make([]ViolationEntry, 0, len(violations)),
		GroupedByRule: make(map[string]RuleCount),
	}

	for _, v := range violations {
		entry := ViolationEntry{
			RuleID:   v.RuleID,
			Severity: severityLabel(v.Severity),
			Message:  v.Message,
			Location: Location{
				Line:          v.Range.Start.Line,
				Column:        v.Range.Start.Column,
				StartPosition: v.StartOffset,
				EndPosition:   v.EndOffset,
			},
			Fixes: fixesFor(v),
		}

		rep.Violations = append(rep.Violations, entry)

		switch v.Severity {
		case edit.SeverityError:
			rep.Summary.ErrorCount++
		case edit.SeverityWarning:
			rep.Summary.WarningCount++
		case edit.SeverityInfo:
			rep.Summary.InfoCount++
		}

		rc := rep.GroupedByRule[v.RuleID]
		rc.Count++
		rep.GroupedByRule[v.RuleID] = rc
	}

	rep.Summary.TotalViolations = len(rep.Violations)

	return rep
}

func fixesFor(v edit.Violation) []Fix {
	if v.SuggestedFix == nil {
		return []Fix{}
	}

	return []Fix{{Description: v.SuggestedFix.Description, AutoFixable: v.SuggestedFix.AutoFixable}}
}

func severityLabel(s edit.Severity) string {
	switch s {
	case edit.SeverityError:
		return "ERROR"
	case edit.SeverityInfo:
		return "INFO"
	case edit.SeverityWarning:
		return "WARNING"
	default:
		return "WARNING"
	}
}

// MarshalJSON renders rep with empty slices/maps as `[]`/`{}` rather
// than `null`, matching the stable shape regardless of how many
// violations were found.
func (rep FileReport) MarshalJSON() ([]byte, error) {
	type alias FileReport

	a := alias(rep)
	if a.Violations == nil {
		a.Violations = []ViolationEntry{}
	}

	if a.GroupedByRule == nil {
		a.GroupedByRule = map[string]RuleCount{}
	}

	return json.Marshal(a)
}
