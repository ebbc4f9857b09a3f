package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/javafmt/internal/arena"
	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/report"
)

func TestBuildFileReport_Empty(t *testing.T) {
	t.Parallel()

	rep := report.BuildFileReport("Main.java", time.Unix(0, 0), nil)
	assert.Equal(t, 0, rep.Summary.TotalViolations)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"violations":[]`)
	assert.Contains(t, string(raw), `"groupedByRule":{}`)
}

func TestBuildFileReport_CountsBySeverity(t *testing.T) {
	t.Parallel()

	violations := []edit.Violation{
		{
			RuleID:   "line-length",
			Range:    arena.Range{Start: arena.Position{Line: 1, Column: 121}, End: arena.Position{Line: 1, Column: 150}},
			Severity: edit.SeverityWarning,
			Message:  "line too long",
			SuggestedFix: &edit.Fix{
				Description: "wrap line",
				AutoFixable: true,
			},
		},
		{
			RuleID:   "line-length",
			Range:    arena.Range{Start: arena.Position{Line: 2, Column: 1}, End: arena.Position{Line: 2, Column: 5}},
			Severity: edit.SeverityError,
			Message:  "unparseable",
		},
	}

	rep := report.BuildFileReport("Main.java", time.Now(), violations)
	assert.Equal(t, 2, rep.Summary.TotalViolations)
	assert.Equal(t, 1, rep.Summary.ErrorCount)
	assert.Equal(t, 1, rep.Summary.WarningCount)
	assert.Equal(t, 2, rep.GroupedByRule["line-length"].Count)
	require.Len(t, rep.Violations[0].Fixes, 1)
	assert.True(t, rep.Violations[0].Fixes[0].AutoFixable)
	assert.Empty(t, rep.Violations[1].Fixes)
}

func TestWriteHuman_NoViolations(t *testing.T) {
	t.Parallel()

	rep := report.BuildFileReport("Main.java", time.Now(), nil)

	var buf bytes.Buffer
	report.WriteHuman(&buf, rep)
	assert.Contains(t, buf.String(), "no violations")
}
