package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// WriteHuman renders rep to w as severity-ordered sections with ANSI
// color, per-rule counts, and an `[auto-fixable]` marker on fixable
// violations — spec.md 6's human report.
func WriteHuman(w io.Writer, rep FileReport) {
	fmt.Fprintf(w, "%s\n", rep.File)

	if rep.Summary.TotalViolations == 0 {
		fmt.Fprintln(w, "  no violations")
		return
	}

	bySeverity := map[string][]ViolationEntry{}
	for _, v := range rep.Violations {
		bySeverity[v.Severity] = append(bySeverity[v.Severity], v)
	}

	for _, sev := range []string{"ERROR", "WARNING", "INFO"} {
		entries := bySeverity[sev]
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintln(w, severityColor(sev).Sprintf("  %s (%d)", sev, len(entries)))

		for _, v := range entries {
			marker := ""
			for _, f := range v.Fixes {
				if f.AutoFixable {
					marker = " [auto-fixable]"
					break
				}
			}

			fmt.Fprintf(w, "    %d:%d  %s  %s%s\n", v.Location.Line, v.Location.Column, v.RuleID, v.Message, marker)
		}
	}

	writeRuleCountTable(w, rep.GroupedByRule)
}

func writeRuleCountTable(w io.Writer, counts map[string]RuleCount) {
	if len(counts) == 0 {
		return
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"rule", "count"})

	for _, id := range ids {
		tbl.AppendRow(table.Row{id, counts[id].Count})
	}

	tbl.Render()
}

func severityColor(sev string) *color.Color {
	switch sev {
	case "ERROR":
		return errorColor
	case "INFO":
		return infoColor
	default:
		return warningColor
	}
}
