// Package observability provides formatted output utilities for CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/storecheckhq/storecheck/internal/db"
	"github.com/storecheckhq/storecheck/internal/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	highStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	aiStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// Printer handles formatted output for check results
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// severityStyle maps a severity to its display style.
func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SeverityHigh:
		return highStyle
	case types.SeverityMedium:
		return mediumStyle
	default:
		return lowStyle
	}
}

// PrintResult renders a finished check run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(result *types.Result) {
	if result == nil {
		return
	}

	fmt.Fprintf(p.out, "\n%s  %s\n", titleStyle.Render(result.Repository),
		dimStyle.Render(fmt.Sprintf("check %s (%s)", result.CheckRunID, result.CheckType)))

	if result.Summary.TotalIssues == 0 {
		fmt.Fprintf(p.out, "%s\n", okStyle.Render("No compliance issues found."))
		return
	}

	fmt.Fprintf(p.out, "%s  %s\n\n",
		failStyle.Render(fmt.Sprintf("%d issues", result.Summary.TotalIssues)),
		dimStyle.Render(fmt.Sprintf("%d high, %d medium, %d low",
			result.Summary.HighSeverity, result.Summary.MediumSeverity, result.Summary.LowSeverity)))

	for _, issue := range result.Issues {
		p.printIssue(issue)
	}
}

// printIssue renders one issue with any AI augmentation indented below it.
func (p *Printer) printIssue(issue types.ComplianceIssue) {
	style := severityStyle(issue.Severity)
	fmt.Fprintf(p.out, "%s %s %s\n",
		style.Render(strings.ToUpper(string(issue.Severity))),
		titleStyle.Render(issue.RuleID),
		issue.Description)
	if issue.File != "" {
		fmt.Fprintf(p.out, "  %s\n", dimStyle.Render("file: "+issue.File))
	}
	fmt.Fprintf(p.out, "  %s\n", issue.Solution)

	if loc := issue.AIPinpointLocation; loc != nil {
		lines := ""
		if len(loc.LineNumbers) > 0 {
			lines = fmt.Sprintf(" lines %s", joinInts(loc.LineNumbers))
		}
		fmt.Fprintf(p.out, "  %s\n", aiStyle.Render(fmt.Sprintf("↳ location: %s%s", loc.FilePath, lines)))
	}
	if fix := issue.AISuggestedFix; fix != nil {
		fmt.Fprintf(p.out, "  %s\n", aiStyle.Render("↳ fix: "+fix.Explanation))
		if fix.CodeSnippet != "" {
			for _, line := range strings.Split(strings.TrimRight(fix.CodeSnippet, "\n"), "\n") {
				fmt.Fprintf(p.out, "      %s\n", dimStyle.Render(line))
			}
		}
	}
	if cv := issue.AIContentValidation; cv != nil && len(cv.Suggestions) > 0 {
		fmt.Fprintf(p.out, "  %s\n", aiStyle.Render("↳ suggestions: "+strings.Join(cv.Suggestions, "; ")))
	}
	fmt.Fprintln(p.out)
}

// PrintRunList renders recent check runs, one per line.
func (p *Printer) PrintRunList(runs []db.CheckRun) {
	if len(runs) == 0 {
		fmt.Fprintf(p.out, "%s\n", dimStyle.Render("No check runs recorded."))
		return
	}
	for _, run := range runs {
		status := okStyle
		if run.Status == db.StatusFailed {
			status = failStyle
		} else if run.Status == db.StatusInProgress {
			status = mediumStyle
		}
		line := fmt.Sprintf("%s  %s/%s  %s  %s",
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Owner, run.Repo, run.Platform,
			status.Render(run.Status))
		if run.Summary != nil {
			line += dimStyle.Render(fmt.Sprintf("  %d issues", run.Summary.TotalIssues))
		}
		if run.Error != nil {
			line += dimStyle.Render("  " + string(run.Error.Type))
		}
		fmt.Fprintf(p.out, "%s  %s\n", dimStyle.Render(run.ID.String()[:8]), line)
	}
}

// PrintFailure renders a failed run's classified error.
func (p *Printer) PrintFailure(run *db.CheckRun) {
	if run == nil || run.Error == nil {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", failStyle.Render("FAILED"), run.Error.Message)
	fmt.Fprintf(p.out, "  %s\n", dimStyle.Render("type: "+string(run.Error.Type)))
	if run.Error.File != "" {
		fmt.Fprintf(p.out, "  %s\n", dimStyle.Render("file: "+run.Error.File))
	}
	if run.Retryable != nil && *run.Retryable {
		fmt.Fprintf(p.out, "  %s\n", dimStyle.Render("this failure is transient; retry the check"))
	}
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
