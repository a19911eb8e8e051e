package augment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storecheckhq/storecheck/internal/prompts"
	"github.com/storecheckhq/storecheck/internal/types"
)

// maxPromptLines caps how much of a file is embedded per issue.
const maxPromptLines = 50

// maxValidateChars caps content passed to a validation prompt.
const maxValidateChars = 8000

// buildBatchPrompt assembles the consolidated prompt for one batch.
func buildBatchPrompt(batch []types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) string {
	var blocks []string
	for i, issue := range batch {
		blocks = append(blocks, buildIssueBlock(i+1, issue, files))
	}

	template := prompts.MustGet("augment.json", "batch-augment")
	return prompts.Format(template, map[string]string{
		"Platform":    string(platform),
		"CheckType":   checkType,
		"IssueCount":  strconv.Itoa(len(batch)),
		"IssueBlocks": strings.Join(blocks, "\n\n"),
	})
}

// buildSinglePrompt assembles the per-issue fallback prompt.
func buildSinglePrompt(issue types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) string {
	template := prompts.MustGet("augment.json", "single-augment")
	return prompts.Format(template, map[string]string{
		"Platform":   string(platform),
		"CheckType":  checkType,
		"IssueBlock": buildIssueBlock(1, issue, files),
	})
}

// buildIssueBlock renders one issue's rule metadata plus up to the first 50
// numbered lines of its file, or a file-missing framing when absent.
func buildIssueBlock(n int, issue types.ComplianceIssue, files types.FileSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Issue %d:\n", n)
	fmt.Fprintf(&sb, "- rule_id: %s\n", issue.RuleID)
	fmt.Fprintf(&sb, "- severity: %s\n", issue.Severity)
	fmt.Fprintf(&sb, "- category: %s\n", issue.Category)
	fmt.Fprintf(&sb, "- description: %s\n", issue.Description)
	fmt.Fprintf(&sb, "- static solution: %s\n", issue.Solution)

	if issue.File == "" {
		sb.WriteString("- file: none associated\n")
		return sb.String()
	}

	content, ok := files.Content(issue.File)
	if !ok {
		fmt.Fprintf(&sb, "- file: %s is MISSING from the repository; generate starter content for it\n", issue.File)
		return sb.String()
	}

	fmt.Fprintf(&sb, "- file: %s (first %d lines)\n", issue.File, maxPromptLines)
	sb.WriteString(numberedLines(content, maxPromptLines))
	return sb.String()
}

// numberedLines renders up to max lines of content with 1-based numbers.
func numberedLines(content string, max int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > max {
		lines = lines[:max]
	}
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d | %s\n", i+1, line)
	}
	return sb.String()
}
