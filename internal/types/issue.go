package types

// PinpointLocation is an AI-suggested location of a violation in the code.
type PinpointLocation struct {
	FilePath    string `json:"file_path"`
	LineNumbers []int  `json:"line_numbers,omitempty"`
}

// SuggestedFix is an AI-generated remediation for an issue.
type SuggestedFix struct {
	Explanation string `json:"explanation"`
	CodeSnippet string `json:"code_snippet,omitempty"`
}

// ContentValidation is the outcome of an AI legitimacy check on a key file.
type ContentValidation struct {
	IsLegitimate bool     `json:"is_legitimate"`
	Issues       []string `json:"issues,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// ComplianceIssue is one rule violation or content-validation finding.
// The deterministic fields (RuleID through File) are set when the issue is
// created and never change; the AI* fields are additive augmentation that a
// later pipeline stage may attach.
type ComplianceIssue struct {
	RuleID      string   `json:"rule_id"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Solution    string   `json:"solution"`
	File        string   `json:"file,omitempty"`

	AIPinpointLocation  *PinpointLocation  `json:"ai_pinpoint_location,omitempty"`
	AISuggestedFix      *SuggestedFix      `json:"ai_suggested_fix,omitempty"`
	AIContentValidation *ContentValidation `json:"ai_content_validation,omitempty"`
}

// Augmented reports whether any AI augmentation was attached.
func (i *ComplianceIssue) Augmented() bool {
	return i.AIPinpointLocation != nil || i.AISuggestedFix != nil || i.AIContentValidation != nil
}

// Summary counts issues by severity.
type Summary struct {
	TotalIssues    int `json:"total_issues"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}

// Summarize tallies a final issue list.
func Summarize(issues []ComplianceIssue) Summary {
	s := Summary{TotalIssues: len(issues)}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			s.HighSeverity++
		case SeverityMedium:
			s.MediumSeverity++
		case SeverityLow:
			s.LowSeverity++
		}
	}
	return s
}
