package types

// Result is the caller-facing projection of a finished check run.
type Result struct {
	Status     string            `json:"status"`
	Repository string            `json:"repository"`
	CheckType  string            `json:"check_type"`
	CheckRunID string            `json:"check_run_id"`
	Summary    Summary           `json:"summary"`
	Issues     []ComplianceIssue `json:"issues"`
}
