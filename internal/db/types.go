package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/storecheckhq/storecheck/internal/faults"
	"github.com/storecheckhq/storecheck/internal/types"
)

// Check run status values. A run is created in_progress and receives
// exactly one terminal transition, to completed or failed.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// CheckRun is a compliance check run record
type CheckRun struct {
	ID          uuid.UUID               `json:"id"`
	Owner       string                  `json:"owner"`
	Repo        string                  `json:"repo"`
	Ref         string                  `json:"ref,omitempty"`
	CheckType   string                  `json:"check_type"`
	Platform    types.Platform          `json:"platform"`
	Status      string                  `json:"status"`
	Summary     *types.Summary          `json:"summary,omitempty"`
	Issues      []types.ComplianceIssue `json:"issues,omitempty"`
	Error       *faults.ComplianceError `json:"error,omitempty"`
	Retryable   *bool                   `json:"retryable,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// CheckRunInput carries the fields needed to open a run
type CheckRunInput struct {
	Owner     string
	Repo      string
	Ref       string
	CheckType string
	Platform  types.Platform
}

// Terminal reports whether the run has reached a terminal status.
func (r *CheckRun) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Result projects a run into the caller-facing shape.
func (r *CheckRun) Result() types.Result {
	summary := types.Summary{}
	if r.Summary != nil {
		summary = *r.Summary
	}
	return types.Result{
		Status:     r.Status,
		Repository: r.Owner + "/" + r.Repo,
		CheckType:  r.CheckType,
		CheckRunID: r.ID.String(),
		Summary:    summary,
		Issues:     r.Issues,
	}
}
