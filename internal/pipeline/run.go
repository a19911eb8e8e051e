// Package pipeline provides the high-level orchestration for a compliance
// check run: collect files, evaluate rules, augment with AI, persist.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storecheckhq/storecheck/internal/augment"
	"github.com/storecheckhq/storecheck/internal/collector"
	"github.com/storecheckhq/storecheck/internal/db"
	"github.com/storecheckhq/storecheck/internal/faults"
	"github.com/storecheckhq/storecheck/internal/llm"
	"github.com/storecheckhq/storecheck/internal/rules"
	"github.com/storecheckhq/storecheck/internal/types"
)

// Check types. Static runs the rule engine only; full adds AI augmentation
// and content validation.
const (
	CheckTypeStatic = "static"
	CheckTypeFull   = "full"
)

// RunStore is the persistence surface the pipeline needs. *db.DB satisfies
// it; tests substitute an in-memory fake.
type RunStore interface {
	CreateCheckRun(ctx context.Context, input *db.CheckRunInput) (uuid.UUID, error)
	GetCheckRun(ctx context.Context, runID uuid.UUID) (*db.CheckRun, error)
	CompleteCheckRun(ctx context.Context, runID uuid.UUID, issues []types.ComplianceIssue) error
	FailCheckRun(ctx context.Context, runID uuid.UUID, cerr *faults.ComplianceError, retryable bool) error
}

// Request identifies the repository and scope of one check run.
type Request struct {
	Owner     string
	Repo      string
	Ref       string
	CheckType string
	Platform  types.Platform
	Creds     *collector.Credentials
}

// Pipeline wires the stages of a check run around injected dependencies.
type Pipeline struct {
	store      RunStore
	source     collector.FileSource
	client     llm.Client
	augmentCfg *augment.Config
	Verbose    bool
}

// New builds a pipeline. client may be nil, which disables AI stages even
// for full runs.
func New(store RunStore, source collector.FileSource, client llm.Client) *Pipeline {
	return &Pipeline{store: store, source: source, client: client}
}

// WithAugmentConfig overrides the augmentation tuning, mainly for tests.
func (p *Pipeline) WithAugmentConfig(cfg *augment.Config) *Pipeline {
	p.augmentCfg = cfg
	return p
}

// Analyze executes one check run end to end. The run record is created
// in_progress before any work starts and receives exactly one terminal
// write: completed with the final issue list, or failed with a classified
// error. The run ID is returned even when the run fails, so callers can
// inspect the record.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (runID uuid.UUID, err error) {
	if !req.Platform.Valid() {
		return uuid.Nil, fmt.Errorf("unknown platform %q", req.Platform)
	}
	if req.CheckType == "" {
		req.CheckType = CheckTypeFull
	}

	runID, err = p.store.CreateCheckRun(ctx, &db.CheckRunInput{
		Owner:     req.Owner,
		Repo:      req.Repo,
		Ref:       req.Ref,
		CheckType: req.CheckType,
		Platform:  req.Platform,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to open check run: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			cerr := &faults.ComplianceError{
				Type:    faults.TypeUnknown,
				Message: fmt.Sprintf("analysis panicked: %v", r),
			}
			p.fail(runID, cerr)
			err = cerr
		}
	}()

	issues, runErr := p.execute(ctx, req)
	if runErr != nil {
		cerr := faults.Categorize(runErr, "")
		p.fail(runID, cerr)
		return runID, cerr
	}

	// The issue list is final here; like fail, the completion write uses a
	// fresh context so a deadline that expired during augmentation cannot
	// strand the run in_progress.
	if err := p.store.CompleteCheckRun(context.Background(), runID, issues); err != nil {
		cerr := faults.Categorize(fmt.Errorf("failed to record completion: %w", err), "")
		p.fail(runID, cerr)
		return runID, cerr
	}
	return runID, nil
}

// execute runs the analysis stages and returns the final issue list.
func (p *Pipeline) execute(ctx context.Context, req Request) ([]types.ComplianceIssue, error) {
	if p.Verbose {
		fmt.Printf("Step 1/4: Collecting files from %s/%s...\n", req.Owner, req.Repo)
	}
	files, err := collector.Collect(ctx, p.source, req.Owner, req.Repo, req.Ref, req.Platform, req.Creds)
	if err != nil {
		return nil, fmt.Errorf("file collection failed: %w", err)
	}

	if p.Verbose {
		fmt.Printf("Step 2/4: Evaluating %s rules over %d files...\n", req.Platform, len(files))
	}
	issues := rules.Issues(rules.Evaluate(files, req.Platform))

	if req.CheckType == CheckTypeStatic || p.client == nil {
		return issues, nil
	}

	if p.Verbose {
		fmt.Printf("Step 3/4: Validating key file content...\n")
	}
	issues = append(issues, augment.ValidateKeyFiles(ctx, p.client, files, req.Platform)...)

	if p.Verbose {
		fmt.Printf("Step 4/4: Augmenting %d issues with AI analysis...\n", len(issues))
	}
	orchestrator := augment.NewOrchestrator(p.client, p.augmentCfg)
	issues = orchestrator.AugmentIssues(ctx, issues, files, req.CheckType, req.Platform)

	return issues, nil
}

// fail records the terminal failure. The write itself can only be logged if
// it fails; the run's classified error must not be masked by it.
func (p *Pipeline) fail(runID uuid.UUID, cerr *faults.ComplianceError) {
	// Terminal writes use a fresh context so a cancelled run still records
	// its failure.
	if err := p.store.FailCheckRun(context.Background(), runID, cerr, faults.IsRetryable(cerr)); err != nil {
		fmt.Printf("Warning: failed to record run failure: %v\n", err)
	}
}

// Result loads a run and projects it into the caller-facing shape.
func (p *Pipeline) Result(ctx context.Context, runID uuid.UUID) (*types.Result, error) {
	run, err := p.store.GetCheckRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("check run %s not found", runID)
	}
	result := run.Result()
	return &result, nil
}
