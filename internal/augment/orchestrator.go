package augment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storecheckhq/storecheck/internal/faults"
	"github.com/storecheckhq/storecheck/internal/llm"
	"github.com/storecheckhq/storecheck/internal/types"
)

const (
	// defaultBatchSize is how many issues share one consolidated call.
	defaultBatchSize = 5
	// defaultBatchDelay is the pause between consecutive batches. This is a
	// rate-limit compliance mechanism, not a performance knob.
	defaultBatchDelay = time.Second
	// defaultMaxAttempts bounds each LLM call including retries.
	defaultMaxAttempts = 3
	// defaultInitialDelay seeds the exponential retry schedule.
	defaultInitialDelay = time.Second
)

// Config tunes the orchestrator. Zero values take the defaults above.
type Config struct {
	BatchSize    int
	BatchDelay   time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	Sleep        SleepFunc
}

// Orchestrator drives batched LLM augmentation with retry and
// batch-to-individual graceful degradation.
type Orchestrator struct {
	client       llm.Client
	sleep        SleepFunc
	batchSize    int
	batchDelay   time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

// NewOrchestrator builds an orchestrator around an injected LLM client.
func NewOrchestrator(client llm.Client, cfg *Config) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		sleep:        WaitSleep,
		batchSize:    defaultBatchSize,
		batchDelay:   defaultBatchDelay,
		maxAttempts:  defaultMaxAttempts,
		initialDelay: defaultInitialDelay,
	}
	if cfg == nil {
		return o
	}
	if cfg.BatchSize > 0 {
		o.batchSize = cfg.BatchSize
	}
	if cfg.BatchDelay > 0 {
		o.batchDelay = cfg.BatchDelay
	}
	if cfg.MaxAttempts > 0 {
		o.maxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		o.initialDelay = cfg.InitialDelay
	}
	if cfg.Sleep != nil {
		o.sleep = cfg.Sleep
	}
	return o
}

// batchResult is the explicit outcome of one consolidated batch call:
// either a payload per issue (ok) or a degradation with its reason, which
// routes the batch to per-issue fallback.
type batchResult struct {
	payloads []*augmentPayload // len == len(batch) when ok
	degraded bool
	reason   string
}

// AugmentIssues enriches issues in fixed-size batches, strictly
// sequentially, with a fixed delay between batches (none after the last).
// The returned slice always has the same length and order as the input;
// entries whose augmentation failed are carried through unchanged.
func (o *Orchestrator) AugmentIssues(ctx context.Context, issues []types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) []types.ComplianceIssue {
	out := make([]types.ComplianceIssue, len(issues))
	copy(out, issues)
	if len(issues) == 0 {
		return out
	}

	for start := 0; start < len(out); start += o.batchSize {
		end := min(start+o.batchSize, len(out))
		batch := out[start:end]

		result := o.processBatch(ctx, batch, files, checkType, platform)
		if result.degraded {
			fmt.Printf("Warning: batch augmentation degraded (%s); falling back to individual calls\n", result.reason)
			o.augmentIndividually(ctx, batch, files, checkType, platform)
		} else {
			for i := range batch {
				applyPayload(&batch[i], result.payloads[i])
			}
		}

		if end < len(out) {
			if err := o.sleep(ctx, o.batchDelay); err != nil {
				// Cancelled: remaining issues stay unaugmented.
				return out
			}
		}
	}
	return out
}

// processBatch issues one consolidated call for the batch and matches the
// response objects back to issues.
func (o *Orchestrator) processBatch(ctx context.Context, batch []types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) batchResult {
	prompt := buildBatchPrompt(batch, files, checkType, platform)

	text, err := retryWithBackoff(ctx, o.maxAttempts, o.initialDelay, o.sleep, faults.RetryableRaw, func() (string, error) {
		return o.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	})
	if err != nil {
		return batchResult{degraded: true, reason: fmt.Sprintf("batch call failed: %v", err)}
	}

	var raws []json.RawMessage
	if err := llm.DecodeArray(text, &raws); err != nil {
		return batchResult{degraded: true, reason: "undecodable batch response"}
	}

	payloads := make([]*augmentPayload, len(raws))
	for i, raw := range raws {
		payloads[i] = parsePayload(raw)
	}

	return batchResult{payloads: matchPayloads(batch, payloads)}
}

// matchPayloads pairs response objects with issues, primarily by rule_id
// and positionally for objects that omit it. A rule_id that matches no
// issue in the batch is dropped rather than guessed.
func matchPayloads(batch []types.ComplianceIssue, payloads []*augmentPayload) []*augmentPayload {
	matched := make([]*augmentPayload, len(batch))
	used := make([]bool, len(payloads))

	for i := range batch {
		for j, p := range payloads {
			if !used[j] && p != nil && p.RuleID == batch[i].RuleID {
				matched[i] = p
				used[j] = true
				break
			}
		}
	}

	// Positional fallback for objects without a rule_id. A reordering model
	// could mis-assign here; accepted as documented behavior.
	for i := range batch {
		if matched[i] != nil {
			continue
		}
		if i < len(payloads) && !used[i] && payloads[i] != nil && payloads[i].RuleID == "" {
			matched[i] = payloads[i]
			used[i] = true
		}
	}
	return matched
}

// augmentIndividually is the degradation path: one call per issue,
// sequentially, same retry policy. A failed issue stays unaugmented.
func (o *Orchestrator) augmentIndividually(ctx context.Context, batch []types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) {
	for i := range batch {
		payload, err := o.augmentSingle(ctx, batch[i], files, checkType, platform)
		if err != nil {
			fmt.Printf("Warning: individual augmentation of %s failed: %v (issue kept unaugmented)\n", batch[i].RuleID, err)
			continue
		}
		applyPayload(&batch[i], payload)
	}
}

// augmentSingle issues one per-issue call and decodes its object.
func (o *Orchestrator) augmentSingle(ctx context.Context, issue types.ComplianceIssue, files types.FileSnapshot, checkType string, platform types.Platform) (*augmentPayload, error) {
	prompt := buildSinglePrompt(issue, files, checkType, platform)

	text, err := retryWithBackoff(ctx, o.maxAttempts, o.initialDelay, o.sleep, faults.RetryableRaw, func() (string, error) {
		return o.client.GenerateJSON(ctx, prompt, llm.TierLite)
	})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := llm.DecodeObject(text, &raw); err != nil {
		return nil, err
	}
	payload := parsePayload(raw)
	if payload == nil {
		return nil, llm.ErrUndecodable
	}
	return payload, nil
}

// applyPayload merges augmentation onto an issue. Augmentation is strictly
// additive: deterministic fields are never touched.
func applyPayload(issue *types.ComplianceIssue, p *augmentPayload) {
	if p == nil || p.empty() {
		return
	}
	if p.PinpointLocation != nil {
		issue.AIPinpointLocation = p.PinpointLocation
	}
	if p.SuggestedFix != nil {
		issue.AISuggestedFix = p.SuggestedFix
	}
}
