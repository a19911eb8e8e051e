package rules

import (
	"fmt"

	"github.com/storecheckhq/storecheck/internal/types"
)

// Evaluate runs every registry rule applicable to platform against the
// snapshot and returns the violated rules in registry order. A panicking
// predicate is logged and skipped; it never aborts the scan. Evaluation is
// deterministic: identical (files, platform) inputs yield an identical
// ordered result.
func Evaluate(files types.FileSnapshot, platform types.Platform) []Rule {
	return evaluateSet(Registry(), files, platform)
}

// evaluateSet is Evaluate over an explicit rule set.
func evaluateSet(set []Rule, files types.FileSnapshot, platform types.Platform) []Rule {
	overrides := LoadOverrides(files)

	var violated []Rule
	for _, rule := range set {
		if !rule.Platform.Matches(platform) {
			continue
		}
		if overrides.Disabled(rule.ID) {
			continue
		}
		if safeViolates(rule, files) {
			violated = append(violated, rule)
		}
	}
	return violated
}

// safeViolates evaluates one predicate, absorbing panics.
func safeViolates(rule Rule, files types.FileSnapshot) (violated bool) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Warning: rule %s predicate panicked: %v (rule skipped)\n", rule.ID, r)
			violated = false
		}
	}()
	if rule.Violates == nil {
		return false
	}
	return rule.Violates(files)
}

// Issues converts violated rules to their deterministic issues, preserving
// order.
func Issues(violated []Rule) []types.ComplianceIssue {
	issues := make([]types.ComplianceIssue, 0, len(violated))
	for _, r := range violated {
		issues = append(issues, r.Issue())
	}
	return issues
}
