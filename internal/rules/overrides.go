package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/storecheckhq/storecheck/internal/types"
)

// OverridesPath is the in-repo config file that can suppress rules, the way
// linters honor a repo-local suppression file.
const OverridesPath = ".storecheck.yml"

// Overrides holds repo-local rule suppressions.
type Overrides struct {
	DisabledRules []string `yaml:"disabled_rules"`
}

// Disabled reports whether a rule ID is suppressed.
func (o Overrides) Disabled(ruleID string) bool {
	for _, id := range o.DisabledRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// LoadOverrides parses the snapshot's override file. A missing or broken
// file yields empty overrides; a parse failure is reported but never fails
// the scan.
func LoadOverrides(files types.FileSnapshot) Overrides {
	content, ok := files.Content(OverridesPath)
	if !ok {
		return Overrides{}
	}

	var o Overrides
	if err := yaml.Unmarshal([]byte(content), &o); err != nil {
		fmt.Printf("Warning: ignoring malformed %s: %v\n", OverridesPath, err)
		return Overrides{}
	}
	return o
}
