// Package types defines the shared data model for compliance analysis:
// platforms, file snapshots, issues, and result projections.
package types

// Platform identifies the app store a rule or check run targets.
type Platform string

const (
	// PlatformAppleAppStore targets Apple App Store review guidelines.
	PlatformAppleAppStore Platform = "apple-app-store"
	// PlatformGooglePlay targets Google Play policy requirements.
	PlatformGooglePlay Platform = "google-play"
	// PlatformAny matches every platform (platform-agnostic rules).
	PlatformAny Platform = "any-platform"
)

// KnownPlatforms lists the platforms a check run may target.
// PlatformAny is a rule-side wildcard, not a valid run target.
var KnownPlatforms = []Platform{PlatformAppleAppStore, PlatformGooglePlay}

// Valid reports whether p is a platform a run can be created for.
func (p Platform) Valid() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Matches reports whether a rule declared for platform p applies to a
// run targeting target. Wildcard rules match every target.
func (p Platform) Matches(target Platform) bool {
	return p == target || p == PlatformAny
}

// Severity grades how serious a compliance issue is.
type Severity string

const (
	// SeverityHigh marks issues likely to cause store rejection.
	SeverityHigh Severity = "high"
	// SeverityMedium marks issues reviewers commonly flag.
	SeverityMedium Severity = "medium"
	// SeverityLow marks best-practice gaps.
	SeverityLow Severity = "low"
)
