package augment

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/storecheckhq/storecheck/internal/llm"
	"github.com/storecheckhq/storecheck/internal/prompts"
	"github.com/storecheckhq/storecheck/internal/rules"
	"github.com/storecheckhq/storecheck/internal/types"
)

// FileType selects the validation prompt for a key file.
type FileType string

const (
	FileTypePrivacyPolicy FileType = "privacy-policy"
	FileTypeManifest      FileType = "manifest"
	FileTypeReadme        FileType = "readme"
	FileTypeConfig        FileType = "config"
)

// ValidationResult is the decoded verdict of one content validation call.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// ValidateFileContent runs one LLM legitimacy check over a key file. The
// call error (transport/provider) is returned to the caller; a response
// that cannot be decoded yields the parse-error sentinel instead of an
// error, so a rambling model never fails the run.
func ValidateFileContent(ctx context.Context, client llm.Client, path, content string, expectedType FileType, platform types.Platform) (ValidationResult, error) {
	if looksLikeHTML(path, content) {
		if text, err := htmlToText(content); err == nil {
			content = text
		}
	}
	if len(content) > maxValidateChars {
		content = content[:maxValidateChars]
	}

	template := prompts.MustGet("validate.json", "validate-"+string(expectedType))
	prompt := prompts.Format(template, map[string]string{
		"Platform": string(platform),
		"Path":     path,
		"Content":  content,
	})

	text, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("content validation call failed: %w", err)
	}

	var result ValidationResult
	if err := llm.DecodeObject(text, &result); err != nil {
		return ValidationResult{IsValid: false, Issues: []string{"parse error"}, Suggestions: []string{}}, nil
	}
	return result, nil
}

// keyFile pairs candidate paths with the validation type applied to the
// first present one.
type keyFile struct {
	paths    []string
	fileType FileType
}

// keyFiles returns the fixed high-value file list for a platform.
func keyFiles(platform types.Platform) []keyFile {
	files := []keyFile{
		{paths: []string{"README.md"}, fileType: FileTypeReadme},
		{paths: rules.PrivacyPolicyPaths, fileType: FileTypePrivacyPolicy},
		{paths: []string{"package.json", "app.json"}, fileType: FileTypeConfig},
	}
	switch platform {
	case types.PlatformAppleAppStore:
		files = append(files, keyFile{paths: rules.InfoPlistPaths, fileType: FileTypeManifest})
	case types.PlatformGooglePlay:
		files = append(files, keyFile{paths: rules.ManifestPaths, fileType: FileTypeManifest})
	}
	return files
}

// ValidateKeyFiles sweeps the high-value files and emits one synthetic
// issue per file that fails validation. A failed validation call is
// absorbed with a warning; it produces no issue.
func ValidateKeyFiles(ctx context.Context, client llm.Client, files types.FileSnapshot, platform types.Platform) []types.ComplianceIssue {
	var issues []types.ComplianceIssue

	for _, kf := range keyFiles(platform) {
		path, content, ok := firstPresent(files, kf.paths)
		if !ok {
			continue
		}

		result, err := ValidateFileContent(ctx, client, path, content, kf.fileType, platform)
		if err != nil {
			fmt.Printf("Warning: skipping content validation of %s: %v\n", path, err)
			continue
		}
		if result.IsValid {
			continue
		}

		issues = append(issues, contentIssue(path, kf.fileType, result))
	}
	return issues
}

// contentIssue builds the synthetic issue for a failed validation, with a
// rule id derived from the filename (README.md -> CONTENT-README-MD).
func contentIssue(path string, fileType FileType, result ValidationResult) types.ComplianceIssue {
	description := fmt.Sprintf("Content validation failed for %s.", path)
	if len(result.Issues) > 0 {
		description = fmt.Sprintf("Content validation failed for %s: %s", path, strings.Join(result.Issues, "; "))
	}
	solution := fmt.Sprintf("Review and rewrite %s so it is substantive and accurate.", path)
	if len(result.Suggestions) > 0 {
		solution = strings.Join(result.Suggestions, "; ")
	}

	return types.ComplianceIssue{
		RuleID:      ContentRuleID(path),
		Severity:    types.SeverityMedium,
		Category:    "content",
		Description: description,
		Solution:    solution,
		File:        path,
		AIContentValidation: &types.ContentValidation{
			IsLegitimate: false,
			Issues:       result.Issues,
			Suggestions:  result.Suggestions,
		},
	}
}

// ContentRuleID derives the synthetic rule id for a validated file.
func ContentRuleID(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.ToUpper(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)
	return "CONTENT-" + base
}

// firstPresent finds the first present path from candidates.
func firstPresent(files types.FileSnapshot, candidates []string) (string, string, bool) {
	for _, p := range candidates {
		if content, ok := files.Content(p); ok {
			return p, content, true
		}
	}
	return "", "", false
}

// looksLikeHTML detects HTML key files (hosted policy pages checked into
// the repo) that need markup stripped before validation.
func looksLikeHTML(path, content string) bool {
	if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
		return true
	}
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}

// htmlToText reduces an HTML document to its visible text.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer, header").Remove()

	text := doc.Find("body").Text()
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}
