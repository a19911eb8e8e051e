package augment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecheckhq/storecheck/internal/llm"
	"github.com/storecheckhq/storecheck/internal/types"
)

func TestValidateFileContent_Valid(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			assert.Equal(t, llm.TierLite, tier)
			assert.Contains(t, prompt, "PRIVACY.md")
			return `{"is_valid": true, "issues": [], "suggestions": []}`, nil
		},
	}

	result, err := ValidateFileContent(context.Background(), mockClient, "PRIVACY.md", "We collect no data.", FileTypePrivacyPolicy, types.PlatformAppleAppStore)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidateFileContent_ParseErrorSentinel(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "The document looks fine to me overall.", nil
		},
	}

	result, err := ValidateFileContent(context.Background(), mockClient, "README.md", "# App", FileTypeReadme, types.PlatformGooglePlay)

	require.NoError(t, err, "undecodable output is a verdict, not a failure")
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"parse error"}, result.Issues)
}

func TestValidateFileContent_CallErrorPropagates(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("model is overloaded")
		},
	}

	_, err := ValidateFileContent(context.Background(), mockClient, "README.md", "# App", FileTypeReadme, types.PlatformGooglePlay)
	assert.Error(t, err)
}

func TestValidateFileContent_StripsHTML(t *testing.T) {
	var seenPrompt string
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			seenPrompt = prompt
			return `{"is_valid": true}`, nil
		},
	}
	html := `<html><head><script>alert(1)</script><style>p{}</style></head><body><h1>Privacy Policy</h1><p>We collect nothing.</p></body></html>`

	_, err := ValidateFileContent(context.Background(), mockClient, "privacy.html", html, FileTypePrivacyPolicy, types.PlatformAppleAppStore)

	require.NoError(t, err)
	assert.Contains(t, seenPrompt, "We collect nothing.")
	assert.NotContains(t, seenPrompt, "<script>")
	assert.NotContains(t, seenPrompt, "alert(1)")
}

func TestValidateFileContent_TruncatesLongContent(t *testing.T) {
	var seenPrompt string
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			seenPrompt = prompt
			return `{"is_valid": true}`, nil
		},
	}
	content := strings.Repeat("a", maxValidateChars+500)

	_, err := ValidateFileContent(context.Background(), mockClient, "README.md", content, FileTypeReadme, types.PlatformGooglePlay)

	require.NoError(t, err)
	assert.NotContains(t, seenPrompt, strings.Repeat("a", maxValidateChars+1))
}

func TestValidateKeyFiles_EmitsSyntheticIssues(t *testing.T) {
	readme := "# App\nA real description of the application.\n"
	policy := "Lorem ipsum dolor sit amet."
	files := types.FileSnapshot{
		"README.md":  &readme,
		"PRIVACY.md": &policy,
	}

	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "Lorem ipsum") {
				return `{"is_valid": false, "issues": ["placeholder text"], "suggestions": ["write a real policy"]}`, nil
			}
			return `{"is_valid": true}`, nil
		},
	}

	issues := ValidateKeyFiles(context.Background(), mockClient, files, types.PlatformAppleAppStore)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, "CONTENT-PRIVACY-MD", issue.RuleID)
	assert.Equal(t, types.SeverityMedium, issue.Severity)
	assert.Equal(t, "content", issue.Category)
	assert.Equal(t, "PRIVACY.md", issue.File)
	assert.Contains(t, issue.Description, "placeholder text")
	assert.Equal(t, "write a real policy", issue.Solution)
	require.NotNil(t, issue.AIContentValidation)
	assert.False(t, issue.AIContentValidation.IsLegitimate)
}

func TestValidateKeyFiles_AbsorbsCallFailures(t *testing.T) {
	readme := "# App"
	files := types.FileSnapshot{"README.md": &readme}
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("model is overloaded")
		},
	}

	issues := ValidateKeyFiles(context.Background(), mockClient, files, types.PlatformGooglePlay)
	assert.Empty(t, issues, "a failed validation call produces no issue")
}

func TestValidateKeyFiles_SkipsAbsentFiles(t *testing.T) {
	calls := 0
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls++
			return `{"is_valid": true}`, nil
		},
	}

	issues := ValidateKeyFiles(context.Background(), mockClient, types.FileSnapshot{}, types.PlatformAppleAppStore)

	assert.Empty(t, issues)
	assert.Equal(t, 0, calls)
}

func TestContentRuleID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"README.md", "CONTENT-README-MD"},
		{"PRIVACY.md", "CONTENT-PRIVACY-MD"},
		{"docs/privacy-policy.md", "CONTENT-PRIVACY-POLICY-MD"},
		{"ios/Info.plist", "CONTENT-INFO-PLIST"},
		{"package.json", "CONTENT-PACKAGE-JSON"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentRuleID(tt.path))
	}
}
