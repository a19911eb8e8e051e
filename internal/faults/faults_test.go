package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/storecheckhq/storecheck/internal/collector"
	"github.com/storecheckhq/storecheck/internal/llm"
)

func TestCategorize_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType Type
	}{
		{
			name:     "403 permission",
			err:      &collector.Error{Path: "README.md", StatusCode: 403, Message: "HTTP status 403"},
			wantType: TypeGitHubAPIError,
		},
		{
			name:     "404 missing file",
			err:      &collector.Error{Path: "PRIVACY.md", StatusCode: 404, Message: "HTTP status 404"},
			wantType: TypeMissingFile,
		},
		{
			name:     "500 server error",
			err:      &collector.Error{Path: "README.md", StatusCode: 502, Message: "HTTP status 502"},
			wantType: TypeGitHubAPIError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.err, "")
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestCategorize_RateLimitWithRetryAfter(t *testing.T) {
	// Scenario: a 429 with Retry-After 120 classifies as RATE_LIMIT/120.
	err := &collector.Error{Path: "Info.plist", StatusCode: 429, RetryAfter: 120, Message: "HTTP status 429"}

	got := Categorize(err, "Info.plist")

	require.NotNil(t, got)
	assert.Equal(t, TypeRateLimit, got.Type)
	assert.Equal(t, 120, got.RetryAfter)
	assert.Equal(t, "Info.plist", got.File)
}

func TestCategorize_WrappedStatusError(t *testing.T) {
	err := fmt.Errorf("collecting files: %w", &collector.Error{StatusCode: 403, Message: "HTTP status 403"})
	assert.Equal(t, TypeGitHubAPIError, Categorize(err, "").Type)
}

func TestCategorize_GoogleAPIError(t *testing.T) {
	err := &googleapi.Error{Code: 503, Message: "The model is overloaded"}
	got := Categorize(err, "")
	assert.Equal(t, TypeAIServiceError, got.Type)
	assert.True(t, IsRetryable(got))
}

func TestCategorize_AIMarkers(t *testing.T) {
	got := Categorize(errors.New("gemini: resource has been exhausted"), "")
	assert.Equal(t, TypeAIServiceError, got.Type)
}

func TestCategorize_NetworkError(t *testing.T) {
	got := Categorize(errors.New("dial tcp: connection refused"), "")
	assert.Equal(t, TypeGitHubAPIError, got.Type)
	assert.Equal(t, "network failure", got.Details)
}

func TestCategorize_ParseErrors(t *testing.T) {
	got := Categorize(llm.ErrUndecodable, "")
	assert.Equal(t, TypeInvalidContent, got.Type)

	got = Categorize(errors.New("failed to parse manifest"), "")
	assert.Equal(t, TypeInvalidContent, got.Type)
}

func TestCategorize_Unknown(t *testing.T) {
	got := Categorize(errors.New("something odd happened"), "")
	assert.Equal(t, TypeUnknown, got.Type)
}

func TestCategorize_AlreadyClassified(t *testing.T) {
	original := &ComplianceError{Type: TypeRateLimit, Message: "slow down", RetryAfter: 30}
	got := Categorize(fmt.Errorf("augmentation: %w", original), "README.md")
	assert.Equal(t, TypeRateLimit, got.Type)
	assert.Equal(t, 30, got.RetryAfter)
	assert.Equal(t, "README.md", got.File)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&ComplianceError{Type: TypeRateLimit}))
	assert.True(t, IsRetryable(&ComplianceError{Type: TypeAIServiceError}))
	assert.True(t, IsRetryable(&ComplianceError{Type: TypeGitHubAPIError, Details: "server error (502)"}))
	assert.False(t, IsRetryable(&ComplianceError{Type: TypeGitHubAPIError, Details: "permission denied (403)"}))
	assert.False(t, IsRetryable(&ComplianceError{Type: TypeInvalidContent}))
	assert.False(t, IsRetryable(&ComplianceError{Type: TypeMissingFile}))
	assert.False(t, IsRetryable(&ComplianceError{Type: TypeUnknown}))
	assert.False(t, IsRetryable(nil))
}

func TestPrimary_Priority(t *testing.T) {
	errs := []*ComplianceError{
		{Type: TypeUnknown},
		{Type: TypeMissingFile},
		{Type: TypeAIServiceError},
		{Type: TypeRateLimit, RetryAfter: 60},
		{Type: TypeGitHubAPIError},
	}

	got := Primary(errs)
	require.NotNil(t, got)
	assert.Equal(t, TypeRateLimit, got.Type)

	// Without the rate limit, the GitHub error wins.
	got = Primary(errs[:3])
	assert.Equal(t, TypeAIServiceError, got.Type)

	assert.Nil(t, Primary(nil))
}
