// Package faults maps raw failures onto the compliance error taxonomy and
// decides retryability. Classification is used both by the LLM retry policy
// and for the single error summary persisted on a failed run.
package faults

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/storecheckhq/storecheck/internal/llm"
)

// Type is the error taxonomy.
type Type string

const (
	TypeMissingFile    Type = "MISSING_FILE"
	TypeGitHubAPIError Type = "GITHUB_API_ERROR"
	TypeRateLimit      Type = "RATE_LIMIT"
	TypeInvalidContent Type = "INVALID_CONTENT"
	TypeAIServiceError Type = "AI_SERVICE_ERROR"
	TypeUnknown        Type = "UNKNOWN"
)

// ComplianceError is a classified failure. Ephemeral during processing; at
// most one summarized instance is persisted onto a failed run.
type ComplianceError struct {
	Type       Type   `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	File       string `json:"file,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"` // seconds
}

func (e *ComplianceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// statusCoder is implemented by errors carrying an HTTP status
// (collector fetch errors, test doubles).
type statusCoder interface {
	HTTPStatus() int
}

// retryAfterer is implemented by errors carrying a Retry-After hint.
type retryAfterer interface {
	RetryAfterSeconds() int
}

// aiServiceMarkers are message fragments that identify LLM-provider
// failures when no structured status is available.
var aiServiceMarkers = []string{
	"googleapi",
	"gemini",
	"generativelanguage",
	"genai",
	"generate content",
	"model is overloaded",
	"resource has been exhausted",
	"quota",
}

// Categorize inspects a raw error and maps it onto the taxonomy. It never
// returns nil for a non-nil input.
func Categorize(err error, file string) *ComplianceError {
	if err == nil {
		return nil
	}

	var classified *ComplianceError
	if errors.As(err, &classified) {
		if classified.File == "" && file != "" {
			copied := *classified
			copied.File = file
			return &copied
		}
		return classified
	}

	msg := err.Error()
	out := &ComplianceError{Message: msg, File: file}

	if status, retryAfter, ok := httpStatus(err); ok {
		switch {
		case status == 403:
			out.Type = TypeGitHubAPIError
			out.Details = "permission denied (403)"
			return out
		case status == 404:
			out.Type = TypeMissingFile
			out.Details = "not found (404)"
			return out
		case status == 429:
			out.Type = TypeRateLimit
			out.RetryAfter = retryAfter
			out.Details = "rate limited (429)"
			return out
		case status >= 500:
			if isAIService(msg) {
				out.Type = TypeAIServiceError
				out.Details = fmt.Sprintf("service error (%d)", status)
				return out
			}
			out.Type = TypeGitHubAPIError
			out.Details = fmt.Sprintf("server error (%d)", status)
			return out
		}
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) || isNetworkMessage(msg) {
		out.Type = TypeGitHubAPIError
		out.Details = "network failure"
		return out
	}

	if isAIService(msg) {
		out.Type = TypeAIServiceError
		return out
	}

	var syntaxErr *json.SyntaxError
	if errors.Is(err, llm.ErrUndecodable) || errors.As(err, &syntaxErr) ||
		strings.Contains(msg, "parse") || strings.Contains(msg, "unmarshal") {
		out.Type = TypeInvalidContent
		return out
	}

	out.Type = TypeUnknown
	return out
}

// IsRetryable reports whether an already-classified error is transient.
// Rate limits and AI service errors always are; GitHub API errors only when
// the detail indicates a 5xx.
func IsRetryable(err *ComplianceError) bool {
	if err == nil {
		return false
	}
	switch err.Type {
	case TypeRateLimit, TypeAIServiceError:
		return true
	case TypeGitHubAPIError:
		return strings.Contains(err.Details, "server error")
	default:
		return false
	}
}

// RetryableRaw classifies and checks a raw error in one step; this is the
// predicate the LLM retry loop uses.
func RetryableRaw(err error) bool {
	return IsRetryable(Categorize(err, ""))
}

// typePriority orders types by actionability for Primary.
var typePriority = []Type{
	TypeRateLimit,
	TypeGitHubAPIError,
	TypeAIServiceError,
	TypeInvalidContent,
	TypeMissingFile,
	TypeUnknown,
}

// Primary picks the single most actionable error from a set.
func Primary(errs []*ComplianceError) *ComplianceError {
	if len(errs) == 0 {
		return nil
	}
	for _, wanted := range typePriority {
		for _, e := range errs {
			if e != nil && e.Type == wanted {
				return e
			}
		}
	}
	return errs[0]
}

// httpStatus extracts an HTTP status (and Retry-After hint) from typed
// errors: collector fetch errors and googleapi errors from the Gemini SDK.
func httpStatus(err error) (status, retryAfter int, ok bool) {
	var coder statusCoder
	if errors.As(err, &coder) {
		status = coder.HTTPStatus()
		var after retryAfterer
		if errors.As(err, &after) {
			retryAfter = after.RetryAfterSeconds()
		}
		return status, retryAfter, status != 0
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, 0, apiErr.Code != 0
	}

	return 0, 0, false
}

func isAIService(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range aiServiceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isNetworkMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"connection refused", "connection reset", "no such host", "i/o timeout", "econnrefused", "etimedout"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
