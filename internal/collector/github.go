package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout is the per-file HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the service to the GitHub API.
const DefaultUserAgent = "storecheck/1.0"

const defaultBaseURL = "https://api.github.com"

// GitHubSource fetches file contents through the GitHub contents API using
// the raw media type.
type GitHubSource struct {
	BaseURL string
	Client  *http.Client
}

// NewGitHubSource creates a source against api.github.com.
func NewGitHubSource() *GitHubSource {
	return &GitHubSource{
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// FetchFile retrieves one file. A 404 resolves to (nil, nil): absence is a
// normal outcome, not an error. Other non-success statuses return a typed
// *Error carrying the status code.
func (s *GitHubSource) FetchFile(ctx context.Context, owner, repo, path, ref string, creds *Credentials) (*string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.BaseURL, url.PathEscape(owner), url.PathEscape(repo), path)
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")
	req.Header.Set("User-Agent", DefaultUserAgent)
	if token, err := bearerToken(creds); err != nil {
		return nil, &Error{Path: path, Message: "failed to build credentials", Cause: err}
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Path: path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &Error{Path: path, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
		}
		content := string(body)
		return &content, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	default:
		fetchErr := &Error{
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				fetchErr.RetryAfter = after
			}
		}
		return nil, fetchErr
	}
}

// bearerToken resolves credentials to an Authorization bearer value.
// Token credentials are used as-is; App credentials are exchanged for a
// short-lived signed app JWT.
func bearerToken(creds *Credentials) (string, error) {
	if creds == nil {
		return "", nil
	}
	if creds.Token != "" {
		return creds.Token, nil
	}
	if creds.AppID != "" && len(creds.AppPrivateKey) > 0 {
		return signAppJWT(creds.AppID, creds.AppPrivateKey, time.Now())
	}
	return "", nil
}
