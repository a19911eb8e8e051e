package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecheckhq/storecheck/internal/types"
)

// fakeSource serves a fixed map of path -> content and records fetches.
type fakeSource struct {
	mu      sync.Mutex
	files   map[string]string
	failing map[string]error
	fetched []string
}

func (f *fakeSource) FetchFile(_ context.Context, _, _, path, _ string, _ *Credentials) (*string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, path)
	f.mu.Unlock()

	if err, ok := f.failing[path]; ok {
		return nil, err
	}
	if content, ok := f.files[path]; ok {
		return &content, nil
	}
	return nil, nil
}

func TestCollect_CompleteSnapshot(t *testing.T) {
	source := &fakeSource{files: map[string]string{
		"README.md":  "# MyApp",
		"PRIVACY.md": "We collect nothing.",
	}}

	snap, err := Collect(context.Background(), source, "acme", "app", "main", types.PlatformAppleAppStore, nil)
	require.NoError(t, err)

	// Every candidate path appears in the snapshot, absent ones as nil.
	candidates := CandidatePaths(types.PlatformAppleAppStore)
	assert.Len(t, snap, len(candidates))
	for _, path := range candidates {
		_, exists := snap[path]
		assert.True(t, exists, "candidate path %s missing from snapshot", path)
	}

	content, ok := snap.Content("README.md")
	assert.True(t, ok)
	assert.Equal(t, "# MyApp", content)
	assert.False(t, snap.Has("Info.plist"))
}

func TestCollect_FetchFailureIsolated(t *testing.T) {
	// One failing path must not abort sibling fetches; it resolves absent.
	source := &fakeSource{
		files:   map[string]string{"README.md": "# MyApp"},
		failing: map[string]error{"Info.plist": errors.New("boom")},
	}

	snap, err := Collect(context.Background(), source, "acme", "app", "", types.PlatformAppleAppStore, nil)
	require.NoError(t, err)

	assert.True(t, snap.Has("README.md"))
	assert.False(t, snap.Has("Info.plist"))
	_, exists := snap["Info.plist"]
	assert.True(t, exists)
}

func TestCollect_AllPathsFetched(t *testing.T) {
	source := &fakeSource{}

	_, err := Collect(context.Background(), source, "acme", "app", "", types.PlatformGooglePlay, nil)
	require.NoError(t, err)

	assert.Len(t, source.fetched, len(CandidatePaths(types.PlatformGooglePlay)))
}

func TestCandidatePaths_PerPlatform(t *testing.T) {
	apple := CandidatePaths(types.PlatformAppleAppStore)
	assert.Contains(t, apple, "Info.plist")
	assert.NotContains(t, apple, "AndroidManifest.xml")

	play := CandidatePaths(types.PlatformGooglePlay)
	assert.Contains(t, play, "AndroidManifest.xml")
	assert.NotContains(t, play, "Info.plist")

	for _, paths := range [][]string{apple, play} {
		assert.Contains(t, paths, "README.md")
		assert.Contains(t, paths, "PRIVACY.md")
		assert.Contains(t, paths, ".storecheck.yml")
	}
}

func TestGitHubSource_FetchFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github.raw+json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/repos/acme/app/contents/README.md":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("# MyApp"))
		case "/repos/acme/app/contents/PRIVACY.md":
			w.WriteHeader(http.StatusNotFound)
		case "/repos/acme/app/contents/Info.plist":
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	source := &GitHubSource{BaseURL: server.URL, Client: server.Client()}
	creds := &Credentials{Token: "tok"}
	ctx := context.Background()

	content, err := source.FetchFile(ctx, "acme", "app", "README.md", "", creds)
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, "# MyApp", *content)

	content, err = source.FetchFile(ctx, "acme", "app", "PRIVACY.md", "", creds)
	assert.NoError(t, err)
	assert.Nil(t, content)

	_, err = source.FetchFile(ctx, "acme", "app", "Info.plist", "", creds)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	assert.Equal(t, 120, fetchErr.RetryAfter)

	_, err = source.FetchFile(ctx, "acme", "app", "build.gradle", "", creds)
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestGitHubSource_RefQuery(t *testing.T) {
	var gotRef string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.URL.Query().Get("ref")
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	source := &GitHubSource{BaseURL: server.URL, Client: server.Client()}
	_, err := source.FetchFile(context.Background(), "acme", "app", "README.md", "develop", nil)
	require.NoError(t, err)
	assert.Equal(t, "develop", gotRef)
}
