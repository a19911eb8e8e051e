// Package collector fetches the candidate file set for a repository
// snapshot. Every candidate path resolves independently to content or
// absent; a single fetch failure never aborts sibling fetches.
package collector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/storecheckhq/storecheck/internal/rules"
	"github.com/storecheckhq/storecheck/internal/types"
)

// FileSource is the external boundary for fetching a single file.
// A missing file returns (nil, nil); errors are reserved for transport or
// permission failures.
type FileSource interface {
	FetchFile(ctx context.Context, owner, repo, path, ref string, creds *Credentials) (*string, error)
}

// Credentials authenticates against the file source. Either a personal
// access token or a GitHub App id plus PEM-encoded private key.
type Credentials struct {
	Token         string
	AppID         string
	AppPrivateKey []byte
}

// CandidatePaths returns the fixed list of paths collected for a platform.
func CandidatePaths(platform types.Platform) []string {
	paths := []string{
		"README.md",
		"package.json",
		"app.json",
		rules.OverridesPath,
	}
	paths = append(paths, rules.PrivacyPolicyPaths...)
	paths = append(paths, rules.LicensePaths...)

	switch platform {
	case types.PlatformAppleAppStore:
		paths = append(paths, rules.InfoPlistPaths...)
		paths = append(paths, "ios/Podfile", "Podfile")
	case types.PlatformGooglePlay:
		paths = append(paths, rules.ManifestPaths...)
		paths = append(paths, rules.GradlePaths...)
	default:
		paths = append(paths, rules.InfoPlistPaths...)
		paths = append(paths, rules.ManifestPaths...)
		paths = append(paths, rules.GradlePaths...)
	}
	return paths
}

// Collect fetches every candidate path concurrently and returns a complete
// snapshot: absent or failed paths are present with nil content. Fetch
// errors are absorbed here and reported as warnings; only context
// cancellation propagates.
func Collect(ctx context.Context, source FileSource, owner, repo, branch string, platform types.Platform, creds *Credentials) (types.FileSnapshot, error) {
	paths := CandidatePaths(platform)
	contents := make([]*string, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			content, err := source.FetchFile(gCtx, owner, repo, path, branch, creds)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				fmt.Printf("Warning: failed to fetch %s: %v (treated as absent)\n", path, err)
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("file collection cancelled: %w", err)
	}

	snapshot := make(types.FileSnapshot, len(paths))
	for i, path := range paths {
		snapshot[path] = contents[i]
	}
	return snapshot, nil
}
