package changelog

import (
	"context"
	"fmt"

	"github.com/LilydevMC/mrpack-distributor/internal/github"
)

// DefaultText is the fallback changelog used when release history cannot
// be read. Publishing proceeds with it rather than blocking the release.
const DefaultText = "_No changelog available._"

// ReleaseSource supplies the release history queries the generator needs.
// Interface for testing.
type ReleaseSource interface {
	LatestRelease(ctx context.Context) (*github.Release, error)
	FirstCommitSHA(ctx context.Context) (string, error)
}

// Generator produces release notes for the repository being published.
type Generator struct {
	source ReleaseSource
	owner  string
	repo   string
}

func NewGenerator(source ReleaseSource, owner, repo string) *Generator {
	return &Generator{source: source, owner: owner, repo: repo}
}

// Generate returns markdown linking the change set since the previous
// release, using the repository's first commit as the base when no release
// exists yet. The text result is always non-empty: when history lookup
// fails, DefaultText is returned together with the lookup error so the
// caller can report the degradation.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	rel, err := g.source.LatestRelease(ctx)
	if err != nil {
		return DefaultText, fmt.Errorf("look up latest release: %w", err)
	}

	var base string
	if rel != nil {
		base = rel.TagName
	} else {
		base, err = g.source.FirstCommitSHA(ctx)
		if err != nil {
			return DefaultText, fmt.Errorf("look up first commit: %w", err)
		}
	}

	return fmt.Sprintf("**Full Changelog**: https://github.com/%s/%s/compare/%s...HEAD", g.owner, g.repo, base), nil
}
