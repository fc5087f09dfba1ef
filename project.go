package crom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
)

// Project ties a config to the repository it lives in.
type Project struct {
	// Root is the directory holding the config file.
	Root string

	Config     *Config
	Matcher    *Matcher
	Repository *git.Repository

	// FS is rooted at Root and used by the version writers.
	FS billy.Filesystem
}

// OpenProject finds the config for dir, validates it and opens the
// repository containing it.
func OpenProject(dir string) (*Project, error) {
	root, path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("found config file", "path", path)

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	repo, err := OpenRepository(root)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", root, err)
	}

	return NewProject(root, cfg, repo, osfs.New(root))
}

// NewProject builds a project from already loaded parts. The pattern is
// parsed here, so an invalid one fails before any tag is read.
func NewProject(root string, cfg *Config, repo *git.Repository, fs billy.Filesystem) (*Project, error) {
	pattern, err := ParsePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if pattern.StaticOnly() {
		slog.Warn("version pattern has no wildcard, versions can't be bumped", "pattern", pattern.String())
	}

	return &Project{
		Root:       root,
		Config:     cfg,
		Matcher:    NewMatcher(pattern),
		Repository: repo,
		FS:         fs,
	}, nil
}

// Versions returns the tags matching the pattern, sorted ascending.
func (p *Project) Versions() ([]Version, error) {
	names, err := TagNames(p.Repository)
	if err != nil {
		return nil, err
	}
	return p.Matcher.MatchAll(names), nil
}

// FindVersion computes the version req asks for.
func (p *Project) FindVersion(req Request) (Version, error) {
	if req.Custom != "" {
		return CustomVersion(req.Custom), nil
	}

	versions, err := p.Versions()
	if err != nil {
		return Version{}, err
	}
	latest := Latest(p.Matcher, versions)

	if req.PreRelease {
		head, err := ShortHead(p.Repository)
		if err != nil {
			return Version{}, err
		}
		return latest.NextPreRelease(head), nil
	}

	var state RepoState
	if req.Policy != AlwaysBumpOnce {
		state = ReadRepoState(p.Repository, latest)
	}

	version := Resolve(p.Matcher, versions, state, req.Policy)
	slog.Debug("resolved version",
		"latest", latest.String(), "policy", req.Policy.String(),
		"at_head", state.HeadMatchesLatestTag, "version", version.String())
	return version, nil
}

// WriteVersion updates every file the config lists.
func (p *Project) WriteVersion(version Version) error {
	return WriteAll(p.FS, p.Config.Writers(), version)
}

// GitHubClient returns a client for the repository's origin remote. An
// empty apiURL means github.com.
func (p *Project) GitHubClient(ctx context.Context, token, apiURL string) (*GitHubClient, error) {
	owner, name, err := GitHubRemote(p.Repository)
	if err != nil {
		return nil, err
	}

	httpClient, err := TokenHTTPClient(ctx, token)
	if err != nil {
		return nil, err
	}

	if apiURL == "" {
		return NewGitHubClient(httpClient, owner, name), nil
	}
	return NewEnterpriseGitHubClient(httpClient, apiURL, owner, name)
}

// Tag records version as a release on every target. A dirty workspace is
// refused unless allowDirty is set. gh is only needed for the github target.
func (p *Project) Tag(ctx context.Context, version Version, targets []TagTarget, allowDirty bool, gh *GitHubClient) error {
	clean, err := IsWorkspaceClean(p.Repository)
	if err != nil {
		return err
	}
	if !clean {
		if !allowDirty {
			return ErrRepoNotClean
		}
		slog.Warn("skipping check for workspace changes")
	}

	message := p.Config.Message(version)

	for _, target := range targets {
		switch target {
		case TagTargetGitHub:
			if gh == nil {
				return ErrGitHubTokenMissing
			}
			head, err := HeadCommit(p.Repository)
			if err != nil {
				return err
			}
			if _, err := gh.CreateRelease(ctx, version, head.String(), message); err != nil {
				return err
			}
			slog.Info("created github release", "version", version.String(), "owner", gh.Owner, "repo", gh.Repo)
		case TagTargetLocal:
			if err := CreateTag(p.Repository, version.String(), message); err != nil {
				return err
			}
			slog.Info("created local tag", "version", version.String())
		default:
			return fmt.Errorf("unknown tag target %q", target)
		}
	}
	return nil
}

// Publish uploads the named artifacts to the GitHub release for version.
// Files are read relative to artifactRoot, or the project root when empty.
func (p *Project) Publish(ctx context.Context, gh *GitHubClient, version Version, names []string, artifactRoot string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no artifact names given", ErrArtifactNotFound)
	}

	artifacts := make([]ArtifactConfig, 0, len(names))
	for _, name := range names {
		artifact, ok := p.Config.Artifacts[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		artifacts = append(artifacts, artifact)
	}

	if artifactRoot == "" {
		artifactRoot = p.Root
	}

	releaseID, err := gh.ReleaseID(ctx, version.String())
	if err != nil {
		return err
	}

	for _, artifact := range artifacts {
		if err := uploadArtifact(ctx, gh, releaseID, artifact, artifactRoot); err != nil {
			return err
		}
	}
	return nil
}

func uploadArtifact(ctx context.Context, gh *GitHubClient, releaseID int64, artifact ArtifactConfig, root string) error {
	if artifact.Compress == nil {
		names := make([]string, 0, len(artifact.Paths))
		for name := range artifact.Paths {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(root, artifact.Paths[name])
			if err := uploadFile(ctx, gh, releaseID, name, "application/octet-stream", path); err != nil {
				return err
			}
		}
		return nil
	}

	format, err := ParseArchiveFormat(artifact.Compress.Format)
	if err != nil {
		return err
	}

	archive, err := os.CreateTemp("", "crom-artifact-*")
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer os.Remove(archive.Name())
	defer archive.Close()

	if err := Compress(archive, root, artifact.Paths, format); err != nil {
		return err
	}
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding archive: %w", err)
	}

	slog.Info("uploading artifact", "name", artifact.Compress.Name)
	return gh.UploadAsset(ctx, releaseID, artifact.Compress.Name, format.MediaType(), archive)
}

func uploadFile(ctx context.Context, gh *GitHubClient, releaseID int64, name, mediaType, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to find artifact %s: %w", path, err)
	}
	defer f.Close()

	slog.Info("uploading artifact", "name", name, "path", path)
	return gh.UploadAsset(ctx, releaseID, name, mediaType, f)
}
