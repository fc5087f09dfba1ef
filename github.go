package crom

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v33/github"
	"golang.org/x/oauth2"
)

// GitHubClient creates releases and uploads release assets for one
// repository. Owner and Repo represent '{owner}/{repo}' notation.
type GitHubClient struct {
	Owner        string
	Repo         string
	githubClient *github.Client
}

// NewGitHubClient constructs a client with the given transport. httpClient
// should carry the credentials, see TokenHTTPClient.
func NewGitHubClient(httpClient *http.Client, owner, repo string) *GitHubClient {
	return &GitHubClient{
		Owner:        owner,
		Repo:         repo,
		githubClient: github.NewClient(httpClient),
	}
}

// NewEnterpriseGitHubClient is NewGitHubClient against a GitHub Enterprise
// API server.
func NewEnterpriseGitHubClient(httpClient *http.Client, apiURL, owner, repo string) (*GitHubClient, error) {
	uploadURL := strings.TrimSuffix(apiURL, "/") + "/"
	client, err := github.NewEnterpriseClient(apiURL, uploadURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("configuring github api %s: %w", apiURL, err)
	}
	return &GitHubClient{Owner: owner, Repo: repo, githubClient: client}, nil
}

// TokenHTTPClient returns an http.Client authenticating with token.
func TokenHTTPClient(ctx context.Context, token string) (*http.Client, error) {
	if token == "" {
		return nil, ErrGitHubTokenMissing
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, source), nil
}

// CreateRelease publishes a release named after version, tagging commitish.
func (c *GitHubClient) CreateRelease(ctx context.Context, version Version, commitish, message string) (*github.RepositoryRelease, error) {
	name := version.String()
	release := &github.RepositoryRelease{
		TagName:         github.String(name),
		TargetCommitish: github.String(commitish),
		Name:            github.String(name),
		Body:            github.String(message),
		Draft:           github.Bool(false),
		Prerelease:      github.Bool(false),
	}

	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, c.Owner, c.Repo, release)
	if err != nil {
		return nil, fmt.Errorf("creating github release %s: %w", name, err)
	}
	return created, nil
}

// ReleaseID returns the id of the release tagged with tag.
func (c *GitHubClient) ReleaseID(ctx context.Context, tag string) (int64, error) {
	release, resp, err := c.githubClient.Repositories.GetReleaseByTag(ctx, c.Owner, c.Repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("%w for tag %s", ErrReleaseNotFound, tag)
		}
		return 0, fmt.Errorf("looking up github release %s: %w", tag, err)
	}
	return release.GetID(), nil
}

// UploadAsset attaches file to the release as name.
func (c *GitHubClient) UploadAsset(ctx context.Context, releaseID int64, name, mediaType string, file *os.File) error {
	opts := &github.UploadOptions{Name: name, MediaType: mediaType}
	if _, _, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, c.Owner, c.Repo, releaseID, opts, file); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}
