// Package crom computes release versions for a project from a version
// template and the tags already present in its Git repository.
//
// This file contains code adapted from pulumictl (https://github.com/pulumi/pulumictl)
// which is licensed under the Apache License 2.0. See NOTICE file for full attribution.
package crom

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// shortHashLength is the length of commit ids used in pre-release markers.
const shortHashLength = 7

var githubRemote = regexp.MustCompile(`^(https://github\.com/|git@github\.com:)(?P<owner>.+?)/(?P<repo>.+?)(\.git)?$`)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// TagNames returns the short name of every tag in the repository.
func TagNames(repo *git.Repository) ([]string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var names []string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return names, nil
}

// tagCommit returns the commit a tag reference points at, for both
// annotated and lightweight tags.
func tagCommit(repo *git.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	obj, err := repo.TagObject(ref.Hash())
	switch err {
	case nil:
		// Annotated tag
		commit, err := obj.Commit()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("peeling tag %s: %w", ref.Name().Short(), err)
		}
		return commit.Hash, nil
	case plumbing.ErrObjectNotFound:
		// Lightweight tag
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}

// HeadCommit returns the commit HEAD points at.
func HeadCommit(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash(), nil
}

// ShortHead returns the abbreviated HEAD commit id.
func ShortHead(repo *git.Repository) (string, error) {
	head, err := HeadCommit(repo)
	if err != nil {
		return "", err
	}
	return head.String()[:shortHashLength], nil
}

// HeadAtTag reports whether HEAD is the commit tagged with tag. A missing
// tag is not an error.
func HeadAtTag(repo *git.Repository, tag string) (bool, error) {
	ref, err := repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up tag %s: %w", tag, err)
	}

	tagged, err := tagCommit(repo, ref)
	if err != nil {
		return false, err
	}

	head, err := HeadCommit(repo)
	if err != nil {
		return false, err
	}

	slog.Debug("comparing HEAD with tag", "tag", tag, "head", head.String(), "tagged", tagged.String())
	return head == tagged, nil
}

// IsWorkspaceClean reports whether no tracked file has staged or unstaged
// changes. Untracked files are ignored.
func IsWorkspaceClean(repo *git.Repository) (bool, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := workTree.Status()
	if err != nil {
		return false, fmt.Errorf("getting git status: %w", err)
	}

	for path, file := range status {
		if file.Staging == git.Untracked && file.Worktree == git.Untracked {
			continue
		}
		if file.Staging != git.Unmodified || file.Worktree != git.Unmodified {
			slog.Debug("workspace has changes", "path", path)
			return false, nil
		}
	}

	return true, nil
}

// ReadRepoState gathers the facts the resolver needs about latest. When the
// repository can't answer, the workspace is treated as modified.
func ReadRepoState(repo *git.Repository, latest Version) RepoState {
	clean, err := IsWorkspaceClean(repo)
	if err != nil {
		slog.Warn("unable to determine workspace state, treating as modified", "error", err)
		return NewRepoState(false, false)
	}
	if !clean {
		return NewRepoState(false, false)
	}

	atHead, err := HeadAtTag(repo, latest.String())
	if err != nil {
		slog.Warn("unable to compare HEAD with tag, treating as modified", "tag", latest.String(), "error", err)
		return NewRepoState(true, false)
	}

	return NewRepoState(true, atHead)
}

// CreateTag creates an annotated tag named name at HEAD.
func CreateTag(repo *git.Repository, name, message string) error {
	head, err := HeadCommit(repo)
	if err != nil {
		return err
	}

	_, err = repo.CreateTag(name, head, &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  "crom",
			Email: "cli@crom.tech",
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("unable to tag repo with %s: %w", name, err)
	}
	return nil
}

// GitHubRemote returns the owner and name of the repository the origin
// remote points at.
func GitHubRemote(repo *git.Repository) (owner string, name string, err error) {
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", "", fmt.Errorf("finding origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("%w: origin has no url", ErrRemoteUnknown)
	}

	return parseRemote(urls[0])
}

func parseRemote(url string) (string, string, error) {
	matches := githubRemote.FindStringSubmatch(url)
	if matches == nil {
		return "", "", fmt.Errorf("%w: %s", ErrRemoteUnknown, url)
	}
	return matches[githubRemote.SubexpIndex("owner")], matches[githubRemote.SubexpIndex("repo")], nil
}
