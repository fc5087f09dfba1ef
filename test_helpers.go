package crom

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, billy.Filesystem, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	repo, err := git.Init(storage, fs)
	return repo, fs, err
}

// testRepoCommit writes filename and commits it, returning the commit hash
func testRepoCommit(repo *git.Repository, filename, content string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if err := writeFile(workTree.Filesystem, filename, content); err != nil {
		return plumbing.ZeroHash, err
	}

	if _, err := workTree.Add(filename); err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit("Commit "+filename, &git.CommitOptions{Author: testSignature})
}

// testRepoWithTags commits once per tag and tags each commit, so the last
// tag is at HEAD.
func testRepoWithTags(repo *git.Repository, tags ...string) error {
	for _, tag := range tags {
		hash, err := testRepoCommit(repo, "file_"+tag+".txt", "Content for "+tag)
		if err != nil {
			return err
		}
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			return err
		}
	}
	return nil
}

// testRepoAnnotatedTag creates an annotated tag at hash
func testRepoAnnotatedTag(repo *git.Repository, tag string, hash plumbing.Hash) error {
	_, err := repo.CreateTag(tag, hash, &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: "Release " + tag,
	})
	return err
}

// testRepoSetOrigin points the origin remote at url
func testRepoSetOrigin(repo *git.Repository, url string) error {
	_, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	return err
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
