// Package testutil builds file trees and git histories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a slash-separated path under root, creating
// parent directories.
func WriteFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, root, name, content)
	}
}

// InitRepo initialises an empty git repository at root.
func InitRepo(t *testing.T, root string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("PlainInit(%s) error: %v", root, err)
	}
	return repo
}

// CommitFile writes one file, stages it and commits.
func CommitFile(t *testing.T, repo *git.Repository, root, name, content, message string) {
	t.Helper()
	WriteFile(t, root, name, content)
	w := worktree(t, repo)
	if _, err := w.Add(name); err != nil {
		t.Fatalf("Add(%s) error: %v", name, err)
	}
	Commit(t, w, message)
}

// Commit records the staged changes of w. Without parents the commit
// follows HEAD; two or more parents make a merge commit.
func Commit(t *testing.T, w *git.Worktree, message string, parents ...plumbing.Hash) {
	t.Helper()
	_, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
		Parents: parents,
	})
	if err != nil {
		t.Fatalf("Commit(%q) error: %v", message, err)
	}
}

// Checkout switches the worktree to branch, creating it at HEAD when
// create is set.
func Checkout(t *testing.T, repo *git.Repository, branch plumbing.ReferenceName, create bool) {
	t.Helper()
	w := worktree(t, repo)
	if err := w.Checkout(&git.CheckoutOptions{Branch: branch, Create: create}); err != nil {
		t.Fatalf("Checkout(%s) error: %v", branch, err)
	}
}

// Head returns the reference HEAD points at.
func Head(t *testing.T, repo *git.Repository) *plumbing.Reference {
	t.Helper()
	ref, err := repo.Head()
	if err != nil {
		t.Fatalf("Head error: %v", err)
	}
	return ref
}

func worktree(t *testing.T, repo *git.Repository) *git.Worktree {
	t.Helper()
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree error: %v", err)
	}
	return w
}
