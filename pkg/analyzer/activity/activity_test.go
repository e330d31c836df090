package activity

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/complore/internal/testutil"
	"github.com/panbanda/complore/internal/vcs"
)

func TestNew(t *testing.T) {
	assert.IsType(t, Disabled{}, New("off", "."))
	assert.IsType(t, Disabled{}, New("None", "."))
	assert.IsType(t, &CommandProvider{}, New("exec", "."))
	assert.IsType(t, &GitProvider{}, New("git", "."))
	assert.IsType(t, &GitProvider{}, New("", "."))
}

func TestDisabled(t *testing.T) {
	assert.Equal(t, 0, Disabled{}.Activity(context.Background(), "a.js"))
}

func TestGitProvider(t *testing.T) {
	root := initHistory(t)
	p := NewGitProvider(root)
	ctx := context.Background()

	assert.Equal(t, 2, p.Activity(ctx, "a.js"))
	assert.Equal(t, 1, p.Activity(ctx, "sub/b.js"))
	assert.Equal(t, 0, p.Activity(ctx, "missing.js"))
}

func TestGitProvider_Subdirectory(t *testing.T) {
	root := initHistory(t)
	p := NewGitProvider(filepath.Join(root, "sub"))

	assert.Equal(t, 1, p.Activity(context.Background(), "b.js"))
	assert.Equal(t, 0, p.Activity(context.Background(), "a.js"))
}

func TestGitProvider_RenameCountsBothNames(t *testing.T) {
	root := t.TempDir()
	repo := testutil.InitRepo(t, root)

	testutil.CommitFile(t, repo, root, "old.js", "x\n", "add")
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.Rename(filepath.Join(root, "old.js"), filepath.Join(root, "new.js")))
	_, err = w.Remove("old.js")
	require.NoError(t, err)
	_, err = w.Add("new.js")
	require.NoError(t, err)
	testutil.Commit(t, w, "rename")

	p := NewGitProvider(root)
	assert.Equal(t, 2, p.Activity(context.Background(), "old.js"))
	assert.Equal(t, 1, p.Activity(context.Background(), "new.js"))
}

func TestGitProvider_NotARepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("x"), 0644))

	p := NewGitProvider(dir)
	assert.Equal(t, 0, p.Activity(context.Background(), "a.js"))
}

type failingOpener struct{}

func (failingOpener) PlainOpenWithDetect(string) (vcs.Repository, error) {
	return nil, errors.New("open failed")
}

func TestGitProvider_OpenerFailure(t *testing.T) {
	root := initHistory(t)
	p := NewGitProvider(root, WithOpener(failingOpener{}))
	assert.Equal(t, 0, p.Activity(context.Background(), "a.js"))
}

func TestGitProvider_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	testutil.InitRepo(t, dir)

	p := NewGitProvider(dir)
	assert.Equal(t, 0, p.Activity(context.Background(), "a.js"))
}

func TestGitProvider_ConflictedMerge(t *testing.T) {
	root := initConflictedMerge(t)
	p := NewGitProvider(root)
	ctx := context.Background()

	assert.Equal(t, 4, p.Activity(ctx, "f.js"), "base, both edits and the resolving merge")
	assert.Equal(t, 2, p.Activity(ctx, "g.js"), "merge takes the side version unchanged")
}

func TestGitProvider_MatchesCommandProvider(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	root := initConflictedMerge(t)
	gitIndex := NewGitProvider(root)
	gitCLI := NewCommandProvider(root)
	ctx := context.Background()

	for _, path := range []string{"f.js", "g.js", "missing.js"} {
		assert.Equal(t, gitCLI.Activity(ctx, path), gitIndex.Activity(ctx, path), path)
	}
}

func TestCommandProvider(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	root := initHistory(t)
	p := NewCommandProvider(root)
	ctx := context.Background()

	assert.Equal(t, 2, p.Activity(ctx, "a.js"))
	assert.Equal(t, 1, p.Activity(ctx, "sub/b.js"))
}

func TestCommandProvider_Failure(t *testing.T) {
	p := NewCommandProvider(t.TempDir(), WithGitBinary("definitely-not-a-git-binary"))
	assert.Equal(t, 0, p.Activity(context.Background(), "a.js"))
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(nil))
	assert.Equal(t, 2, countLines([]byte("abc one\n\n  \ndef two\n")))
	assert.Equal(t, 1, countLines([]byte("abc one")))
}

// initHistory commits a.js, then sub/b.js, then a change to a.js.
func initHistory(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo := testutil.InitRepo(t, root)

	testutil.CommitFile(t, repo, root, "a.js", "function a() {}\n", "add a")
	testutil.CommitFile(t, repo, root, "sub/b.js", "const b = 1;\n", "add b")
	testutil.CommitFile(t, repo, root, "a.js", "function a() {\n  return 1;\n}\n", "grow a")
	return root
}

// initConflictedMerge edits f.js on a side branch and on the main branch,
// then records a merge resolving f.js to content neither parent had. g.js
// changes only on the side branch and the merge keeps that version.
func initConflictedMerge(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repo := testutil.InitRepo(t, root)

	testutil.CommitFile(t, repo, root, "f.js", "let f = 0;\n", "base f")
	testutil.CommitFile(t, repo, root, "g.js", "let g = 0;\n", "base g")
	mainBranch := testutil.Head(t, repo).Name()

	side := plumbing.NewBranchReferenceName("side")
	testutil.Checkout(t, repo, side, true)
	testutil.CommitFile(t, repo, root, "f.js", "let f = 1;\n", "side f")
	testutil.CommitFile(t, repo, root, "g.js", "let g = 1;\n", "side g")
	sideHead := testutil.Head(t, repo).Hash()

	testutil.Checkout(t, repo, mainBranch, false)
	testutil.CommitFile(t, repo, root, "f.js", "let f = 2;\n", "main f")
	mainHead := testutil.Head(t, repo).Hash()

	testutil.WriteFile(t, root, "f.js", "let f = 3;\n")
	testutil.WriteFile(t, root, "g.js", "let g = 1;\n")
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("f.js")
	require.NoError(t, err)
	_, err = w.Add("g.js")
	require.NoError(t, err)
	testutil.Commit(t, w, "merge side", mainHead, sideHead)
	return root
}
