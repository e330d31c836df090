// Package activity scores files by how often version control history
// touches them. Every failure degrades to an activity of zero.
package activity

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panbanda/complore/internal/vcs"
)

// Backend names accepted by New.
const (
	BackendGit  = "git"
	BackendExec = "exec"
	BackendOff  = "off"
)

// Provider returns the activity score for a path relative to the scan root.
// Implementations must be safe for concurrent use.
type Provider interface {
	Activity(ctx context.Context, path string) int
}

// Option is a functional option for configuring providers.
type Option func(*options)

type options struct {
	opener vcs.Opener
	logger *slog.Logger
	gitBin string
}

// WithOpener sets the VCS opener (useful for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithLogger sets the logger used to report degraded lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGitBinary overrides the git executable used by the exec backend.
func WithGitBinary(bin string) Option {
	return func(o *options) {
		if bin != "" {
			o.gitBin = bin
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		opener: vcs.DefaultOpener(),
		logger: slog.Default(),
		gitBin: "git",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New returns the provider for backend, rooted at root. Unknown backends
// fall back to the go-git provider.
func New(backend, root string, opts ...Option) Provider {
	switch strings.ToLower(backend) {
	case BackendOff, "none", "disabled":
		return Disabled{}
	case BackendExec:
		return NewCommandProvider(root, opts...)
	default:
		return NewGitProvider(root, opts...)
	}
}

// Disabled reports zero activity for every path.
type Disabled struct{}

// Activity always returns 0.
func (Disabled) Activity(context.Context, string) int { return 0 }

// GitProvider answers lookups from a commit-count index built in a single
// pass over the history reachable from HEAD. A path counts one commit for
// every non-merge commit whose diff against its parent names it, and the
// root commit counts for every file in its tree.
type GitProvider struct {
	root   string
	opts   *options
	once   sync.Once
	index  map[string]int
	prefix string
}

// NewGitProvider creates a provider for the repository containing root.
func NewGitProvider(root string, opts ...Option) *GitProvider {
	return &GitProvider{root: root, opts: newOptions(opts)}
}

// Activity returns the number of commits touching path.
func (p *GitProvider) Activity(ctx context.Context, path string) int {
	p.once.Do(func() { p.build(ctx) })
	if p.index == nil {
		return 0
	}
	key := filepath.ToSlash(filepath.Join(p.prefix, filepath.FromSlash(path)))
	return p.index[key]
}

func (p *GitProvider) build(ctx context.Context) {
	log := p.opts.logger
	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		log.Debug("activity disabled", "root", p.root, "error", err)
		return
	}
	repo, err := p.opts.opener.PlainOpenWithDetect(absRoot)
	if err != nil {
		log.Debug("activity disabled: not a git repository", "root", absRoot, "error", err)
		return
	}

	prefix, err := repoRelative(repo.RepoPath(), absRoot)
	if err != nil {
		log.Debug("activity disabled", "root", absRoot, "error", err)
		return
	}

	if _, err := repo.Head(); err != nil {
		log.Debug("activity disabled: no commits", "root", absRoot, "error", err)
		return
	}

	index, err := buildIndex(ctx, repo)
	if err != nil {
		log.Debug("activity disabled: history unavailable", "root", absRoot, "error", err)
		return
	}
	p.prefix = prefix
	p.index = index
}

// repoRelative returns root relative to the repository worktree, resolving
// symlinks on both sides so temp dirs and mounted paths agree.
func repoRelative(repoPath, root string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(repoPath); err == nil {
		repoPath = resolved
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(repoPath, root)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

func buildIndex(ctx context.Context, repo vcs.Repository) (map[string]int, error) {
	iter, err := repo.Log()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	index := make(map[string]int)
	err = iter.ForEach(func(commit vcs.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if commit.NumParents() == 0 {
			tree, err := commit.Tree()
			if err != nil {
				return nil
			}
			entries, err := tree.Entries()
			if err != nil {
				return nil
			}
			for _, e := range entries {
				index[e.Path]++
			}
			return nil
		}

		touched, err := mergeTouched(commit)
		if err != nil {
			return nil
		}
		for path := range touched {
			index[path]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// mergeTouched returns the paths a commit changes relative to every one of
// its parents. For a single parent that is the plain diff. A merge counts
// only for paths that differ from all parents, which is when a
// path-limited git log lists it.
func mergeTouched(commit vcs.Commit) (map[string]struct{}, error) {
	touched, err := changedPaths(commit, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < commit.NumParents() && len(touched) > 0; i++ {
		other, err := changedPaths(commit, i)
		if err != nil {
			return nil, err
		}
		for path := range touched {
			if _, ok := other[path]; !ok {
				delete(touched, path)
			}
		}
	}
	return touched, nil
}

func changedPaths(commit vcs.Commit, n int) (map[string]struct{}, error) {
	parent, err := commit.Parent(n)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		if name := c.FromName(); name != "" {
			touched[name] = struct{}{}
		}
		if name := c.ToName(); name != "" {
			touched[name] = struct{}{}
		}
	}
	return touched, nil
}

// CommandProvider shells out to `git log --pretty=oneline -- <path>` for
// every lookup and counts the non-empty lines of output.
type CommandProvider struct {
	root string
	opts *options
}

// NewCommandProvider creates a provider running git inside root.
func NewCommandProvider(root string, opts ...Option) *CommandProvider {
	return &CommandProvider{root: root, opts: newOptions(opts)}
}

// Activity returns the number of log entries for path, or 0 on any failure.
func (p *CommandProvider) Activity(ctx context.Context, path string) int {
	cmd := exec.CommandContext(ctx, p.opts.gitBin, "log", "--pretty=oneline", "--", filepath.FromSlash(path))
	cmd.Dir = p.root
	out, err := cmd.Output()
	if err != nil {
		p.opts.logger.Debug("git log failed", "path", path, "error", err)
		return 0
	}
	return countLines(out)
}

func countLines(out []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}
