// Package scanner expands input paths and globs into the list of files a
// scan should measure, honouring .gitignore files and caller ignore rules.
package scanner

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// AlwaysExcluded are directory names skipped regardless of ignore rules.
var AlwaysExcluded = []string{".git", "node_modules"}

// Scanner finds files beneath a root directory.
type Scanner struct {
	root        string
	ignore      []string
	gitignore   bool
	excludeDirs map[string]struct{}
	logger      *slog.Logger
	matcher     gitignore.Matcher
}

// Option is a functional option for configuring a Scanner.
type Option func(*Scanner)

// WithIgnorePatterns adds caller-supplied patterns in .gitignore syntax.
// They are applied after every .gitignore file, so they win on conflict.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *Scanner) {
		s.ignore = append(s.ignore, patterns...)
	}
}

// WithGitignore toggles reading .gitignore files beneath the root.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) {
		s.gitignore = enabled
	}
}

// WithExcludeDirs adds directory names that are never descended into.
func WithExcludeDirs(dirs []string) Option {
	return func(s *Scanner) {
		for _, d := range dirs {
			if d = strings.Trim(d, "/"); d != "" {
				s.excludeDirs[d] = struct{}{}
			}
		}
	}
}

// WithLogger sets the logger for skipped inputs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a scanner rooted at root.
func New(root string, opts ...Option) *Scanner {
	if root == "" {
		root = "."
	}
	s := &Scanner{
		root:        root,
		gitignore:   true,
		excludeDirs: make(map[string]struct{}),
		logger:      slog.Default(),
	}
	for _, d := range AlwaysExcluded {
		s.excludeDirs[d] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory paths are resolved against.
func (s *Scanner) Root() string {
	return s.root
}

// loadMatcher combines every .gitignore beneath the root with the caller
// patterns. Order matters: go-git's matcher lets later patterns win.
func (s *Scanner) loadMatcher() {
	var patterns []gitignore.Pattern

	if s.gitignore {
		if gitPatterns, err := gitignore.ReadPatterns(osfs.New(s.root), nil); err == nil {
			patterns = append(patterns, gitPatterns...)
		} else {
			s.logger.Debug("reading .gitignore failed", "root", s.root, "error", err)
		}
	}
	for _, p := range s.ignore {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if len(patterns) > 0 {
		s.matcher = gitignore.NewMatcher(patterns)
	}
}

// isExcluded reports whether a slash-separated path relative to the root
// is ignored.
func (s *Scanner) isExcluded(rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		if i == len(parts)-1 && !isDir {
			break
		}
		if _, ok := s.excludeDirs[part]; ok {
			return true
		}
	}
	if s.matcher == nil {
		return false
	}
	return s.matcher.Match(parts, isDir)
}

// isExcludedFile reports whether a file is ignored, either itself or
// through any ancestor directory. A negation cannot re-include a file whose
// parent directory is excluded, matching a walk that prunes that directory.
func (s *Scanner) isExcludedFile(rel string) bool {
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' && s.isExcluded(rel[:i], true) {
			return true
		}
	}
	return s.isExcluded(rel, false)
}

// Expand turns input paths into a deduplicated list of regular files,
// relative to the root and slash-separated, in discovery order. An input
// may be a glob, a directory (walked recursively) or a file. Inputs that
// match nothing are logged and skipped.
func (s *Scanner) Expand(inputs []string) ([]string, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, err
	}
	s.loadMatcher()

	var files []string
	seen := make(map[string]struct{})
	add := func(rel string) {
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		files = append(files, rel)
	}

	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		rel, err := s.relative(input)
		if err != nil {
			s.logger.Debug("skipping input outside root", "input", input, "error", err)
			continue
		}

		if IsGlob(rel) {
			s.expandGlob(rel, add)
			continue
		}

		full := filepath.Join(s.root, filepath.FromSlash(rel))
		info, err := os.Lstat(full)
		if err != nil {
			s.logger.Debug("skipping missing input", "input", input, "error", err)
			continue
		}
		switch {
		case info.IsDir():
			if err := s.walk(rel, add); err != nil {
				return nil, err
			}
		case info.Mode().IsRegular():
			if !s.isExcludedFile(rel) {
				add(rel)
			}
		}
	}

	return files, nil
}

func (s *Scanner) expandGlob(pattern string, add func(string)) {
	matches, err := doublestar.Glob(os.DirFS(s.root), pattern,
		doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		s.logger.Debug("bad glob", "pattern", pattern, "error", err)
		return
	}
	for _, m := range matches {
		info, err := os.Lstat(filepath.Join(s.root, filepath.FromSlash(m)))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !s.isExcludedFile(m) {
			add(m)
		}
	}
}

func (s *Scanner) walk(rel string, add func(string)) error {
	start := filepath.Join(s.root, filepath.FromSlash(rel))
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("walk error", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		r, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return nil
		}
		r = filepath.ToSlash(r)

		if d.IsDir() {
			if r != "." && s.isExcluded(r, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !s.isExcluded(r, false) {
			add(r)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// relative converts an input to a clean slash path relative to the root.
func (s *Scanner) relative(input string) (string, error) {
	p := input
	if filepath.IsAbs(p) {
		absRoot, err := filepath.Abs(s.root)
		if err != nil {
			return "", err
		}
		r, err := filepath.Rel(absRoot, p)
		if err != nil {
			return "", err
		}
		p = r
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", errors.New("path escapes root")
	}
	return p, nil
}

// IsGlob reports whether p contains glob metacharacters.
func IsGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
