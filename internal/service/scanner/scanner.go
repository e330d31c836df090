// Package scanner turns input paths into a ScanResult: it discovers files,
// measures each one concurrently and optionally folds them into folders.
package scanner

import (
	"context"
	"log/slog"
	"path"

	"github.com/panbanda/complore/internal/fileproc"
	"github.com/panbanda/complore/internal/scanner"
	"github.com/panbanda/complore/pkg/analyzer/activity"
	"github.com/panbanda/complore/pkg/analyzer/heuristic"
	"github.com/panbanda/complore/pkg/config"
	"github.com/panbanda/complore/pkg/models"
	"github.com/panbanda/complore/pkg/source"
)

// ProgressFunc starts progress reporting for total files. It returns the
// per-file tick and a function called once the scan finishes.
type ProgressFunc func(total int) (tick func(), done func())

// Service provides file scanning functionality.
type Service struct {
	root     string
	config   *config.Config
	activity activity.Provider
	source   source.ContentSource
	workers  int
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRoot sets the directory input paths are resolved against.
func WithRoot(root string) Option {
	return func(s *Service) {
		if root != "" {
			s.root = root
		}
	}
}

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithActivity overrides the activity provider chosen from the config.
func WithActivity(p activity.Provider) Option {
	return func(s *Service) {
		s.activity = p
	}
}

// WithSource overrides where file content is read from.
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithWorkers bounds concurrent file processing.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithProgress sets the progress hook.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		root:   ".",
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers == 0 {
		s.workers = s.config.Workers
	}
	if s.source == nil {
		s.source = source.NewFilesystem(s.root)
	}
	if s.activity == nil {
		s.activity = activity.New(s.config.Activity.Backend, s.root, activity.WithLogger(s.logger))
	}
	return s
}

// Scan measures every file matched by paths that survives the ignore rules.
// Items come back in discovery order. With foldersOnly the file records are
// replaced by one record per parent directory. Unreadable files degrade to
// zero metrics; only a missing root or cancellation fails the scan.
func (s *Service) Scan(ctx context.Context, paths, ignore []string, foldersOnly bool) (*models.ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	sc := scanner.New(s.root,
		scanner.WithIgnorePatterns(ignore),
		scanner.WithGitignore(s.config.Exclude.Gitignore),
		scanner.WithExcludeDirs(s.config.Exclude.Dirs),
		scanner.WithLogger(s.logger),
	)
	files, err := sc.Expand(paths)
	if err != nil {
		return nil, &ScanError{Path: s.root, Err: err}
	}
	s.logger.Debug("files discovered", "count", len(files), "root", s.root)

	tick, done := s.startProgress(len(files))
	defer done()

	readErrs := &fileproc.ProcessingErrors{}
	items, errs := fileproc.MapIndexed(ctx, files, s.workers, func(ctx context.Context, rel string) (models.FileMetrics, error) {
		content, err := s.source.Read(rel)
		if err != nil {
			readErrs.Add(rel, err)
			content = nil
		}
		counts := heuristic.Extract(content)
		counts.Activity = s.activity.Activity(ctx, rel)
		return models.NewFileMetrics(rel, counts), nil
	}, tick)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		s.logger.Debug("files failed", "count", errs.Len(), "error", errs)
	}
	if readErrs.HasErrors() {
		s.logger.Debug("unreadable files scored as empty", "count", readErrs.Len(), "error", readErrs)
	}

	if foldersOnly {
		items = GroupByFolder(items)
	}
	return models.NewScanResult(items), nil
}

func (s *Service) startProgress(total int) (func(), func()) {
	if s.progress == nil {
		return nil, func() {}
	}
	tick, done := s.progress(total)
	if done == nil {
		done = func() {}
	}
	return tick, done
}

// GroupByFolder folds file records into one record per parent directory,
// in first-seen directory order. Root-level files group under ".". Every
// metric is summed except maxfunc, which keeps the maximum.
func GroupByFolder(items []models.FileMetrics) []models.FileMetrics {
	var order []string
	groups := make(map[string]*models.Counts)
	for _, it := range items {
		dir := path.Dir(it.Path)
		agg, ok := groups[dir]
		if !ok {
			agg = &models.Counts{}
			groups[dir] = agg
			order = append(order, dir)
		}
		agg.Accumulate(it.Counts())
	}

	out := make([]models.FileMetrics, 0, len(order))
	for _, dir := range order {
		out = append(out, models.NewFileMetrics(dir, *groups[dir]))
	}
	return out
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
