// Package output writes the single artifact a complore run produces.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/panbanda/complore/internal/output"
	"github.com/panbanda/complore/internal/report"
	"github.com/panbanda/complore/pkg/models"
)

// Format represents output format.
type Format = output.Format

// Supported formats (re-exported for convenience).
const (
	FormatHTML     = output.FormatHTML
	FormatCompact  = output.FormatCompact
	FormatJSON     = output.FormatJSON
	FormatYAML     = output.FormatYAML
	FormatTOON     = output.FormatTOON
	FormatText     = output.FormatText
	FormatMarkdown = output.FormatMarkdown
)

// Service renders a scan in one format to one destination.
type Service struct {
	format   Format
	writer   io.Writer
	colored  bool
	filePath string
	renderer *report.Renderer
	top      int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

// WithWriter sends output to w instead of a file.
func WithWriter(w io.Writer) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithColor enables or disables colored text output.
func WithColor(enabled bool) Option {
	return func(s *Service) {
		s.colored = enabled
	}
}

// WithFile sets output to a file. "-" means stdout.
func WithFile(path string) Option {
	return func(s *Service) {
		s.filePath = path
	}
}

// WithRenderer sets the HTML renderer.
func WithRenderer(r *report.Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// WithTop limits the rows of text and markdown summaries.
func WithTop(n int) Option {
	return func(s *Service) {
		s.top = n
	}
}

// WithClock sets the timestamp source for report metadata.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new output service. Without a file or writer the
// destination is the format's default path.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		format:  FormatHTML,
		colored: true,
		top:     20,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.renderer == nil {
		r, err := report.NewRenderer()
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	if s.writer == nil && s.filePath == "" {
		s.filePath = output.DefaultPath(s.format)
	}
	return s, nil
}

// Format returns the current format.
func (s *Service) Format() Format {
	return s.format
}

// Destination returns the absolute output path, or "" for stdout or a
// caller-supplied writer.
func (s *Service) Destination() string {
	if s.writer != nil || s.filePath == "" || s.filePath == output.Stdout {
		return ""
	}
	abs, err := filepath.Abs(s.filePath)
	if err != nil {
		return s.filePath
	}
	return abs
}

// Write renders scan and writes it out, returning the absolute path of
// the written file or "" when writing to a stream. Data formats are checked
// against the report schema first. A failed file write removes the partial
// file.
func (s *Service) Write(scan *models.ScanResult, components models.Components) (string, error) {
	if scan == nil {
		scan = models.NewScanResult(nil)
	}

	var f *output.Formatter
	if s.writer != nil {
		f = output.NewWriterFormatter(s.format, s.writer, s.colored)
	} else {
		var err error
		f, err = output.NewFormatter(s.format, s.filePath, s.colored)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", s.filePath, err)
		}
	}

	if err := s.render(f, scan, components); err != nil {
		f.Close()
		if p := f.Path(); p != "" {
			_ = os.Remove(p)
		}
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.Destination(), nil
}

func (s *Service) render(f *output.Formatter, scan *models.ScanResult, components models.Components) error {
	switch s.format {
	case FormatHTML:
		return s.renderer.RenderHTML(f.Writer(), scan, components)
	case FormatCompact:
		return s.renderer.RenderCompact(f.Writer(), scan, components)
	case FormatText, FormatMarkdown:
		return f.Output(output.Summary(scan, components, s.top))
	default:
		rep := report.Assemble(scan, components, s.now())
		data, err := report.MarshalReport(rep)
		if err != nil {
			return err
		}
		if err := report.Validate(data); err != nil {
			return fmt.Errorf("refusing to write report: %w", err)
		}
		return f.Output(rep)
	}
}
