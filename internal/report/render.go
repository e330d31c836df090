package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTitle heads the flamegraph page.
const DefaultTitle = "complore report"

// Renderer turns scan results into self-contained HTML pages.
type Renderer struct {
	flame   *template.Template
	compact *template.Template
	layout  Layout
	state   *SectionState
	title   string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayout sets the compact page's pixel constants.
func WithLayout(l Layout) Option {
	return func(r *Renderer) {
		r.layout = l
	}
}

// WithSectionState sets which flamegraph sections render open.
func WithSectionState(s *SectionState) Option {
	return func(r *Renderer) {
		if s != nil {
			r.state = s
		}
	}
}

// WithTitle overrides the page heading.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// NewRenderer creates a new renderer with the embedded templates.
func NewRenderer(opts ...Option) (*Renderer, error) {
	p := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"num": func(n int) string {
			return p.Sprintf("%d", n)
		},
	}

	flame, err := template.New("flame.html").Funcs(funcMap).ParseFS(templateFS, "templates/flame.html")
	if err != nil {
		return nil, fmt.Errorf("parse flamegraph template: %w", err)
	}
	compact, err := template.New("compact.html").Funcs(funcMap).ParseFS(templateFS, "templates/compact.html")
	if err != nil {
		return nil, fmt.Errorf("parse compact template: %w", err)
	}

	r := &Renderer{
		flame:   flame,
		compact: compact,
		layout:  DefaultLayout(),
		state:   NewSectionState(),
		title:   DefaultTitle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// writeTemplate executes tmpl into w.
func writeTemplate(w io.Writer, tmpl *template.Template, data any) error {
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return nil
}
