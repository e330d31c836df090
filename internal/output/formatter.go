package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/complore/internal/report"
)

// Format represents an output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatCompact  Format = "compact"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOON     Format = "toon"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Stdout is the destination name that writes to standard output.
const Stdout = "-"

// ParseFormat converts a string to Format. Anything unrecognised renders
// the HTML flamegraph.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compact":
		return FormatCompact
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "toon":
		return FormatTOON
	case "text", "txt":
		return FormatText
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

// IsHTML reports whether f renders a browser page.
func (f Format) IsHTML() bool {
	return f == FormatHTML || f == FormatCompact
}

// DefaultPath is the destination used when no output is given.
func DefaultPath(f Format) string {
	switch f {
	case FormatJSON:
		return "report.json"
	case FormatYAML:
		return "report.yaml"
	case FormatTOON:
		return "report.toon"
	case FormatText, FormatMarkdown:
		return Stdout
	default:
		return "report.html"
	}
}

// Renderable defines data that can render itself as text or markdown.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
}

// Formatter owns one output destination and writes data to it.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	path    string
	colored bool
}

// NewFormatter creates a formatter writing to output, or to stdout when
// output is empty or "-". Files are never colored.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if output != "" && output != Stdout {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		writer = f
		file = f
		colored = false
	}

	return &Formatter{
		format:  format,
		writer:  writer,
		file:    file,
		path:    output,
		colored: colored,
	}, nil
}

// NewWriterFormatter creates a formatter around an existing writer.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		err := f.file.Close()
		f.file = nil
		return err
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Path returns the destination file, or "" for a writer.
func (f *Formatter) Path() string {
	if f.file == nil {
		return ""
	}
	return f.path
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes data in the configured format. Renderable values honour
// text and markdown; everything else is serialised.
func (f *Formatter) Output(data any) error {
	if r, ok := data.(Renderable); ok {
		switch f.format {
		case FormatText:
			return r.RenderText(f.writer, f.colored)
		case FormatMarkdown:
			return r.RenderMarkdown(f.writer)
		}
	}
	return f.outputRaw(data)
}

// outputRaw serialises data.
func (f *Formatter) outputRaw(data any) error {
	switch f.format {
	case FormatYAML:
		return f.outputYAML(data)
	case FormatTOON:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return fmt.Errorf("encode toon: %w", err)
		}
		_, err = fmt.Fprintln(f.writer, string(out))
		return err
	case FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := f.outputJSON(data); err != nil {
			return err
		}
		fmt.Fprintln(f.writer, "```")
		return nil
	default:
		return f.outputJSON(data)
	}
}

// outputJSON writes data as formatted JSON. Reports keep their exact
// document shape.
func (f *Formatter) outputJSON(data any) error {
	if r, ok := data.(*report.JSONReport); ok {
		if err := report.WriteJSON(f.writer, r); err != nil {
			return err
		}
		_, err := fmt.Fprintln(f.writer)
		return err
	}
	return report.EncodeIndent(f.writer, data)
}

func (f *Formatter) outputYAML(data any) error {
	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Table is a Renderable table with headers, rows, and optional footer.
type Table struct {
	Title   string     `json:"title,omitempty" yaml:"title,omitempty" toon:"title,omitempty"`
	Headers []string   `json:"-" yaml:"-" toon:"-"`
	Rows    [][]string `json:"-" yaml:"-" toon:"-"`
	Footer  []string   `json:"-" yaml:"-" toon:"-"`
	Data    any        `json:"data,omitempty" yaml:"data,omitempty" toon:"data,omitempty"`
}

// NewTable creates a table that wraps structured data for serialization.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
		Data:    data,
	}
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(w, t.Title)
		} else {
			fmt.Fprintln(w, t.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len([]rune(t.Title))))
		fmt.Fprintln(w)
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Footer: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footerArgs := make([]any, len(t.Footer))
		for i, f := range t.Footer {
			footerArgs[i] = f
		}
		table.Footer(footerArgs...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}

	fmt.Fprintf(w, "| %s |\n", strings.Join(t.Headers, " | "))

	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range t.Rows {
		fmt.Fprintf(w, "| %s |\n", strings.Join(escapeCells(row), " | "))
	}

	if len(t.Footer) > 0 {
		fmt.Fprintf(w, "| %s |\n", strings.Join(escapeCells(t.Footer), " | "))
	}

	fmt.Fprintln(w)
	return nil
}

// escapeCells keeps pipes inside paths from splitting markdown cells.
func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
