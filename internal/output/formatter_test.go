package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/panbanda/complore/internal/report"
	"github.com/panbanda/complore/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"html", FormatHTML},
		{"HTML", FormatHTML},
		{"compact", FormatCompact},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"", FormatHTML},
		{"flame", FormatHTML},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatHTML, "report.html"},
		{FormatCompact, "report.html"},
		{FormatJSON, "report.json"},
		{FormatYAML, "report.yaml"},
		{FormatTOON, "report.toon"},
		{FormatText, Stdout},
		{FormatMarkdown, Stdout},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := DefaultPath(tt.format); got != tt.want {
				t.Errorf("DefaultPath(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestIsHTML(t *testing.T) {
	if !FormatHTML.IsHTML() || !FormatCompact.IsHTML() {
		t.Error("html and compact should be HTML formats")
	}
	if FormatJSON.IsHTML() {
		t.Error("json should not be an HTML format")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		output  string
		colored bool
	}{
		{"text_stdout_colored", FormatText, "", true},
		{"json_stdout_nocolor", FormatJSON, "", false},
		{"markdown_dash_colored", FormatMarkdown, Stdout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.format, tt.output, tt.colored)
			if err != nil {
				t.Fatalf("NewFormatter() error: %v", err)
			}
			defer f.Close()

			if f.Format() != tt.format {
				t.Errorf("format = %q, want %q", f.Format(), tt.format)
			}
			if f.Colored() != tt.colored {
				t.Errorf("colored = %v, want %v", f.Colored(), tt.colored)
			}
			if f.Path() != "" {
				t.Errorf("Path() = %q, want empty for stdout", f.Path())
			}
			if f.Writer() == nil {
				t.Error("Writer() should not be nil")
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if f.Colored() {
		t.Error("colored should be false when writing to file")
	}
	if f.Path() != outputPath {
		t.Errorf("Path() = %q, want %q", f.Path(), outputPath)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Error("output file should exist")
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"), false)
	if err == nil {
		t.Error("NewFormatter() should error for invalid path")
	}
}

func testReport() *report.JSONReport {
	scan := models.NewScanResult([]models.FileMetrics{
		{Path: "a.js", LOC: 10, Activity: 2, Functions: 1, Imports: 1, MaxFunc: 3},
		{Path: "sub/b.js", LOC: 20, Functions: 2, MaxFunc: 2},
	})
	return report.Assemble(scan, models.DefaultComponents(), time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
}

func TestOutputJSONReport(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)

	if err := f.Output(testReport()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	if err := report.Validate(buf.Bytes()); err != nil {
		t.Errorf("output does not validate: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Errorf("output should end with a newline, got %q", buf.String())
	}
}

func TestOutputYAML(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatYAML, &buf, false)

	if err := f.Output(testReport()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	var decoded struct {
		Meta struct {
			GeneratedAt string `yaml:"generatedAt"`
		} `yaml:"meta"`
		Items []models.FileMetrics `yaml:"items"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if decoded.Meta.GeneratedAt != "2024-05-06T07:08:09.000Z" {
		t.Errorf("generatedAt = %q", decoded.Meta.GeneratedAt)
	}
	if len(decoded.Items) != 2 || decoded.Items[1].Path != "sub/b.js" {
		t.Errorf("items = %+v", decoded.Items)
	}
}

func TestOutputTOON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatTOON, &buf, false)

	if err := f.Output(testReport()); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"generatedAt", "sub/b.js", "maxfunc"} {
		if !strings.Contains(out, want) {
			t.Errorf("TOON output missing %q:\n%s", want, out)
		}
	}
}

func TestOutputTableAsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)
	table := NewTable("T", []string{"A"}, [][]string{{"1"}}, nil, map[string]int{"a": 1})

	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["title"] != "T" {
		t.Errorf("title = %v, want T", decoded["title"])
	}
}

func TestOutputMarkdownRaw(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatMarkdown, &buf, false)

	if err := f.Output(map[string]string{"key": "value"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "```json\n") || !strings.HasSuffix(output, "```\n") {
		t.Errorf("markdown output should be fenced JSON, got:\n%s", output)
	}
}

func TestTableRenderText(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		colored bool
		want    []string
	}{
		{
			name:  "with_title",
			table: NewTable("Files", []string{"Path", "LOC"}, [][]string{{"a.js", "10"}}, nil, nil),
			want:  []string{"Files", "=====", "a.js", "10"},
		},
		{
			name:    "colored_with_footer",
			table:   NewTable("", []string{"Path"}, [][]string{{"b.js"}}, []string{"1 files"}, nil),
			colored: true,
			want:    []string{"b.js", "1 files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.table.RenderText(&buf, tt.colored); err != nil {
				t.Fatalf("RenderText() error: %v", err)
			}
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("RenderText() missing %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Files", []string{"Path", "LOC"}, [][]string{{"a|b.js", "10"}}, []string{"1 files", "10"}, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	want := "## Files\n\n| Path | LOC |\n| --- | --- |\n| a\\|b.js | 10 |\n| 1 files | 10 |\n\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", got, want)
	}
}

func TestOutputRenderableText(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	table := NewTable("", []string{"Path"}, [][]string{{"c.js"}}, nil, nil)

	if err := f.Output(table); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if !strings.Contains(buf.String(), "c.js") {
		t.Errorf("text output missing row:\n%s", buf.String())
	}
}
