// Package report assembles and renders complore reports: the JSON document,
// the interactive flamegraph page and the compact pixel-bar page.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/panbanda/complore/pkg/models"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Meta describes how a report was produced.
type Meta struct {
	GeneratedAt string            `json:"generatedAt" yaml:"generatedAt" toon:"generatedAt"`
	Components  models.Components `json:"components" yaml:"components" toon:"components"`
}

// JSONReport is the stable JSON document consumers read.
type JSONReport struct {
	Meta  Meta                 `json:"meta" yaml:"meta" toon:"meta"`
	Maxes models.Counts        `json:"maxes" yaml:"maxes" toon:"maxes"`
	Items []models.FileMetrics `json:"items" yaml:"items" toon:"items"`
}

// Assemble wraps a scan result and its visual encoding. It is pure apart
// from the supplied timestamp.
func Assemble(scan *models.ScanResult, components models.Components, generatedAt time.Time) *JSONReport {
	items := []models.FileMetrics{}
	var maxes models.Counts
	if scan != nil {
		if scan.Items != nil {
			items = scan.Items
		}
		maxes = scan.Maxes
	}
	return &JSONReport{
		Meta: Meta{
			GeneratedAt: generatedAt.UTC().Format(TimestampFormat),
			Components:  components,
		},
		Maxes: maxes,
		Items: items,
	}
}

// Scan returns the scan result the report was assembled from.
func (r *JSONReport) Scan() *models.ScanResult {
	return &models.ScanResult{Items: r.Items, Maxes: r.Maxes}
}

// EncodeIndent writes v as two-space indented JSON without HTML escaping,
// followed by a newline.
func EncodeIndent(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// MarshalReport encodes r with two-space indentation and no HTML escaping.
func MarshalReport(r *JSONReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeIndent(&buf, r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes the pretty-printed report to w.
func WriteJSON(w io.Writer, r *JSONReport) error {
	data, err := MarshalReport(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadJSON decodes and validates a report previously written by WriteJSON.
func ReadJSON(rd io.Reader) (*JSONReport, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var r JSONReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.Items == nil {
		r.Items = []models.FileMetrics{}
	}
	return &r, nil
}
