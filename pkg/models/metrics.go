package models

import "strings"

// Metric names one of the per-file measurements a report can encode visually.
type Metric string

const (
	MetricLOC       Metric = "loc"
	MetricActivity  Metric = "activity"
	MetricFunctions Metric = "functions"
	MetricImports   Metric = "imports"
	MetricMaxFunc   Metric = "maxfunc"
)

// Metrics returns every known metric in canonical order.
func Metrics() []Metric {
	return []Metric{MetricLOC, MetricActivity, MetricFunctions, MetricImports, MetricMaxFunc}
}

// ParseMetric normalizes a metric name. Unknown names are passed through
// unchanged so that they normalize to zero when rendered.
func ParseMetric(s string) Metric {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m
	}
	return Metric(s)
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricLOC, MetricActivity, MetricFunctions, MetricImports, MetricMaxFunc:
		return true
	}
	return false
}

// Counts holds one value per metric. It is used for per-metric maxima,
// for folder aggregates, and as the metric portion of a FileMetrics.
type Counts struct {
	LOC       int `json:"loc" yaml:"loc" toon:"loc"`
	Activity  int `json:"activity" yaml:"activity" toon:"activity"`
	Functions int `json:"functions" yaml:"functions" toon:"functions"`
	Imports   int `json:"imports" yaml:"imports" toon:"imports"`
	MaxFunc   int `json:"maxfunc" yaml:"maxfunc" toon:"maxfunc"`
}

// Value returns the count for metric m. The boolean is false for unknown metrics.
func (c Counts) Value(m Metric) (int, bool) {
	switch m {
	case MetricLOC:
		return c.LOC, true
	case MetricActivity:
		return c.Activity, true
	case MetricFunctions:
		return c.Functions, true
	case MetricImports:
		return c.Imports, true
	case MetricMaxFunc:
		return c.MaxFunc, true
	}
	return 0, false
}

// Accumulate folds o into c: every field is summed except MaxFunc,
// which keeps the running maximum.
func (c *Counts) Accumulate(o Counts) {
	c.LOC += o.LOC
	c.Activity += o.Activity
	c.Functions += o.Functions
	c.Imports += o.Imports
	c.MaxFunc = max(c.MaxFunc, o.MaxFunc)
}

// MaxWith raises every field of c to at least the matching field of o.
func (c *Counts) MaxWith(o Counts) {
	c.LOC = max(c.LOC, o.LOC)
	c.Activity = max(c.Activity, o.Activity)
	c.Functions = max(c.Functions, o.Functions)
	c.Imports = max(c.Imports, o.Imports)
	c.MaxFunc = max(c.MaxFunc, o.MaxFunc)
}

// FileMetrics is the metric record for one scanned file, or for one folder
// when a scan aggregates by folder. Path is slash-separated and relative.
type FileMetrics struct {
	Path      string `json:"path" yaml:"path" toon:"path"`
	LOC       int    `json:"loc" yaml:"loc" toon:"loc"`
	Activity  int    `json:"activity" yaml:"activity" toon:"activity"`
	Functions int    `json:"functions" yaml:"functions" toon:"functions"`
	Imports   int    `json:"imports" yaml:"imports" toon:"imports"`
	MaxFunc   int    `json:"maxfunc" yaml:"maxfunc" toon:"maxfunc"`
}

// NewFileMetrics builds a record from a path and its counts.
func NewFileMetrics(path string, c Counts) FileMetrics {
	return FileMetrics{
		Path:      path,
		LOC:       c.LOC,
		Activity:  c.Activity,
		Functions: c.Functions,
		Imports:   c.Imports,
		MaxFunc:   c.MaxFunc,
	}
}

// Counts returns the metric values of the record.
func (f FileMetrics) Counts() Counts {
	return Counts{
		LOC:       f.LOC,
		Activity:  f.Activity,
		Functions: f.Functions,
		Imports:   f.Imports,
		MaxFunc:   f.MaxFunc,
	}
}

// Value returns the record's value for metric m, or 0 for unknown metrics.
func (f FileMetrics) Value(m Metric) int {
	v, _ := f.Counts().Value(m)
	return v
}

// ScanResult is the output of one scan: records in discovery order plus
// the per-metric maxima over those records.
type ScanResult struct {
	Items []FileMetrics `json:"items" yaml:"items" toon:"items"`
	Maxes Counts        `json:"maxes" yaml:"maxes" toon:"maxes"`
}

// NewScanResult wraps items and computes their maxima.
func NewScanResult(items []FileMetrics) *ScanResult {
	if items == nil {
		items = []FileMetrics{}
	}
	return &ScanResult{Items: items, Maxes: ComputeMaxes(items)}
}

// ComputeMaxes returns the per-field maximum across items. All fields are
// zero when items is empty.
func ComputeMaxes(items []FileMetrics) Counts {
	var m Counts
	for _, it := range items {
		m.MaxWith(it.Counts())
	}
	return m
}

// Components selects which metric drives bar height and which drives hue.
type Components struct {
	Height Metric `json:"height" yaml:"height" toon:"height"`
	Color  Metric `json:"color" yaml:"color" toon:"color"`
}

// DefaultComponents returns the built-in visual encoding.
func DefaultComponents() Components {
	return Components{Height: MetricLOC, Color: MetricActivity}
}
