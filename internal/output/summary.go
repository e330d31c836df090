package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/complore/pkg/models"
)

// SummaryHeaders are the columns of the summary table.
var SummaryHeaders = []string{"Path", "LOC", "Activity", "Functions", "Imports", "MaxFunc"}

// SummaryData is the serialisable part of a summary.
type SummaryData struct {
	Metric models.Metric        `json:"metric" yaml:"metric" toon:"metric"`
	Files  int                  `json:"files" yaml:"files" toon:"files"`
	Total  models.Counts        `json:"total" yaml:"total" toon:"total"`
	Mean   float64              `json:"mean" yaml:"mean" toon:"mean"`
	StdDev float64              `json:"stddev" yaml:"stddev" toon:"stddev"`
	Top    []models.FileMetrics `json:"top" yaml:"top" toon:"top"`
}

// Summarize ranks records by the height metric, highest first, and keeps
// at most top of them. A non-positive top keeps everything. Ties keep scan
// order.
func Summarize(scan *models.ScanResult, components models.Components, top int) SummaryData {
	var items []models.FileMetrics
	if scan != nil {
		items = scan.Items
	}
	metric := components.Height

	values := make([]float64, len(items))
	var total models.Counts
	for i, it := range items {
		values[i] = float64(it.Value(metric))
		total.Accumulate(it.Counts())
	}

	var mean, std float64
	switch len(values) {
	case 0:
	case 1:
		mean = values[0]
	default:
		mean, std = stat.MeanStdDev(values, nil)
	}

	ranked := make([]models.FileMetrics, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value(metric) > ranked[j].Value(metric)
	})
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	return SummaryData{
		Metric: metric,
		Files:  len(items),
		Total:  total,
		Mean:   round2(mean),
		StdDev: round2(std),
		Top:    ranked,
	}
}

// Summary builds the text/markdown table for a scan.
func Summary(scan *models.ScanResult, components models.Components, top int) *Table {
	data := Summarize(scan, components, top)

	rows := make([][]string, len(data.Top))
	for i, it := range data.Top {
		rows[i] = []string{
			it.Path,
			humanize.Comma(int64(it.LOC)),
			humanize.Comma(int64(it.Activity)),
			strconv.Itoa(it.Functions),
			strconv.Itoa(it.Imports),
			strconv.Itoa(it.MaxFunc),
		}
	}
	footer := []string{
		fmt.Sprintf("%s files", humanize.Comma(int64(data.Files))),
		humanize.Comma(int64(data.Total.LOC)),
		humanize.Comma(int64(data.Total.Activity)),
		humanize.Comma(int64(data.Total.Functions)),
		humanize.Comma(int64(data.Total.Imports)),
		strconv.Itoa(data.Total.MaxFunc),
	}
	title := fmt.Sprintf("Top %d by %s (mean %.2f, stddev %.2f)",
		len(data.Top), data.Metric, data.Mean, data.StdDev)

	return NewTable(title, SummaryHeaders, rows, footer, data)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
