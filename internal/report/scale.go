package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/panbanda/complore/pkg/models"
)

// Bar geometry for the flamegraph page.
const (
	MinBarHeight   = 12
	BarHeightRange = 180
)

// Scale normalizes v against max into [0,1]. A non-positive max yields 0.
// Folder aggregates can exceed the per-record max, so the result is clamped.
func Scale(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	s := float64(v) / float64(max)
	return math.Min(1, math.Max(0, s))
}

// Hue maps a normalized value onto the red-green ramp: 0 gives 120
// (green) and 1 gives 0 (red).
func Hue(c float64) float64 {
	return (1 - c) * 120
}

// MetricScale normalizes metric m of counts against the scan maxima.
// Unknown metrics have no maximum and normalize to 0.
func MetricScale(counts, maxes models.Counts, m models.Metric) float64 {
	v, ok := counts.Value(m)
	if !ok {
		return 0
	}
	mx, _ := maxes.Value(m)
	return Scale(v, mx)
}

// BarHeight returns the flamegraph bar height in pixels for a scale.
func BarHeight(scale float64) int {
	return MinBarHeight + int(math.Round(scale*BarHeightRange))
}

// formatHue renders a hue with at most two decimals.
func formatHue(h float64) string {
	return strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64)
}

// barColor is the flamegraph fill for a normalized color value.
func barColor(c float64) string {
	return fmt.Sprintf("hsl(%s, 85%%, 45%%)", formatHue(Hue(c)))
}

// cellColor is the compact page fill for a normalized color value.
func cellColor(c float64) string {
	return fmt.Sprintf("hsl(%s,85%%,45%%)", formatHue(Hue(c)))
}

// folderColor is the neutral fill of compact folder bars.
const folderColor = "hsl(210,10%,70%)"

// detailLine is the one-line metric summary shown beside or over a file.
func detailLine(f models.FileMetrics) string {
	return fmt.Sprintf("loc %d · act %d · fn %d · imp %d · maxf %d",
		f.LOC, f.Activity, f.Functions, f.Imports, f.MaxFunc)
}
