// Package progress draws scan progress on stderr.
package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing. A nil bar makes every
// method a no-op, which is how quiet runs are represented.
type Tracker struct {
	bar *progressbar.ProgressBar
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int) *Tracker {
	return NewTrackerTo(os.Stderr, label, total)
}

// NewTrackerTo is NewTracker writing to w.
func NewTrackerTo(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar}
}

// Quiet returns a tracker that draws nothing.
func Quiet() *Tracker {
	return &Tracker{}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Add(1)
}

// Finish clears the bar completely.
func (t *Tracker) Finish() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// Factory adapts tracker creation to the scan service's progress hook:
// it starts a bar for total files and returns the per-file tick.
func Factory(label string, enabled bool) func(total int) (tick func(), done func()) {
	return func(total int) (func(), func()) {
		t := Quiet()
		if enabled && total > 0 {
			t = NewTracker(label, total)
		}
		return t.Tick, t.Finish
	}
}
