package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar counting sampling rounds.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewTracker creates a progress bar on w with the given label and total.
func NewTracker(w io.Writer, label string, total int64) *Tracker {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(0),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// Add advances the bar by n. Safe for concurrent use.
func (t *Tracker) Add(n int) {
	_ = t.bar.Add(n)
}

// Current returns the amount of progress recorded so far.
func (t *Tracker) Current() int64 {
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
