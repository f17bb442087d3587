package progress

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BarRenderer draws translation progress as a terminal bar. It runs on the
// interactive goroutine and consumes the reporter's event stream.
type BarRenderer struct {
	bar       *progressbar.ProgressBar
	total     int
	lastBatch int
}

// NewBarRenderer creates a renderer; the bar itself is created lazily when
// the first translate event announces the batch count.
func NewBarRenderer() *BarRenderer {
	return &BarRenderer{}
}

// Run drains the event channel until it is closed.
func (r *BarRenderer) Run(events <-chan Event) {
	for event := range events {
		r.handle(event)
	}
	r.finish()
}

func (r *BarRenderer) handle(event Event) {
	switch event.Stage {
	case StageExtract:
		// a new file starts here; never reuse the previous file's bar
		r.finish()
		r.total = 0
		r.lastBatch = 0
		fmt.Printf("Extracting %s (%d text units)\n", event.File, event.Units)
	case StageTranslate:
		if r.bar == nil || r.total != event.TotalBatches {
			r.finish()
			r.total = event.TotalBatches
			r.lastBatch = 0
			r.bar = newBar(event.TotalBatches, event.File)
		}
		if event.Attempt > 1 {
			r.bar.Describe(fmt.Sprintf("Translating %s (batch %d, retry %d)", event.File, event.Batch, event.Attempt-1))
			return
		}
		if event.Batch > r.lastBatch {
			_ = r.bar.Add(event.Batch - r.lastBatch)
			r.lastBatch = event.Batch
		}
	case StageApply:
		r.finish()
		fmt.Printf("Writing %s\n", event.File)
	case StageDone:
		r.finish()
		if event.Message != "" {
			fmt.Println(event.Message)
		}
	}
}

func (r *BarRenderer) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		fmt.Println()
		r.bar = nil
	}
}

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("Translating "+description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
