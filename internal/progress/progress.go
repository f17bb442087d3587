// Package progress carries translation progress from the background worker
// to the interactive goroutine over a channel, so terminal rendering never
// happens on the worker.
package progress

import "sync"

// Stage of a translation job.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTranslate Stage = "translate"
	StageApply     Stage = "apply"
	StageDone      Stage = "done"
)

// Event is one progress update.
type Event struct {
	JobID        string
	File         string
	Stage        Stage
	Batch        int // 1-based, translate stage only
	TotalBatches int
	Attempt      int // >1 when a batch is being retried
	Units        int
	Message      string
}

// Reporter is the worker-side publisher. Publishing is safe from any
// goroutine and never blocks the worker: when the consumer falls behind,
// intermediate updates are dropped.
type Reporter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewReporter creates a reporter with a buffered event channel.
func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Event, 64)}
}

// Publish sends an event without blocking.
func (r *Reporter) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- e:
	default:
	}
}

// Events returns the consumer side.
func (r *Reporter) Events() <-chan Event {
	return r.ch
}

// Close ends the stream. Safe to call once the worker is done publishing.
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
}
