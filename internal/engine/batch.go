package engine

import (
	"context"
	"sync"
)

// Batch is the handle for one in-flight export. Results are updated as
// jobs move through their lifecycle and may be read at any time.
type Batch struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	results  []JobResult
	observer func(JobResult)
}

// Cancel stops the batch: running jobs stop at their next frame and their
// partial outputs are removed, completed jobs keep their outputs, and
// jobs that never started stay pending.
func (b *Batch) Cancel() {
	b.cancel()
}

// Wait blocks until every job has reached a terminal state or been
// skipped by cancellation
func (b *Batch) Wait() {
	<-b.done
}

// Done exposes the completion channel for select loops
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Report returns a snapshot of every job's result, grouped by original
// job index for deterministic output
func (b *Batch) Report() []JobResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]JobResult, len(b.results))
	copy(out, b.results)
	return out
}

// Failed reports whether any job ended in failure
func (b *Batch) Failed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Observe registers a callback invoked on every job state transition.
// Jobs that reached a terminal state before registration are replayed to
// the callback, so registering after Export loses nothing. The callback
// runs on worker goroutines and must not block.
func (b *Batch) Observe(fn func(JobResult)) {
	b.mu.Lock()
	b.observer = fn
	var replay []JobResult
	for _, r := range b.results {
		if r.Status == StatusCompleted || r.Status == StatusFailed {
			replay = append(replay, r)
		}
	}
	b.mu.Unlock()

	for _, r := range replay {
		fn(r)
	}
}

func (b *Batch) setStatus(index int, status Status, encoded int, err error) {
	b.mu.Lock()
	r := &b.results[index]
	r.Status = status
	r.Err = err
	if status == StatusCompleted || status == StatusFailed {
		r.FramesEncoded = encoded
		r.FramesSkipped = r.FramesExpected - encoded
		if r.FramesSkipped < 0 {
			r.FramesSkipped = 0
		}
	}
	snapshot := *r
	observer := b.observer
	b.mu.Unlock()

	if observer != nil {
		observer(snapshot)
	}
}
