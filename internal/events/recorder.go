package events

import (
	"context"
	"sync"
)

// Recorder is an EventHandler that keeps the most recent terminal job events
// in a fixed-size ring. It is how callers learn why a job disappeared from the
// active list.
type Recorder struct {
	mu     sync.Mutex
	events []JobEvent
	next   int
	full   bool
}

// NewRecorder returns a Recorder holding at most size events. Sizes below 1
// are treated as 1.
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{events: make([]JobEvent, size)}
}

// HandleEvent records terminal events and ignores the rest.
func (r *Recorder) HandleEvent(_ context.Context, event *JobEvent) error {
	if event == nil || !event.Type.Terminal() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = *event
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent returns the recorded events, newest first.
func (r *Recorder) Recent() []JobEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = len(r.events)
	}

	out := make([]JobEvent, 0, count)
	for i := 1; i <= count; i++ {
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}
