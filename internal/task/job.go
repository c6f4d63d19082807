package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a job.
type JobStatus string

// Possible job status values.
const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether s is a final status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusFailed
}

// Job is the handle for one background job. It owns the job's cancellation
// control; the body observes cancellation through Context.
type Job struct {
	id        uuid.UUID
	key       string
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status JobStatus
	err    error
}

// NewJob creates a running job handle for key. The job's context derives from
// parent, so cancelling parent cancels the job as well.
func NewJob(parent context.Context, key string) *Job {
	ctx, cancel := context.WithCancel(parent)
	return &Job{
		id:        uuid.New(),
		key:       key,
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		status:    JobStatusRunning,
	}
}

// ID returns the job's unique identifier.
func (j *Job) ID() uuid.UUID { return j.id }

// Key returns the registry key the job was created for.
func (j *Job) Key() string { return j.key }

// StartedAt returns the time the handle was created.
func (j *Job) StartedAt() time.Time { return j.startedAt }

// Context returns the job's context, cancelled when the job is cancelled.
func (j *Job) Context() context.Context { return j.ctx }

// Cancel requests cooperative cancellation. It is safe to call repeatedly
// and from any goroutine.
func (j *Job) Cancel() { j.cancel() }

// Done is closed once the job body has returned and cleanup has run.
func (j *Job) Done() <-chan struct{} { return j.done }

// Status returns the job's current status.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the error that failed the job, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// finish records the terminal state. Only the first call has any effect.
func (j *Job) finish(status JobStatus, err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return false
	}
	j.status = status
	j.err = err
	return true
}
