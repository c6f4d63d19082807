package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/study-runner/internal/events"
	"github.com/phrazzld/study-runner/internal/redact"
)

// Body is the work a job performs. It must return promptly once ctx is done.
type Body func(ctx context.Context) error

// Runner executes job bodies on background goroutines and performs their
// terminal bookkeeping.
type Runner struct {
	registry *Registry
	emitter  events.EventEmitter
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewRunner creates a Runner that releases finished jobs from registry.
// emitter may be nil, in which case no lifecycle events are published.
func NewRunner(registry *Registry, emitter events.EventEmitter, logger *slog.Logger) *Runner {
	return &Runner{
		registry: registry,
		emitter:  emitter,
		logger:   logger.With("component", "job_runner"),
	}
}

// Go runs body for job on a new goroutine and returns immediately.
// The job is expected to be registered already. Whatever way body exits
// (return, error, cancellation or panic) the runner logs the outcome and
// then releases the job from the registry.
func (r *Runner) Go(job *Job, body Body) {
	r.wg.Add(1)
	go r.run(job, body)
}

func (r *Runner) run(job *Job, body Body) {
	defer r.wg.Done()

	logger := r.logger.With("job_id", job.ID(), "fingerprint", job.Key())

	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, rec)
		}

		status := r.classify(job, err)
		switch status {
		case JobStatusCancelled:
			logger.Warn("job cancelled")
		case JobStatusFailed:
			logger.Error("job failed", "error", redact.Error(err))
		}
		logger.Info("job finished", "status", status, "duration", time.Since(job.StartedAt()).Round(time.Millisecond))

		job.finish(status, err)
		r.registry.Release(job)
		job.Cancel()
		r.emit(job, status, err)
		close(job.done)
	}()

	r.emit(job, JobStatusRunning, nil)
	logger.Info("job started")

	err = body(job.Context())
}

// classify maps a body's result to a terminal status. Cancellation takes
// precedence: once the job context is done, any error counts as cancelled,
// including errors that do not wrap context.Canceled.
func (r *Runner) classify(job *Job, err error) JobStatus {
	switch {
	case err == nil:
		return JobStatusCompleted
	case errors.Is(err, context.Canceled), job.Context().Err() != nil:
		return JobStatusCancelled
	default:
		return JobStatusFailed
	}
}

func (r *Runner) emit(job *Job, status JobStatus, err error) {
	if r.emitter == nil {
		return
	}

	event := events.NewJobEvent(job.ID(), job.Key(), eventType(status))
	if err != nil && status == JobStatusFailed {
		event.Error = redact.Error(err)
	}

	// Handlers are best effort; a failing subscriber never affects the job.
	if emitErr := r.emitter.EmitEvent(context.Background(), event); emitErr != nil {
		r.logger.Debug("job event handler failed", "error", emitErr, "job_id", job.ID())
	}
}

func eventType(status JobStatus) events.JobEventType {
	switch status {
	case JobStatusCompleted:
		return events.JobCompleted
	case JobStatusCancelled:
		return events.JobCancelled
	case JobStatusFailed:
		return events.JobFailed
	default:
		return events.JobStarted
	}
}

// Shutdown cancels every registered job and waits for all running bodies to
// return, or for ctx to be done, whichever happens first.
func (r *Runner) Shutdown(ctx context.Context) error {
	jobs := r.registry.Jobs()
	for _, job := range jobs {
		job.Cancel()
	}
	r.logger.Info("shutting down job runner", "active_jobs", len(jobs))

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for jobs to stop: %w", ctx.Err())
	}
}
