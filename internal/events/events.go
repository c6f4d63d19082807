package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobEventType identifies a point in a job's lifecycle.
type JobEventType string

// Lifecycle event types.
const (
	JobStarted   JobEventType = "started"
	JobCompleted JobEventType = "completed"
	JobCancelled JobEventType = "cancelled"
	JobFailed    JobEventType = "failed"
)

// Terminal reports whether t ends a job.
func (t JobEventType) Terminal() bool {
	return t == JobCompleted || t == JobCancelled || t == JobFailed
}

// JobEvent describes a lifecycle transition of one job. It carries the job's
// fingerprint, never the credential pair.
type JobEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// JobID identifies the job instance
	JobID uuid.UUID `json:"job_id"`

	// Fingerprint is the job's registry key
	Fingerprint string `json:"fingerprint"`

	Type JobEventType `json:"type"`

	// Error is the redacted failure message for failed jobs
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewJobEvent creates a JobEvent stamped with a fresh ID and the current time.
func NewJobEvent(jobID uuid.UUID, fingerprint string, eventType JobEventType) *JobEvent {
	return &JobEvent{
		ID:          uuid.New(),
		JobID:       jobID,
		Fingerprint: fingerprint,
		Type:        eventType,
		CreatedAt:   time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *JobEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the job runner to publish lifecycle transitions without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *JobEvent) error
}
