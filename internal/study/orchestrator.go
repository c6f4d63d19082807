package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/study-runner/internal/redact"
	"github.com/phrazzld/study-runner/internal/task"
)

// Fingerprinter derives the registry key of a credential pair.
type Fingerprinter interface {
	Fingerprint(identity, secret string) string
}

// StartResult describes an accepted job.
type StartResult struct {
	Fingerprint string
	JobID       uuid.UUID
	Courses     []Course
}

// JobList is a snapshot of the active jobs.
type JobList struct {
	Fingerprints []string
	Count        int
}

// Orchestrator is the entry point for starting, cancelling and listing study
// jobs. All methods are safe for concurrent use.
type Orchestrator struct {
	registry     *task.Registry
	runner       *task.Runner
	fingerprints Fingerprinter
	connector    Connector
	logger       *slog.Logger

	// base is the parent context of every job.
	base context.Context
}

// NewOrchestrator creates an Orchestrator. The registry must be the one the
// runner releases jobs from.
func NewOrchestrator(
	registry *task.Registry,
	runner *task.Runner,
	fingerprints Fingerprinter,
	connector Connector,
	logger *slog.Logger,
) (*Orchestrator, error) {
	switch {
	case registry == nil:
		return nil, errors.New("study orchestrator: registry cannot be nil")
	case runner == nil:
		return nil, errors.New("study orchestrator: runner cannot be nil")
	case fingerprints == nil:
		return nil, errors.New("study orchestrator: fingerprinter cannot be nil")
	case connector == nil:
		return nil, errors.New("study orchestrator: connector cannot be nil")
	case logger == nil:
		return nil, errors.New("study orchestrator: logger cannot be nil")
	}

	return &Orchestrator{
		registry:     registry,
		runner:       runner,
		fingerprints: fingerprints,
		connector:    connector,
		logger:       logger.With("component", "study_orchestrator"),
		base:         context.Background(),
	}, nil
}

// Start validates req, runs the pre-flight and, when it succeeds, launches the
// traversal in the background. The registry slot for the credential's
// fingerprint is claimed before pre-flight, so of two concurrent starts for
// the same credential one gets ErrDuplicateJob without ever logging in. When
// pre-flight fails the slot is released and nothing stays registered.
//
// ctx bounds the pre-flight only; the job itself runs until it finishes or is
// cancelled through Cancel. A Cancel that lands during pre-flight makes Start
// fail with ErrStartCancelled.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fp := o.fingerprints.Fingerprint(req.Credential.Identity, req.Credential.Secret)
	job := task.NewJob(o.base, fp)
	logger := o.logger.With("fingerprint", fp, "job_id", job.ID())

	if !o.registry.TryInsert(job) {
		logger.Info("rejecting duplicate job")
		job.Cancel()
		return nil, ErrDuplicateJob
	}

	abandon := func() {
		o.registry.Release(job)
		job.Cancel()
	}

	conn, err := o.connector.Connect(req.Credential)
	if err != nil {
		abandon()
		return nil, fmt.Errorf("%w: connect: %v", ErrPlatformUnavailable, err)
	}

	// A Cancel during pre-flight aborts the login and catalog calls too.
	preflightCtx, cancelPreflight := context.WithCancel(ctx)
	stop := context.AfterFunc(job.Context(), cancelPreflight)
	courses, err := Preflight(preflightCtx, conn.Session, req.CourseIDs)
	stop()
	cancelPreflight()

	if job.Context().Err() != nil {
		abandon()
		logger.Info("job cancelled during pre-flight")
		return nil, ErrStartCancelled
	}
	if err != nil {
		abandon()
		logger.Info("pre-flight rejected job", "reason", redact.Error(err))
		return nil, err
	}

	dispatcher := NewDispatcher(conn, logger)
	speed := req.Speed
	o.runner.Go(job, func(ctx context.Context) error {
		summary, err := dispatcher.Run(ctx, courses, speed)
		logger.Info("traversal ended",
			"courses", summary.Courses,
			"videos", summary.Videos,
			"documents", summary.Documents,
			"quizzes", summary.Quizzes,
			"unknown_items", summary.Unknown,
			"skipped_chapters", summary.SkippedChapters)
		return err
	})

	logger.Info("job accepted", "courses", len(courses), "speed", speed)
	return &StartResult{Fingerprint: fp, JobID: job.ID(), Courses: courses}, nil
}

// Cancel signals cancellation to the job running for cred and removes it from
// the registry right away. The job stops at its next cancellation point.
func (o *Orchestrator) Cancel(cred Credential) (string, error) {
	if err := cred.Validate(); err != nil {
		return "", err
	}

	fp := o.fingerprints.Fingerprint(cred.Identity, cred.Secret)
	job := o.registry.Remove(fp)
	if job == nil {
		return "", ErrJobNotFound
	}

	job.Cancel()
	o.logger.Info("job cancellation requested", "fingerprint", fp, "job_id", job.ID())
	return fp, nil
}

// List returns the fingerprints of all registered jobs.
func (o *Orchestrator) List() JobList {
	keys := o.registry.Keys()
	return JobList{Fingerprints: keys, Count: len(keys)}
}
