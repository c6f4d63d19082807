package study

import (
	"errors"
	"fmt"
)

// Sentinel errors for the study orchestrator. Structured errors below match
// them through errors.Is.
var (
	// ErrValidation marks malformed identity, secret, speed or course selection.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication means the platform rejected the credential pair.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNoMatchingCourses means none of the requested course IDs is in the catalog.
	ErrNoMatchingCourses = errors.New("no matching courses selected")

	// ErrDuplicateJob means a job for the same credential pair is already registered.
	ErrDuplicateJob = errors.New("a job for these credentials is already running")

	// ErrJobNotFound means no job is registered for the credential pair.
	ErrJobNotFound = errors.New("no job found for these credentials")

	// ErrPlatformUnavailable means the platform could not be reached or
	// answered a pre-flight request with an error.
	ErrPlatformUnavailable = errors.New("learning platform unavailable")

	// ErrStartCancelled means the job was cancelled while its pre-flight was
	// still running, so it was never launched.
	ErrStartCancelled = errors.New("job cancelled before it started")
)

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthenticationError carries the user-facing reason a login was refused.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// Unwrap returns ErrAuthentication.
func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// ChapterFetchError reports a chapter whose item list could not be fetched.
// The dispatcher logs it and moves on to the next chapter.
type ChapterFetchError struct {
	CourseID  string
	ChapterID string
	Title     string
	Err       error
}

func (e *ChapterFetchError) Error() string {
	return fmt.Sprintf("fetch items of chapter %s (%s) in course %s: %v", e.ChapterID, e.Title, e.CourseID, e.Err)
}

func (e *ChapterFetchError) Unwrap() error { return e.Err }

// JobFatalError ends a job. Stage names the step that failed.
type JobFatalError struct {
	CourseID string
	Stage    string
	Err      error
}

func (e *JobFatalError) Error() string {
	return fmt.Sprintf("%s in course %s: %v", e.Stage, e.CourseID, e.Err)
}

func (e *JobFatalError) Unwrap() error { return e.Err }
