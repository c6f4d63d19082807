package api

import (
	"time"

	"github.com/phrazzld/study-runner/internal/events"
	"github.com/phrazzld/study-runner/internal/study"
)

// DefaultSpeed is the playback speed used when a start request omits it.
const DefaultSpeed = 1

// StartStudyRequest defines the payload for the start-study endpoint.
type StartStudyRequest struct {
	Username   string   `json:"username"    validate:"required,cnphone"`
	Password   string   `json:"password"    validate:"required"`
	CourseList []string `json:"course_list" validate:"required,min=1,dive,required"`
	Speed      *int     `json:"speed"       validate:"omitempty,min=1,max=2"`
}

// toStudy converts the request to the orchestrator's input, applying the
// default speed.
func (r StartStudyRequest) toStudy() study.StartRequest {
	speed := DefaultSpeed
	if r.Speed != nil {
		speed = *r.Speed
	}
	return study.StartRequest{
		Credential: study.Credential{Identity: r.Username, Secret: r.Password},
		CourseIDs:  r.CourseList,
		Speed:      speed,
	}
}

// CancelStudyRequest defines the payload for the cancel-study endpoint.
type CancelStudyRequest struct {
	Username string `json:"username" validate:"required,cnphone"`
	Password string `json:"password" validate:"required"`
}

func (r CancelStudyRequest) credential() study.Credential {
	return study.Credential{Identity: r.Username, Secret: r.Password}
}

// DetailResponse acknowledges a start or cancel request.
type DetailResponse struct {
	Detail string `json:"detail"`
	// Task is the fingerprint of the started job.
	Task string `json:"task,omitempty"`
}

// StudyTasksResponse lists the fingerprints of running jobs.
type StudyTasksResponse struct {
	Tasks []string `json:"tasks"`
	Count int      `json:"count"`
}

// JobOutcomeResponse describes one finished job.
type JobOutcomeResponse struct {
	JobID      string    `json:"job_id"`
	Task       string    `json:"task"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// HistoryResponse lists recently finished jobs, newest first.
type HistoryResponse struct {
	Events []JobOutcomeResponse `json:"events"`
}

func outcomeToResponse(e events.JobEvent) JobOutcomeResponse {
	return JobOutcomeResponse{
		JobID:      e.JobID.String(),
		Task:       e.Fingerprint,
		Outcome:    string(e.Type),
		Error:      e.Error,
		FinishedAt: e.CreatedAt,
	}
}
