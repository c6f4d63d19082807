package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/study-runner/internal/api/shared"
	"github.com/phrazzld/study-runner/internal/events"
	"github.com/phrazzld/study-runner/internal/platform/logger"
	"github.com/phrazzld/study-runner/internal/study"
)

// StudyService is the orchestrator surface the handlers need.
type StudyService interface {
	Start(ctx context.Context, req study.StartRequest) (*study.StartResult, error)
	Cancel(cred study.Credential) (string, error)
	List() study.JobList
}

// OutcomeHistory provides recently finished jobs, newest first.
type OutcomeHistory interface {
	Recent() []events.JobEvent
}

// StudyHandler handles the study job endpoints.
type StudyHandler struct {
	service StudyService
	history OutcomeHistory
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(service StudyService, history OutcomeHistory) (*StudyHandler, error) {
	if service == nil {
		return nil, errors.New("study service cannot be nil")
	}
	if history == nil {
		return nil, errors.New("outcome history cannot be nil")
	}
	return &StudyHandler{service: service, history: history}, nil
}

// StartStudy handles POST /api/start-study.
func (h *StudyHandler) StartStudy(w http.ResponseWriter, r *http.Request) {
	var req StartStudyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.service.Start(r.Context(), req.toStudy())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start study job")
		return
	}

	logger.FromContextOrDefault(r.Context(), slog.Default()).Info("study job started",
		"fingerprint", result.Fingerprint,
		"job_id", result.JobID,
		"courses", len(result.Courses))

	shared.RespondWithJSON(w, r, http.StatusAccepted, DetailResponse{
		Detail: "background job started",
		Task:   result.Fingerprint,
	})
}

// CancelStudy handles POST /api/cancel-study.
func (h *StudyHandler) CancelStudy(w http.ResponseWriter, r *http.Request) {
	var req CancelStudyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.service.Cancel(req.credential()); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel study job")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DetailResponse{Detail: "background job cancelled"})
}

// ListStudyTasks handles GET /api/study-tasks.
func (h *StudyHandler) ListStudyTasks(w http.ResponseWriter, r *http.Request) {
	list := h.service.List()
	tasks := list.Fingerprints
	if tasks == nil {
		tasks = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StudyTasksResponse{Tasks: tasks, Count: list.Count})
}

// History handles GET /api/study-tasks/history.
func (h *StudyHandler) History(w http.ResponseWriter, r *http.Request) {
	recent := h.history.Recent()
	resp := HistoryResponse{Events: make([]JobOutcomeResponse, 0, len(recent))}
	for _, e := range recent {
		resp.Events = append(resp.Events, outcomeToResponse(e))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
