package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/study-runner/internal/api/shared"
	"github.com/phrazzld/study-runner/internal/events"
	"github.com/phrazzld/study-runner/internal/study"
)

// MockStudyService is a mock implementation of StudyService for testing.
type MockStudyService struct {
	StartFn  func(ctx context.Context, req study.StartRequest) (*study.StartResult, error)
	CancelFn func(cred study.Credential) (string, error)
	ListFn   func() study.JobList
}

// Start implements StudyService.
func (m *MockStudyService) Start(ctx context.Context, req study.StartRequest) (*study.StartResult, error) {
	if m.StartFn != nil {
		return m.StartFn(ctx, req)
	}
	return &study.StartResult{}, nil
}

// Cancel implements StudyService.
func (m *MockStudyService) Cancel(cred study.Credential) (string, error) {
	if m.CancelFn != nil {
		return m.CancelFn(cred)
	}
	return "", nil
}

// List implements StudyService.
func (m *MockStudyService) List() study.JobList {
	if m.ListFn != nil {
		return m.ListFn()
	}
	return study.JobList{}
}

type staticHistory []events.JobEvent

func (h staticHistory) Recent() []events.JobEvent { return h }

func newTestHandler(t *testing.T, svc *MockStudyService, history OutcomeHistory) *StudyHandler {
	t.Helper()

	if history == nil {
		history = staticHistory(nil)
	}
	h, err := NewStudyHandler(svc, history)
	require.NoError(t, err)
	return h
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/test", &buf)
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-1"))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewStudyHandler(t *testing.T) {
	_, err := NewStudyHandler(nil, staticHistory(nil))
	assert.Error(t, err)

	_, err = NewStudyHandler(&MockStudyService{}, nil)
	assert.Error(t, err)
}

func TestStudyHandler_StartStudy(t *testing.T) {
	valid := map[string]interface{}{
		"username":    "13800000000",
		"password":    "pw",
		"course_list": []string{"c1", "c2"},
		"speed":       2,
	}

	tests := []struct {
		name       string
		body       interface{}
		startErr   error
		wantStatus int
		wantError  string
	}{
		{name: "accepted", body: valid, wantStatus: http.StatusAccepted},
		{
			name:       "malformed json",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "bad identity",
			body:       map[string]interface{}{"username": "12345", "password": "pw", "course_list": []string{"c1"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid username: must be an 11 digit mobile number",
		},
		{
			name:       "missing password",
			body:       map[string]interface{}{"username": "13800000000", "course_list": []string{"c1"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid password: required field",
		},
		{
			name:       "empty course list",
			body:       map[string]interface{}{"username": "13800000000", "password": "pw", "course_list": []string{}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid course_list: too small",
		},
		{
			name:       "speed out of range",
			body:       map[string]interface{}{"username": "13800000000", "password": "pw", "course_list": []string{"c1"}, "speed": 3},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid speed: too large",
		},
		{
			name:       "duplicate",
			body:       valid,
			startErr:   study.ErrDuplicateJob,
			wantStatus: http.StatusConflict,
			wantError:  "A job for these credentials is already running",
		},
		{
			name:       "auth failure carries reason",
			body:       valid,
			startErr:   &study.AuthenticationError{Reason: "wrong password"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "wrong password",
		},
		{
			name:       "no matching courses",
			body:       valid,
			startErr:   study.ErrNoMatchingCourses,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "None of the selected courses is available",
		},
		{
			name:       "platform down",
			body:       valid,
			startErr:   fmt.Errorf("%w: dial tcp: refused", study.ErrPlatformUnavailable),
			wantStatus: http.StatusBadGateway,
			wantError:  "Learning platform unavailable",
		},
		{
			name:       "unexpected",
			body:       valid,
			startErr:   errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to start study job",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got study.StartRequest
			calls := 0
			svc := &MockStudyService{
				StartFn: func(_ context.Context, req study.StartRequest) (*study.StartResult, error) {
					calls++
					got = req
					if tc.startErr != nil {
						return nil, tc.startErr
					}
					return &study.StartResult{Fingerprint: "fp-1", JobID: uuid.New()}, nil
				},
			}

			w := postJSON(t, newTestHandler(t, svc, nil).StartStudy, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)

			if tc.wantError != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tc.wantError, resp.Error)
				assert.Equal(t, "trace-1", resp.TraceID)
				assert.NotContains(t, w.Body.String(), "pw")
				return
			}

			var resp DetailResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, DetailResponse{Detail: "background job started", Task: "fp-1"}, resp)
			assert.Equal(t, 1, calls)
			assert.Equal(t, study.StartRequest{
				Credential: study.Credential{Identity: "13800000000", Secret: "pw"},
				CourseIDs:  []string{"c1", "c2"},
				Speed:      2,
			}, got)
		})
	}
}

func TestStudyHandler_StartStudyDefaultSpeed(t *testing.T) {
	var got study.StartRequest
	svc := &MockStudyService{
		StartFn: func(_ context.Context, req study.StartRequest) (*study.StartResult, error) {
			got = req
			return &study.StartResult{Fingerprint: "fp"}, nil
		},
	}

	w := postJSON(t, newTestHandler(t, svc, nil).StartStudy, map[string]interface{}{
		"username":    "13800000000",
		"password":    "pw",
		"course_list": []string{"c1"},
	})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, DefaultSpeed, got.Speed)
}

func TestStudyHandler_CancelStudy(t *testing.T) {
	valid := map[string]string{"username": "13800000000", "password": "pw"}

	tests := []struct {
		name       string
		body       interface{}
		cancelErr  error
		wantStatus int
		wantError  string
	}{
		{name: "cancelled", body: valid, wantStatus: http.StatusOK},
		{
			name:       "not found",
			body:       valid,
			cancelErr:  study.ErrJobNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "No running job for these credentials",
		},
		{
			name:       "bad identity",
			body:       map[string]string{"username": "1", "password": "pw"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid username: must be an 11 digit mobile number",
		},
		{
			name:       "malformed json",
			body:       "nope",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got study.Credential
			svc := &MockStudyService{
				CancelFn: func(cred study.Credential) (string, error) {
					got = cred
					return "fp-1", tc.cancelErr
				},
			}

			w := postJSON(t, newTestHandler(t, svc, nil).CancelStudy, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)

			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, decodeError(t, w).Error)
				return
			}
			assert.JSONEq(t, `{"detail":"background job cancelled"}`, w.Body.String())
			assert.Equal(t, study.Credential{Identity: "13800000000", Secret: "pw"}, got)
		})
	}
}

func TestStudyHandler_ListStudyTasks(t *testing.T) {
	tests := []struct {
		name string
		list study.JobList
		want string
	}{
		{"empty", study.JobList{}, `{"tasks":[],"count":0}`},
		{"two jobs", study.JobList{Fingerprints: []string{"a", "b"}, Count: 2}, `{"tasks":["a","b"],"count":2}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockStudyService{ListFn: func() study.JobList { return tc.list }}

			w := httptest.NewRecorder()
			newTestHandler(t, svc, nil).ListStudyTasks(w, httptest.NewRequest(http.MethodGet, "/api/study-tasks", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}

func TestStudyHandler_History(t *testing.T) {
	finished := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	jobID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	history := staticHistory{
		{JobID: jobID, Fingerprint: "fp-2", Type: events.JobFailed, Error: "list chapters failed", CreatedAt: finished},
		{JobID: jobID, Fingerprint: "fp-1", Type: events.JobCompleted, CreatedAt: finished},
	}

	w := httptest.NewRecorder()
	newTestHandler(t, &MockStudyService{}, history).History(w, httptest.NewRequest(http.MethodGet, "/api/study-tasks/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, JobOutcomeResponse{
		JobID:      jobID.String(),
		Task:       "fp-2",
		Outcome:    "failed",
		Error:      "list chapters failed",
		FinishedAt: finished,
	}, resp.Events[0])
	assert.Equal(t, "completed", resp.Events[1].Outcome)
}

func TestStudyHandler_HistoryEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(t, &MockStudyService{}, nil).History(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.JSONEq(t, `{"events":[]}`, w.Body.String())
}
