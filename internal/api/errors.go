package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/study-runner/internal/api/shared"
	"github.com/phrazzld/study-runner/internal/study"
)

// MapErrorToStatusCode maps orchestrator errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, study.ErrValidation), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, study.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, study.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, study.ErrDuplicateJob), errors.Is(err, study.ErrStartCancelled):
		return http.StatusConflict
	case errors.Is(err, study.ErrNoMatchingCourses):
		return http.StatusUnprocessableEntity
	case errors.Is(err, study.ErrPlatformUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err. It never
// includes credentials or upstream error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verr  *study.ValidationError
		aerr  *study.AuthenticationError
		verrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.As(err, &aerr):
		if aerr.Reason != "" {
			return aerr.Reason
		}
		return "Account login failed"
	case errors.Is(err, study.ErrJobNotFound):
		return "No running job for these credentials"
	case errors.Is(err, study.ErrDuplicateJob):
		return "A job for these credentials is already running"
	case errors.Is(err, study.ErrStartCancelled):
		return "Job was cancelled before it started"
	case errors.Is(err, study.ErrNoMatchingCourses):
		return "None of the selected courses is available"
	case errors.Is(err, study.ErrPlatformUnavailable):
		return "Learning platform unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns struct validation errors into a message
// naming the first offending JSON field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// jsonFieldName maps request struct fields to their JSON names, keeping any
// element index such as "[1]".
func jsonFieldName(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		return jsonFieldName(field[:i]) + field[i:]
	}

	switch field {
	case "Username":
		return "username"
	case "Password":
		return "password"
	case "CourseList":
		return "course_list"
	case "Speed":
		return "speed"
	default:
		return field
	}
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "cnphone":
		return "must be an 11 digit mobile number"
	case "min":
		return "too small"
	case "max":
		return "too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. defaultMsg replaces the
// safe message for unmapped errors when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
