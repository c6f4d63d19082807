package study

import (
	"context"
	"fmt"
)

// defaultAuthReason is reported when the platform refuses a login without
// saying why.
const defaultAuthReason = "account login failed"

// Preflight authenticates session and returns the catalog courses whose IDs
// appear in requested, in catalog order. It fails with an *AuthenticationError
// when the login is refused and with ErrNoMatchingCourses when the selection
// does not overlap the catalog.
func Preflight(ctx context.Context, session Session, requested []string) ([]Course, error) {
	auth, err := session.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: login: %v", ErrPlatformUnavailable, err)
	}
	if !auth.OK {
		reason := auth.Reason
		if reason == "" {
			reason = defaultAuthReason
		}
		return nil, &AuthenticationError{Reason: reason}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog, err := session.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list courses: %v", ErrPlatformUnavailable, err)
	}

	wanted := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		wanted[id] = struct{}{}
	}

	selected := make([]Course, 0, len(requested))
	for _, course := range catalog {
		if _, ok := wanted[course.ID]; ok {
			selected = append(selected, course)
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoMatchingCourses
	}
	return selected, nil
}
