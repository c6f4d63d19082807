package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/study-runner/internal/study"
)

// ErrBrokenChapter is returned when listing the items of a chapter marked
// broken in the catalog.
var ErrBrokenChapter = errors.New("chapter content unavailable")

// ErrUnknownCourse is returned for course ids missing from the catalog.
var ErrUnknownCourse = errors.New("unknown course")

// Platform serves a Catalog through the study collaborator contracts.
type Platform struct {
	catalog   *Catalog
	timeScale float64
	logger    *slog.Logger
}

// New creates a Platform. Video playback takes duration/speed*timeScale of
// wall-clock time; a zero timeScale makes playback instant.
func New(catalog *Catalog, timeScale float64, logger *slog.Logger) (*Platform, error) {
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if timeScale < 0 {
		return nil, fmt.Errorf("time scale must not be negative, got %v", timeScale)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Platform{
		catalog:   catalog,
		timeScale: timeScale,
		logger:    logger.With("component", "fixture_platform"),
	}, nil
}

// Connect implements study.Connector.
func (p *Platform) Connect(cred study.Credential) (*study.Connection, error) {
	s := &session{platform: p, cred: cred}
	return &study.Connection{Session: s, Video: s, Document: s}, nil
}

type session struct {
	platform *Platform
	cred     study.Credential
}

func (s *session) Authenticate(ctx context.Context) (study.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return study.AuthResult{}, err
	}
	secret, ok := s.platform.catalog.Accounts[s.cred.Identity]
	if !ok || secret != s.cred.Secret {
		return study.AuthResult{OK: false, Reason: "wrong username or password"}, nil
	}
	return study.AuthResult{OK: true}, nil
}

func (s *session) ListCourses(ctx context.Context) ([]study.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	courses := make([]study.Course, 0, len(s.platform.catalog.Courses))
	for _, c := range s.platform.catalog.Courses {
		courses = append(courses, study.Course{ID: c.ID, ClassID: c.ClassID, CPI: c.CPI, Title: c.Title})
	}
	return courses, nil
}

func (s *session) ListChapters(ctx context.Context, course study.Course) ([]study.Chapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spec, ok := s.platform.catalog.course(course.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, course.ID)
	}

	chapters := make([]study.Chapter, 0, len(spec.Chapters))
	for _, ch := range spec.Chapters {
		chapters = append(chapters, study.Chapter{ID: ch.ID, Title: ch.Title})
	}
	return chapters, nil
}

func (s *session) ListWorkItems(
	ctx context.Context,
	course study.Course,
	chapter study.Chapter,
) ([]study.WorkItem, study.ItemContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	spec, ok := s.platform.catalog.course(course.ID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCourse, course.ID)
	}

	for _, ch := range spec.Chapters {
		if ch.ID != chapter.ID {
			continue
		}
		if ch.Broken {
			return nil, nil, fmt.Errorf("%w: %s", ErrBrokenChapter, ch.ID)
		}

		items := make([]study.WorkItem, 0, len(ch.Items))
		for _, it := range ch.Items {
			items = append(items, study.WorkItem{
				ID:       it.ID,
				Type:     study.ParseItemType(it.Type),
				Title:    it.Title,
				ObjectID: it.ObjectID,
				Duration: it.Duration,
			})
		}
		info := make(study.ItemContext, len(ch.Info))
		for k, v := range ch.Info {
			info[k] = v
		}
		return items, info, nil
	}
	return nil, nil, fmt.Errorf("unknown chapter %q in course %q", chapter.ID, course.ID)
}

func (s *session) Play(
	ctx context.Context,
	course study.Course,
	item study.WorkItem,
	_ study.ItemContext,
	speed int,
) error {
	if speed < 1 {
		speed = 1
	}
	wall := time.Duration(float64(item.Duration) / float64(speed) * s.platform.timeScale)

	s.platform.logger.Debug("playing video",
		"course_id", course.ID,
		"item_id", item.ID,
		"wall_time", wall)

	if wall <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wall)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *session) Read(ctx context.Context, course study.Course, item study.WorkItem) error {
	s.platform.logger.Debug("reading document", "course_id", course.ID, "item_id", item.ID)
	return ctx.Err()
}
