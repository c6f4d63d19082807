package study

import (
	"context"
	"log/slog"

	"github.com/phrazzld/study-runner/internal/redact"
)

// Summary counts what one traversal did.
type Summary struct {
	Courses         int
	SkippedChapters int
	Videos          int
	Documents       int
	Quizzes         int
	Unknown         int
}

// Dispatcher walks a selected set of courses and hands every work item to the
// handler for its type. It is the body of a study job.
type Dispatcher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher using conn's collaborators.
func NewDispatcher(conn *Connection, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{conn: conn, logger: logger}
}

// Run traverses courses in order. A chapter whose item list cannot be fetched
// is logged and skipped; any other failure ends the traversal with a
// *JobFatalError. Cancellation is checked before each course, chapter and
// item; once observed, Run returns ctx.Err() without further dispatches.
func (d *Dispatcher) Run(ctx context.Context, courses []Course, speed int) (Summary, error) {
	var summary Summary

	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		logger := d.logger.With("course_id", course.ID, "course_title", course.Title)

		chapters, err := d.conn.Session.ListChapters(ctx, course)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			return summary, &JobFatalError{CourseID: course.ID, Stage: "list chapters", Err: err}
		}
		summary.Courses++

		for _, chapter := range chapters {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			items, info, err := d.conn.Session.ListWorkItems(ctx, course, chapter)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return summary, ctxErr
				}
				fetchErr := &ChapterFetchError{CourseID: course.ID, ChapterID: chapter.ID, Title: chapter.Title, Err: err}
				logger.Warn("skipping chapter",
					"chapter_id", chapter.ID,
					"chapter_title", chapter.Title,
					"error", redact.Error(fetchErr))
				summary.SkippedChapters++
				continue
			}

			// Chapters without content are normal.
			if len(items) == 0 {
				continue
			}

			for _, item := range items {
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				if err := d.dispatch(ctx, logger, course, item, info, speed, &summary); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return summary, ctxErr
					}
					return summary, &JobFatalError{CourseID: course.ID, Stage: item.Type.String() + " " + item.ID, Err: err}
				}
			}
		}
	}

	return summary, nil
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	logger *slog.Logger,
	course Course,
	item WorkItem,
	info ItemContext,
	speed int,
	summary *Summary,
) error {
	switch item.Type {
	case ItemVideo:
		logger.Debug("dispatching video item", "item_id", item.ID, "item_title", item.Title, "speed", speed)
		summary.Videos++
		return d.conn.Video.Play(ctx, course, item, info, speed)

	case ItemDocument:
		logger.Debug("dispatching document item", "item_id", item.ID, "item_title", item.Title)
		summary.Documents++
		return d.conn.Document.Read(ctx, course, item)

	case ItemQuiz:
		// Quizzes are recognized but not answered.
		logger.Debug("skipping quiz item", "item_id", item.ID)
		summary.Quizzes++
		return nil

	default:
		summary.Unknown++
		return nil
	}
}
