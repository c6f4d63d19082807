package fixture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/study-runner/internal/study"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestPlatform(t *testing.T, timeScale float64) *Platform {
	t.Helper()

	catalog, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)
	p, err := New(catalog, timeScale, discardLogger())
	require.NoError(t, err)
	return p
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	catalog, err := LoadFile("testdata/catalog.yaml")
	require.NoError(t, err)
	assert.Len(t, catalog.Accounts, 2)
	require.Len(t, catalog.Courses, 2)
	assert.Equal(t, "algebra", catalog.Courses[0].ID)
	assert.True(t, catalog.Courses[0].Chapters[1].Broken)
	assert.Equal(t, 90*time.Second, catalog.Courses[0].Chapters[0].Items[0].Duration)

	_, err = LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "courses:\n  - id: a\n    colour: red\n"},
		{"course without id", "courses:\n  - title: a\n"},
		{"duplicate course", "courses:\n  - id: a\n  - id: a\n"},
		{"duplicate chapter", "courses:\n  - id: a\n    chapters:\n      - id: x\n      - id: x\n"},
		{"chapter without id", "courses:\n  - id: a\n    chapters:\n      - title: x\n"},
		{"negative duration", "courses:\n  - id: a\n    chapters:\n      - id: x\n        items:\n          - id: v\n            duration: -1s\n"},
		{"not yaml", "courses: [\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	catalog, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, catalog.Courses)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(nil, 1, discardLogger())
	assert.Error(t, err)

	_, err = New(&Catalog{}, -1, discardLogger())
	assert.Error(t, err)

	p, err := New(&Catalog{}, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, p.logger)
}

func TestSession_Authenticate(t *testing.T) {
	t.Parallel()
	p := loadTestPlatform(t, 0)

	tests := []struct {
		name string
		cred study.Credential
		ok   bool
	}{
		{"valid", study.Credential{Identity: "13800000000", Secret: "secret"}, true},
		{"wrong secret", study.Credential{Identity: "13800000000", Secret: "nope"}, false},
		{"unknown identity", study.Credential{Identity: "13700000000", Secret: "secret"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := p.Connect(tt.cred)
			require.NoError(t, err)

			res, err := conn.Session.Authenticate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.ok, res.OK)
			if !tt.ok {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestSession_Catalog(t *testing.T) {
	t.Parallel()
	p := loadTestPlatform(t, 0)
	conn, err := p.Connect(study.Credential{Identity: "13800000000", Secret: "secret"})
	require.NoError(t, err)
	ctx := context.Background()

	courses, err := conn.Session.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, study.Course{ID: "algebra", ClassID: "k-algebra", CPI: "p-1", Title: "Algebra I"}, courses[0])

	chapters, err := conn.Session.ListChapters(ctx, courses[0])
	require.NoError(t, err)
	require.Len(t, chapters, 3)

	items, info, err := conn.Session.ListWorkItems(ctx, courses[0], chapters[0])
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, study.ItemVideo, items[0].Type)
	assert.Equal(t, "obj-a1-v1", items[0].ObjectID)
	assert.Equal(t, study.ItemDocument, items[1].Type)
	assert.Equal(t, study.ItemContext{"uuid": "a1-uuid"}, info)

	_, _, err = conn.Session.ListWorkItems(ctx, courses[0], chapters[1])
	assert.ErrorIs(t, err, ErrBrokenChapter)

	_, _, err = conn.Session.ListWorkItems(ctx, courses[0], study.Chapter{ID: "zz"})
	assert.Error(t, err)

	_, err = conn.Session.ListChapters(ctx, study.Course{ID: "chemistry"})
	assert.ErrorIs(t, err, ErrUnknownCourse)
}

func TestSession_CancelledContext(t *testing.T) {
	t.Parallel()
	p := loadTestPlatform(t, 0)
	conn, err := p.Connect(study.Credential{Identity: "13800000000", Secret: "secret"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = conn.Session.Authenticate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = conn.Session.ListCourses(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	err = conn.Document.Read(ctx, study.Course{ID: "algebra"}, study.WorkItem{ID: "a1-d1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Play(t *testing.T) {
	t.Parallel()

	t.Run("instant with zero time scale", func(t *testing.T) {
		p := loadTestPlatform(t, 0)
		conn, _ := p.Connect(study.Credential{})

		err := conn.Video.Play(context.Background(), study.Course{}, study.WorkItem{Duration: time.Hour}, nil, 1)
		assert.NoError(t, err)
	})

	t.Run("scaled by speed", func(t *testing.T) {
		// 100ms of media at speed 2 with scale 1 plays for 50ms.
		p := loadTestPlatform(t, 1)
		conn, _ := p.Connect(study.Credential{})

		start := time.Now()
		err := conn.Video.Play(context.Background(), study.Course{}, study.WorkItem{Duration: 100 * time.Millisecond}, nil, 2)
		require.NoError(t, err)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 100*time.Millisecond*10)
	})

	t.Run("cancelled mid-play", func(t *testing.T) {
		p := loadTestPlatform(t, 1)
		conn, _ := p.Connect(study.Credential{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := conn.Video.Play(ctx, study.Course{}, study.WorkItem{Duration: time.Hour}, nil, 1)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func TestDispatcherOverFixture(t *testing.T) {
	t.Parallel()
	p := loadTestPlatform(t, 0)
	conn, err := p.Connect(study.Credential{Identity: "13800000000", Secret: "secret"})
	require.NoError(t, err)
	ctx := context.Background()

	courses, err := study.Preflight(ctx, conn.Session, []string{"biology", "algebra"})
	require.NoError(t, err)

	summary, err := study.NewDispatcher(conn, discardLogger()).Run(ctx, courses, 2)
	require.NoError(t, err)
	assert.Equal(t, study.Summary{
		Courses:         2,
		SkippedChapters: 1,
		Videos:          2,
		Documents:       1,
		Quizzes:         1,
		Unknown:         1,
	}, summary)
}
