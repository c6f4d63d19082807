package study

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// MockSession is a function-field implementation of Session.
type MockSession struct {
	AuthenticateFn  func(ctx context.Context) (AuthResult, error)
	ListCoursesFn   func(ctx context.Context) ([]Course, error)
	ListChaptersFn  func(ctx context.Context, course Course) ([]Chapter, error)
	ListWorkItemsFn func(ctx context.Context, course Course, chapter Chapter) ([]WorkItem, ItemContext, error)

	mu        sync.Mutex
	authCalls int
	itemCalls []string
}

// Authenticate implements Session.
func (m *MockSession) Authenticate(ctx context.Context) (AuthResult, error) {
	m.mu.Lock()
	m.authCalls++
	m.mu.Unlock()
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx)
	}
	return AuthResult{OK: true}, nil
}

// ListCourses implements Session.
func (m *MockSession) ListCourses(ctx context.Context) ([]Course, error) {
	if m.ListCoursesFn != nil {
		return m.ListCoursesFn(ctx)
	}
	return nil, nil
}

// ListChapters implements Session.
func (m *MockSession) ListChapters(ctx context.Context, course Course) ([]Chapter, error) {
	if m.ListChaptersFn != nil {
		return m.ListChaptersFn(ctx, course)
	}
	return nil, nil
}

// ListWorkItems implements Session.
func (m *MockSession) ListWorkItems(ctx context.Context, course Course, chapter Chapter) ([]WorkItem, ItemContext, error) {
	m.mu.Lock()
	m.itemCalls = append(m.itemCalls, chapter.ID)
	m.mu.Unlock()
	if m.ListWorkItemsFn != nil {
		return m.ListWorkItemsFn(ctx, course, chapter)
	}
	return nil, nil, nil
}

func (m *MockSession) authCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authCalls
}

func (m *MockSession) fetchedChapters() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.itemCalls...)
}

// recordingHandlers implements VideoPlayer and DocumentReader, remembering
// every item it was handed in order.
type recordingHandlers struct {
	PlayFn func(ctx context.Context, course Course, item WorkItem, info ItemContext, speed int) error
	ReadFn func(ctx context.Context, course Course, item WorkItem) error

	mu     sync.Mutex
	seen   []string
	speeds []int
}

func (h *recordingHandlers) Play(ctx context.Context, course Course, item WorkItem, info ItemContext, speed int) error {
	h.mu.Lock()
	h.seen = append(h.seen, "video:"+item.ID)
	h.speeds = append(h.speeds, speed)
	h.mu.Unlock()
	if h.PlayFn != nil {
		return h.PlayFn(ctx, course, item, info, speed)
	}
	return nil
}

func (h *recordingHandlers) Read(ctx context.Context, course Course, item WorkItem) error {
	h.mu.Lock()
	h.seen = append(h.seen, "document:"+item.ID)
	h.mu.Unlock()
	if h.ReadFn != nil {
		return h.ReadFn(ctx, course, item)
	}
	return nil
}

func (h *recordingHandlers) items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func newConnection(session *MockSession, handlers *recordingHandlers) *Connection {
	return &Connection{Session: session, Video: handlers, Document: handlers}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
