package study

import "context"

// Session is an authenticated conversation with the learning platform for one
// credential. Implementations need not be safe for concurrent use; a job uses
// its session from a single goroutine.
type Session interface {
	Authenticate(ctx context.Context) (AuthResult, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListChapters(ctx context.Context, course Course) ([]Chapter, error)
	ListWorkItems(ctx context.Context, course Course, chapter Chapter) ([]WorkItem, ItemContext, error)
}

// VideoPlayer plays a video item to completion. Play takes roughly the
// video's length divided by speed and should return ctx.Err() promptly once
// ctx is cancelled.
type VideoPlayer interface {
	Play(ctx context.Context, course Course, item WorkItem, info ItemContext, speed int) error
}

// DocumentReader marks a document item as read.
type DocumentReader interface {
	Read(ctx context.Context, course Course, item WorkItem) error
}

// Connection bundles the collaborators bound to one credential.
type Connection struct {
	Session  Session
	Video    VideoPlayer
	Document DocumentReader
}

// Connector opens platform connections.
type Connector interface {
	Connect(cred Credential) (*Connection, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(cred Credential) (*Connection, error)

// Connect implements Connector.
func (f ConnectorFunc) Connect(cred Credential) (*Connection, error) {
	return f(cred)
}
