// Package study drives per-credential course automation jobs.
//
// An Orchestrator accepts a credential pair and a course selection, runs a
// synchronous pre-flight (login, catalog match) so invalid requests fail in
// the caller's request, and then hands the traversal to a Dispatcher running
// as a background task.Job. The dispatcher walks courses, chapters and work
// items strictly in order, one item at a time, and checks for cancellation
// before every course, chapter and item.
//
// The learning platform itself is reached only through the Session,
// VideoPlayer and DocumentReader interfaces.
package study
