// Package task manages long-running background jobs keyed by an opaque
// identity. The Registry guarantees at most one live job per key; the Runner
// executes a job's body on its own goroutine and releases the job's registry
// slot on every exit path.
package task
