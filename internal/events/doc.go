// Package events publishes background job lifecycle events. The runner emits
// one event when a job starts and one when it reaches a terminal state; handlers
// such as Recorder subscribe through an EventEmitter without the runner knowing
// who listens.
package events
