// Package api is the HTTP layer of the study runner. It decodes and
// validates JSON requests, calls the study orchestrator and maps its errors
// to status codes without leaking credentials or internal details.
package api
