package task

import (
	"sort"
	"sync"
)

// Registry maps keys to live jobs and holds at most one job per key.
// All methods are safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// TryInsert registers job under its key unless a job is already registered
// there. The check and the insert are one atomic step, so of several
// concurrent calls for the same key exactly one returns true.
func (r *Registry) TryInsert(job *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Key()]; exists {
		return false
	}
	r.jobs[job.Key()] = job
	return true
}

// Get returns the job registered under key.
func (r *Registry) Get(key string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	return job, ok
}

// Remove deletes whatever job is registered under key and returns it.
// Removing an absent key is a no-op that returns nil.
func (r *Registry) Remove(key string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	if !ok {
		return nil
	}
	delete(r.jobs, key)
	return job
}

// Release removes job only if it is still the job registered under its key.
// A job that was cancelled and replaced by a newer job for the same key
// therefore never evicts its successor. It reports whether anything was removed.
func (r *Registry) Release(job *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.jobs[job.Key()]
	if !ok || current != job {
		return false
	}
	delete(r.jobs, job.Key())
	return true
}

// Keys returns a sorted snapshot of the registered keys.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.jobs))
	for key := range r.jobs {
		keys = append(keys, key)
	}
	r.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// Jobs returns a snapshot of the registered jobs.
func (r *Registry) Jobs() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
