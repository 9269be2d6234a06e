package bulksync

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchdeck/models"
)

var ErrJobNotFound = errors.New("sync job not found")

// finishedJobRetention is how long a done or failed job stays available for
// polling before it is evicted from the registry.
const finishedJobRetention = 10 * time.Minute

// JobRegistry tracks in-flight and recently finished sync jobs in memory so
// the HTTP surface can poll progress. Jobs never survive a restart, and
// finished jobs are evicted after a grace period so long-lived processes do
// not accumulate them.
type JobRegistry struct {
	mu       sync.RWMutex
	jobs     map[string]models.SyncJob
	finished map[string]time.Time
	now      func() time.Time
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs:     make(map[string]models.SyncJob),
		finished: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Start registers a new running job and returns its ID.
func (r *JobRegistry) Start(total int) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.evictExpiredLocked()
	r.jobs[id] = models.SyncJob{
		ID:        id,
		Total:     total,
		State:     models.SyncJobStateRunning,
		StartedAt: r.now().UTC(),
	}
	r.mu.Unlock()

	return id
}

// Progress records the latest monotone progress value for a job.
func (r *JobRegistry) Progress(id string, current int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	if current > job.Current {
		job.Current = current
	}
	r.jobs[id] = job
}

// Finish records the job outcome and schedules the job for eviction.
func (r *JobRegistry) Finish(id string, result Result, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.Succeeded = result.Succeeded
	job.Failed = result.Failed
	job.State = models.SyncJobStateDone
	if failed {
		job.State = models.SyncJobStateFailed
	}
	r.jobs[id] = job
	r.finished[id] = r.now()

	r.evictExpiredLocked()
}

// Get returns a snapshot of the job.
func (r *JobRegistry) Get(id string) (models.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpiredLocked()

	job, ok := r.jobs[id]
	if !ok {
		return models.SyncJob{}, ErrJobNotFound
	}
	return job, nil
}

func (r *JobRegistry) evictExpiredLocked() {
	cutoff := r.now().Add(-finishedJobRetention)
	for id, finishedAt := range r.finished {
		if finishedAt.Before(cutoff) {
			delete(r.jobs, id)
			delete(r.finished, id)
		}
	}
}
