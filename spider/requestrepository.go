package spider

import "sync"

// FailureRepository tracks tasks whose fetch failed.
type FailureRepository interface {
	// AddFailure records one failed attempt and returns the number of
	// failed attempts so far for this task value. Two tasks with the same
	// URL are counted apart.
	AddFailure(t Task) int
	// MarkDropped records that the task was given up on.
	MarkDropped(t Task)
	DeleteFailures(t Task)
	Dropped() []string
}

type failureHistory struct {
	failures map[Task]int
	dropped  []string
	lock     sync.Mutex
}

func NewFailureRepository() FailureRepository {
	return &failureHistory{failures: make(map[Task]int, 100)}
}

func (r *failureHistory) AddFailure(t Task) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.failures[t]++

	return r.failures[t]
}

func (r *failureHistory) MarkDropped(t Task) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.dropped = append(r.dropped, t.URL())
}

func (r *failureHistory) DeleteFailures(t Task) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.failures, t)
}

// Dropped returns the URLs of dropped tasks in the order they were dropped.
func (r *failureHistory) Dropped() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]string, len(r.dropped))
	copy(out, r.dropped)

	return out
}
