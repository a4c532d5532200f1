package spider

import "sync"

// Target is a discovered page plus the extra data attached by its detail task.
type Target struct {
	URL   string `json:"url"`
	Extra *Extra `json:"extra"`
}

type Extra struct {
	Owner         *string           `json:"owner"`
	LanguageStats map[string]string `json:"language_stats"`
}

func NewTarget(url string) *Target {
	return &Target{URL: url}
}

// SetExtra attaches e in place. It is called once per target, by the
// worker that ran the target's detail task.
func (t *Target) SetExtra(e *Extra) {
	t.Extra = e
}

// EmptyExtra returns an Extra with no owner and no stats.
func EmptyExtra() *Extra {
	return &Extra{LanguageStats: map[string]string{}}
}

// OwnerName returns the owner or "" when absent.
func (e *Extra) OwnerName() string {
	if e == nil || e.Owner == nil {
		return ""
	}
	return *e.Owner
}

// ResultSet collects targets appended concurrently by workers.
type ResultSet struct {
	mu      sync.Mutex
	targets []*Target
}

func NewResultSet() *ResultSet {
	return &ResultSet{targets: make([]*Target, 0, 100)}
}

func (r *ResultSet) Append(targets ...*Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, targets...)
}

func (r *ResultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

// Targets returns a copy of the collected targets in insertion order.
func (r *ResultSet) Targets() []*Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Target, len(r.targets))
	copy(out, r.targets)
	return out
}
