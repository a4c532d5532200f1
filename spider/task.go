package spider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Fetcher downloads a page body. Implementations are shared by all workers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Kind int

const (
	KindSearch Kind = iota
	KindDetail
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindDetail:
		return "detail"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Task is implemented by *SearchTask and *DetailTask only.
type Task interface {
	Kind() Kind
	URL() string
	Unique() string
	task()
}

// SearchTask fetches a results page and discovers targets on it.
type SearchTask struct {
	url       string
	links     LinkRule
	extraRule ExtraRule
}

// NewSearchTask builds a search task for url. Targets it discovers are
// enriched by detail tasks using extraRule.
func NewSearchTask(url string, links LinkRule, extraRule ExtraRule) *SearchTask {
	return &SearchTask{url: url, links: links, extraRule: extraRule}
}

func (t *SearchTask) Kind() Kind     { return KindSearch }
func (t *SearchTask) URL() string    { return t.url }
func (t *SearchTask) Unique() string { return unique(t) }
func (t *SearchTask) task()          {}

// Do fetches the page and returns the discovered targets.
// Without a fetcher nothing is fetched and no targets are returned.
func (t *SearchTask) Do(ctx context.Context, f Fetcher) ([]*Target, error) {
	if f == nil {
		return nil, nil
	}

	body, err := f.Fetch(ctx, t.url)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", t.url, err)
	}

	return t.links.ParseLinks(body), nil
}

// Follow returns the detail task enriching target.
func (t *SearchTask) Follow(target *Target) *DetailTask {
	return NewDetailTask(target, t.extraRule)
}

// DetailTask fetches one target's page and extracts its extra data.
type DetailTask struct {
	Target *Target
	rule   ExtraRule
}

func NewDetailTask(target *Target, rule ExtraRule) *DetailTask {
	return &DetailTask{Target: target, rule: rule}
}

func (t *DetailTask) Kind() Kind     { return KindDetail }
func (t *DetailTask) URL() string    { return t.Target.URL }
func (t *DetailTask) Unique() string { return unique(t) }
func (t *DetailTask) task()          {}

// Do fetches the target page and returns its extra data.
// Without a fetcher nothing is fetched and the result is nil.
func (t *DetailTask) Do(ctx context.Context, f Fetcher) (*Extra, error) {
	if f == nil {
		return nil, nil
	}

	body, err := f.Fetch(ctx, t.Target.URL)
	if err != nil {
		return nil, fmt.Errorf("detail %s: %w", t.Target.URL, err)
	}

	e := t.rule.ParseExtra(body)
	if e == nil {
		e = EmptyExtra()
	}

	return e, nil
}

func unique(t Task) string {
	block := md5.Sum([]byte(t.Kind().String() + t.URL()))

	return hex.EncodeToString(block[:])
}
