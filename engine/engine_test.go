package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dreamerjackson/ghcrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves pages from memory. fails[url] is the number of
// attempts that fail before the page is served.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fails map[string]int
	delay map[string]time.Duration
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: map[string]string{},
		fails: map[string]int{},
		delay: map[string]time.Duration{},
		calls: map[string]int{},
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.pages[url]
	d := f.delay[url]
	failing := f.fails[url] > 0
	if failing {
		f.fails[url]--
	}
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failing || !ok {
		return nil, errors.New("proxy refused connection")
	}

	return []byte(body), nil
}

func (f *stubFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

var fieldLinks = spider.LinkRuleFunc(func(body []byte) []*spider.Target {
	var out []*spider.Target
	for _, u := range strings.Fields(string(body)) {
		out = append(out, spider.NewTarget(u))
	}
	return out
})

var ownerIsBody = spider.ExtraRuleFunc(func(body []byte) *spider.Extra {
	owner := string(body)
	return &spider.Extra{Owner: &owner, LanguageStats: map[string]string{}}
})

// site registers keywords search pages, each listing perPage detail pages.
func site(f *stubFetcher, keywords, perPage int) []spider.Task {
	var seeds []spider.Task
	for k := 0; k < keywords; k++ {
		searchURL := fmt.Sprintf("https://github.com/search?q=k%d", k)
		var links []string
		for i := 0; i < perPage; i++ {
			u := fmt.Sprintf("https://github.com/k%d/repo%d", k, i)
			links = append(links, u)
			f.pages[u] = fmt.Sprintf("owner-k%d-%d", k, i)
		}
		f.pages[searchURL] = strings.Join(links, " ")
		seeds = append(seeds, spider.NewSearchTask(searchURL, fieldLinks, ownerIsBody))
	}
	return seeds
}

func TestEngineDrain(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		keywords  int
		perPage   int
		wantTotal int
	}{
		{name: "single worker", workers: 1, keywords: 3, perPage: 4, wantTotal: 12},
		{name: "default pool", workers: DefaultWorkCount, keywords: 3, perPage: 10, wantTotal: 30},
		{name: "more workers than tasks", workers: 64, keywords: 1, perPage: 2, wantTotal: 2},
		{name: "empty search pages", workers: 4, keywords: 5, perPage: 0, wantTotal: 0},
		{name: "no keywords", workers: 4, keywords: 0, perPage: 3, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStubFetcher()
			seeds := site(f, tt.keywords, tt.perPage)

			e := New(WithFetcher(f), WithWorkCount(tt.workers))
			require.NoError(t, e.Run(context.Background(), seeds...))

			targets := e.Results().Targets()
			assert.Len(t, targets, tt.wantTotal)
			for _, target := range targets {
				require.NotNil(t, target.Extra, target.URL)
				assert.Equal(t, f.pages[target.URL], target.Extra.OwnerName())
			}
			assert.Empty(t, e.Failures().Dropped())
		})
	}
}

// A slow search page leaves every other worker looking at an empty queue
// while the detail tasks are still to come.
func TestEngineDrainWaitsForInflightSearch(t *testing.T) {
	f := newStubFetcher()
	seeds := site(f, 1, 25)
	f.delay["https://github.com/search?q=k0"] = 100 * time.Millisecond

	e := New(WithFetcher(f), WithWorkCount(16))
	require.NoError(t, e.Run(context.Background(), seeds...))

	targets := e.Results().Targets()
	require.Len(t, targets, 25)
	for _, target := range targets {
		assert.NotNil(t, target.Extra, target.URL)
	}
}

func TestEngineDropsFailedTask(t *testing.T) {
	f := newStubFetcher()
	seeds := site(f, 1, 3)
	f.fails["https://github.com/k0/repo1"] = 1

	e := New(WithFetcher(f), WithWorkCount(4))
	require.NoError(t, e.Run(context.Background(), seeds...))

	targets := e.Results().Targets()
	require.Len(t, targets, 3)
	for _, target := range targets {
		if target.URL == "https://github.com/k0/repo1" {
			assert.Nil(t, target.Extra)
			continue
		}
		assert.NotNil(t, target.Extra)
	}
	assert.Equal(t, []string{"https://github.com/k0/repo1"}, e.Failures().Dropped())
	assert.Equal(t, 1, f.Calls("https://github.com/k0/repo1"))
}

func TestEngineDropsFailedSearch(t *testing.T) {
	f := newStubFetcher()
	seeds := site(f, 2, 2)
	f.fails["https://github.com/search?q=k1"] = 5

	e := New(WithFetcher(f), WithWorkCount(4), WithMaxRetries(2))
	require.NoError(t, e.Run(context.Background(), seeds...))

	assert.Len(t, e.Results().Targets(), 2)
	assert.Equal(t, []string{"https://github.com/search?q=k1"}, e.Failures().Dropped())
	assert.Equal(t, 3, f.Calls("https://github.com/search?q=k1"))
}

func TestEngineRetriesFailedTask(t *testing.T) {
	f := newStubFetcher()
	seeds := site(f, 2, 3)
	f.fails["https://github.com/search?q=k0"] = 1
	f.fails["https://github.com/k1/repo2"] = 1

	e := New(WithFetcher(f), WithWorkCount(4), WithMaxRetries(1))
	require.NoError(t, e.Run(context.Background(), seeds...))

	targets := e.Results().Targets()
	require.Len(t, targets, 6)
	for _, target := range targets {
		assert.NotNil(t, target.Extra, target.URL)
	}
	assert.Empty(t, e.Failures().Dropped())
	assert.Equal(t, 2, f.Calls("https://github.com/k1/repo2"))
}

func TestEngineRetriesDuplicateLinksSeparately(t *testing.T) {
	f := newStubFetcher()
	f.pages["https://github.com/search?q=dup"] = "https://github.com/dup https://github.com/dup"
	f.pages["https://github.com/dup"] = "octocat"
	f.fails["https://github.com/dup"] = 2

	// one worker keeps the queue order fixed: dup, dup, dup(retry), dup(retry)
	e := New(WithFetcher(f), WithWorkCount(1), WithMaxRetries(1))
	require.NoError(t, e.Run(context.Background(), spider.NewSearchTask("https://github.com/search?q=dup", fieldLinks, ownerIsBody)))

	targets := e.Results().Targets()
	require.Len(t, targets, 2)
	for _, target := range targets {
		require.NotNil(t, target.Extra)
		assert.Equal(t, "octocat", target.Extra.OwnerName())
	}
	assert.Empty(t, e.Failures().Dropped())
	assert.Equal(t, 4, f.Calls("https://github.com/dup"))
}

func TestEngineRecoversPanic(t *testing.T) {
	f := newStubFetcher()
	f.pages["s"] = "a b"
	f.pages["a"] = "ok"
	f.pages["b"] = "boom"

	rule := spider.ExtraRuleFunc(func(body []byte) *spider.Extra {
		if string(body) == "boom" {
			panic("bad page")
		}
		return ownerIsBody(body)
	})

	e := New(WithFetcher(f), WithWorkCount(2))
	require.NoError(t, e.Run(context.Background(), spider.NewSearchTask("s", fieldLinks, rule)))

	targets := e.Results().Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, []string{"b"}, e.Failures().Dropped())
}

func TestEngineWithoutFetcher(t *testing.T) {
	e := New()
	require.NoError(t, e.Run(context.Background(), spider.NewSearchTask("s", fieldLinks, ownerIsBody)))
	assert.Equal(t, 0, e.Results().Len())
}

func TestEngineCancel(t *testing.T) {
	f := newStubFetcher()
	seeds := site(f, 4, 2)
	for _, s := range seeds {
		f.delay[s.URL()] = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(WithFetcher(f), WithWorkCount(2), WithMaxRetries(3)).Run(ctx, seeds...)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancel")
	}
}
