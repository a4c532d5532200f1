package githubsearch

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/dreamerjackson/ghcrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `
<html>
	<body>
		<main>
			<a href="/path1" data-hydro-click></a>
			<a href="/path2" data-hydro-click></a>
			<a href="/path3" data-hydro-click></a>
		</main>
	</body>
</html>`

const repoPage = `
<html>
	<body>
		<main>
			<span itemprop="author"><a>owner_name</a></span>
			<a data-ga-click="Repository, language stats search click, location:repo overview">
				<span>Python</span>
				<span>98.77%</span>
				<span>JavaScript</span>
				<span>1.23%</span>
			</a>
		</main>
	</body>
</html>`

func urls(targets []*spider.Target) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.URL)
	}
	return out
}

func TestSearchRule(t *testing.T) {
	targets := NewSearchRule().ParseLinks([]byte(searchPage))

	assert.Equal(t, []string{
		"https://github.com/path1",
		"https://github.com/path2",
		"https://github.com/path3",
	}, urls(targets))
	for _, target := range targets {
		assert.Nil(t, target.Extra)
	}
}

func TestSearchRuleCountsOnlyMarkedAnchorsInMain(t *testing.T) {
	for m := 0; m < 6; m++ {
		t.Run(fmt.Sprintf("anchors=%d", m), func(t *testing.T) {
			var b strings.Builder
			b.WriteString(`<html><body><a href="/outside" data-hydro-click></a><main><div>`)
			var want []string
			for i := 0; i < m; i++ {
				fmt.Fprintf(&b, `<a href="/r/%d" data-hydro-click="{}">r%d</a><a href="/plain/%d">x</a>`, i, i, i)
				want = append(want, fmt.Sprintf("https://github.com/r/%d", i))
			}
			b.WriteString(`</div></main></body></html>`)

			got := NewSearchRule().ParseLinks([]byte(b.String()))
			assert.Len(t, got, m)
			if m > 0 {
				assert.Equal(t, want, urls(got))
			}
		})
	}
}

func TestSearchRuleKeepsDuplicatesAndSkipsMissingHref(t *testing.T) {
	page := `<body><main>
		<a href="/dup" data-hydro-click></a>
		<a data-hydro-click></a>
		<a href="/dup" data-hydro-click></a>
		<a href="/q?x=1" data-hydro-click></a>
	</main></body>`

	got := NewSearchRule().ParseLinks([]byte(page))
	assert.Equal(t, []string{
		"https://github.com/dup",
		"https://github.com/dup",
		"https://github.com/q?x=1",
	}, urls(got))
}

func TestSearchRuleStaysOnSite(t *testing.T) {
	page := `<body><main>
		<a href="//evil.example/x" data-hydro-click></a>
		<a href="https://other.example/y?z=1" data-hydro-click></a>
		<a href="http://github.com/plain" data-hydro-click></a>
		<a href="javascript:void(0)" data-hydro-click></a>
		<a href="mailto:a@b.c" data-hydro-click></a>
		<a href="relative/repo" data-hydro-click></a>
	</main></body>`

	got := NewSearchRule().ParseLinks([]byte(page))
	assert.Equal(t, []string{
		"https://github.com/x",
		"https://github.com/y?z=1",
		"https://github.com/plain",
		"https://github.com/relative/repo",
	}, urls(got))
}

func TestSearchRuleCustomBase(t *testing.T) {
	base, err := url.Parse("http://127.0.0.1:8080")
	require.NoError(t, err)

	r := &SearchRule{Base: base, Selector: ResultSelector}
	got := r.ParseLinks([]byte(searchPage))
	assert.Equal(t, "http://127.0.0.1:8080/path1", got[0].URL)
}

func TestSearchRuleToleratesGarbage(t *testing.T) {
	for _, body := range []string{"", "not html at all", "<main><a data-hydro-click href=", "\x00\xff\xfe"} {
		assert.Empty(t, NewSearchRule().ParseLinks([]byte(body)))
	}
}

func TestRepoRule(t *testing.T) {
	extra := NewRepoRule().ParseExtra([]byte(repoPage))

	require.NotNil(t, extra.Owner)
	assert.Equal(t, "owner_name", *extra.Owner)
	assert.Equal(t, map[string]string{
		"Python":     "98.77%",
		"JavaScript": "1.23%",
	}, extra.LanguageStats)
}

func TestRepoRuleOwner(t *testing.T) {
	tests := []struct {
		name string
		page string
		want *string
	}{
		{name: "absent", page: `<body><main><span>nobody</span></main></body>`},
		{name: "trimmed", page: `<body><main><span itemprop="author"><a href="/o">
			  octocat
		</a></span></main></body>`, want: strPtr("octocat")},
		{name: "first wins", page: `<body><main>
			<span itemprop="author"><a>first</a></span>
			<span itemprop="author"><a>second</a></span>
		</main></body>`, want: strPtr("first")},
		{name: "nested elements", page: `<body><main><span itemprop="author"><a>
			<img alt="avatar"><span class="badge">Sponsor</span> octocat </a></span></main></body>`, want: strPtr("octocat")},
		{name: "outside main", page: `<body><span itemprop="author"><a>x</a></span><main></main></body>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extra := NewRepoRule().ParseExtra([]byte(tt.page))
			assert.Equal(t, tt.want, extra.Owner)
		})
	}
}

func TestRepoRuleStatsPairing(t *testing.T) {
	for k := 0; k < 8; k++ {
		t.Run(fmt.Sprintf("spans=%d", k), func(t *testing.T) {
			var b strings.Builder
			b.WriteString(`<body><main><a data-ga-click="Repository, language stats search click, location:repo overview">`)
			for i := 0; i < k; i++ {
				fmt.Fprintf(&b, `<span>v%d</span>`, i)
			}
			b.WriteString(`</a></main></body>`)

			extra := NewRepoRule().ParseExtra([]byte(b.String()))
			require.NotNil(t, extra.LanguageStats)
			assert.Len(t, extra.LanguageStats, k/2)
			for i := 0; i+1 < k; i += 2 {
				assert.Equal(t, fmt.Sprintf("v%d", i+1), extra.LanguageStats[fmt.Sprintf("v%d", i)])
			}
		})
	}
}

func TestRepoRuleEmptyPage(t *testing.T) {
	extra := NewRepoRule().ParseExtra(nil)
	assert.Nil(t, extra.Owner)
	assert.NotNil(t, extra.LanguageStats)
	assert.Empty(t, extra.LanguageStats)
}

func strPtr(s string) *string {
	return &s
}
