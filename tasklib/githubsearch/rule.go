package githubsearch

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	ResultSelector = `body main a[data-hydro-click]`
	OwnerSelector  = `body main span[itemprop="author"] > a`
	StatsSelector  = `body main a[data-ga-click="Repository, language stats search click, location:repo overview"] > span`
)

// SiteURL is the base every result href is resolved against.
var SiteURL = &url.URL{Scheme: "https", Host: "github.com"}

// SearchRule lists the result links of a search page in document order.
type SearchRule struct {
	Base     *url.URL
	Selector string
}

func NewSearchRule() *SearchRule {
	return &SearchRule{Base: SiteURL, Selector: ResultSelector}
}

func (r *SearchRule) ParseLinks(body []byte) []*spider.Target {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		zap.L().Debug("parse search page failed", zap.Error(err))
		return nil
	}

	var targets []*spider.Target
	doc.Find(r.Selector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		u, ok := r.siteURL(href)
		if !ok {
			return
		}

		targets = append(targets, spider.NewTarget(u))
	})

	return targets
}

// siteURL keeps the path, query and fragment of href and always uses the
// scheme and host of Base.
func (r *SearchRule) siteURL(href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	switch ref.Scheme {
	case "", "http", "https":
	default:
		return "", false
	}

	u := r.Base.ResolveReference(&url.URL{
		Path:     ref.Path,
		RawPath:  ref.RawPath,
		RawQuery: ref.RawQuery,
		Fragment: ref.Fragment,
	})

	return u.String(), true
}

// RepoRule reads the owner and language statistics of a repository page.
type RepoRule struct {
	OwnerSelector string
	StatsSelector string
}

func NewRepoRule() *RepoRule {
	return &RepoRule{OwnerSelector: OwnerSelector, StatsSelector: StatsSelector}
}

func (r *RepoRule) ParseExtra(body []byte) *spider.Extra {
	extra := spider.EmptyExtra()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		zap.L().Debug("parse repo page failed", zap.Error(err))
		return extra
	}

	if owner := doc.Find(r.OwnerSelector).First(); owner.Length() > 0 {
		name := strings.TrimSpace(ownText(owner))
		extra.Owner = &name
	}

	// spans alternate between language name and percentage
	var stats []string
	doc.Find(r.StatsSelector).Each(func(i int, s *goquery.Selection) {
		stats = append(stats, strings.TrimSpace(s.Text()))
	})

	for i := 0; i+1 < len(stats); i += 2 {
		extra.LanguageStats[stats[i]] = stats[i+1]
	}

	return extra
}

// ownText joins the text nodes directly under s, skipping nested elements.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for n := s.Get(0).FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	}

	return b.String()
}
