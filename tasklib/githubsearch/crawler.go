package githubsearch

import (
	"context"
	"fmt"

	"github.com/dreamerjackson/ghcrawler/collect"
	"github.com/dreamerjackson/ghcrawler/engine"
	"github.com/dreamerjackson/ghcrawler/proxy"
	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
)

// Report is the outcome of one crawl.
type Report struct {
	Targets []*spider.Target
	// Failed lists the URLs of tasks dropped after their last failed fetch.
	Failed []string
}

// Complete reports whether every task finished.
func (r *Report) Complete() bool {
	return len(r.Failed) == 0
}

// Crawler searches GitHub for every keyword of its input and enriches
// each result with its owner and language statistics.
type Crawler struct {
	input Input
	options
}

func New(in Input, opts ...Option) (*Crawler, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	selector, err := proxy.NewRandomSelector(in.Proxies)
	if err != nil {
		return nil, fmt.Errorf("init proxy: %w", err)
	}

	if options.searchRule == nil {
		options.searchRule = NewSearchRule()
	}

	if options.repoRule == nil {
		options.repoRule = NewRepoRule()
	}

	if options.Fetcher == nil {
		options.Fetcher = collect.NewBrowserFetch(
			collect.WithProxy(selector),
			collect.WithTimeout(options.Timeout),
			collect.WithUserAgent(options.UserAgent),
			collect.WithLimiter(options.Limit),
			collect.WithLogger(options.Logger.Named("fetch")),
		)
	}

	options.Logger.Debug("crawler init",
		zap.Strings("keywords", in.Keywords),
		zap.Int("proxies", selector.Len()),
		zap.String("type", in.Type.Param()),
	)

	return &Crawler{input: in, options: options}, nil
}

// Seeds returns one search task per keyword.
func (c *Crawler) Seeds() []spider.Task {
	seeds := make([]spider.Task, 0, len(c.input.Keywords))
	for _, kw := range c.input.Keywords {
		seeds = append(seeds, spider.NewSearchTask(SearchURL(kw, c.input.Type), c.searchRule, c.repoRule))
	}

	return seeds
}

// Crawl blocks until every search and detail task is done. On cancellation
// it returns the partial report together with the context error.
func (c *Crawler) Crawl(ctx context.Context) (*Report, error) {
	e := engine.New(
		engine.WithFetcher(c.Fetcher),
		engine.WithWorkCount(c.WorkCount),
		engine.WithMaxRetries(c.MaxRetries),
		engine.WithLogger(c.Logger),
	)

	err := e.Run(ctx, c.Seeds()...)

	report := &Report{
		Targets: e.Results().Targets(),
		Failed:  e.Failures().Dropped(),
	}

	if !report.Complete() {
		c.Logger.Warn("crawl incomplete", zap.Strings("failed", report.Failed))
	}

	return report, err
}
