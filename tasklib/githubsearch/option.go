package githubsearch

import (
	"time"

	"github.com/dreamerjackson/ghcrawler/engine"
	"github.com/dreamerjackson/ghcrawler/limiter"
	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
)

type options struct {
	WorkCount  int
	MaxRetries int
	Timeout    time.Duration
	UserAgent  string
	Fetcher    spider.Fetcher
	Limit      limiter.RateLimiter
	Logger     *zap.Logger
	searchRule spider.LinkRule
	repoRule   spider.ExtraRule
}

var defaultOptions = options{
	WorkCount: engine.DefaultWorkCount,
	Timeout:   5 * time.Second,
	Logger:    zap.NewNop(),
}

type Option func(opts *options)

func WithWorkCount(n int) Option {
	return func(opts *options) {
		if n > 0 {
			opts.WorkCount = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(opts *options) {
		opts.MaxRetries = n
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		if timeout > 0 {
			opts.Timeout = timeout
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(opts *options) {
		opts.UserAgent = ua
	}
}

// WithFetcher replaces the proxied HTTP fetcher, mainly for tests.
func WithFetcher(f spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = f
	}
}

func WithLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.Limit = l
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithSearchRule(r spider.LinkRule) Option {
	return func(opts *options) {
		opts.searchRule = r
	}
}

func WithRepoRule(r spider.ExtraRule) Option {
	return func(opts *options) {
		opts.repoRule = r
	}
}
