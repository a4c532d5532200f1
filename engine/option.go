package engine

import (
	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
)

const DefaultWorkCount = 16

type Option func(opts *options)

type options struct {
	WorkCount  int
	MaxRetries int
	Fetcher    spider.Fetcher
	Logger     *zap.Logger
	results    *spider.ResultSet
	failures   spider.FailureRepository
	scheduler  func(seeds ...spider.Task) Scheduler
}

var defaultOptions = options{
	WorkCount: DefaultWorkCount,
	Logger:    zap.NewNop(),
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithWorkCount(workCount int) Option {
	return func(opts *options) {
		if workCount > 0 {
			opts.WorkCount = workCount
		}
	}
}

// WithMaxRetries sets how many times a failed task is queued again before
// it is dropped. Zero drops on the first failure.
func WithMaxRetries(n int) Option {
	return func(opts *options) {
		if n >= 0 {
			opts.MaxRetries = n
		}
	}
}

func WithResultSet(r *spider.ResultSet) Option {
	return func(opts *options) {
		opts.results = r
	}
}

func WithFailureRepository(r spider.FailureRepository) Option {
	return func(opts *options) {
		opts.failures = r
	}
}

// WithScheduler replaces the default Schedule constructor.
func WithScheduler(newScheduler func(seeds ...spider.Task) Scheduler) Option {
	return func(opts *options) {
		opts.scheduler = newScheduler
	}
}
