package collect

import (
	"time"

	"github.com/dreamerjackson/ghcrawler/limiter"
	"github.com/dreamerjackson/ghcrawler/proxy"
	"go.uber.org/zap"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

type options struct {
	Timeout   time.Duration // http超时时间
	UserAgent string
	Proxy     proxy.Selector
	Limit     limiter.RateLimiter
	logger    *zap.Logger
}

var defaultOptions = options{
	Timeout:   5 * time.Second,
	UserAgent: DefaultUserAgent,
	logger:    zap.NewNop(),
}

type Option func(opts *options)

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.Timeout = timeout
	}
}

func WithUserAgent(ua string) Option {
	return func(opts *options) {
		if ua != "" {
			opts.UserAgent = ua
		}
	}
}

func WithProxy(s proxy.Selector) Option {
	return func(opts *options) {
		opts.Proxy = s
	}
}

func WithLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.Limit = l
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
