package proxy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
)

var ErrEmptyProxyList = errors.New("proxy URL list is empty")

// Func matches http.Transport.Proxy.
type Func func(*http.Request) (*url.URL, error)

// Selector picks the proxy for a single request attempt.
type Selector interface {
	Next() *url.URL
}

type RandomSelector struct {
	proxyURLs []*url.URL
	intn      func(n int) int
}

type Option func(s *RandomSelector)

// WithIntn replaces the random source. intn must be safe for concurrent use.
func WithIntn(intn func(n int) int) Option {
	return func(s *RandomSelector) {
		s.intn = intn
	}
}

// NewRandomSelector creates a selector which picks one of ProxyURLs uniformly
// at random on every call. Bare "host:port" entries are treated as http proxies.
func NewRandomSelector(proxyURLs []string, opts ...Option) (*RandomSelector, error) {
	if len(proxyURLs) < 1 {
		return nil, ErrEmptyProxyList
	}

	urls := make([]*url.URL, len(proxyURLs))
	for i, raw := range proxyURLs {
		u, err := ProxyURL(raw)
		if err != nil {
			return nil, err
		}
		urls[i] = u
	}

	s := &RandomSelector{proxyURLs: urls, intn: rand.Intn}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *RandomSelector) Next() *url.URL {
	return s.proxyURLs[s.intn(len(s.proxyURLs))]
}

// Len returns the number of configured proxies.
func (s *RandomSelector) Len() int {
	return len(s.proxyURLs)
}

type fixed struct {
	u *url.URL
}

func (f fixed) Next() *url.URL {
	return f.u
}

// Fixed always returns u. A nil u means a direct connection.
func Fixed(u *url.URL) Selector {
	return fixed{u}
}

// ProxyURL parses a proxy entry. The scheme defaults to http,
// "http", "https" and "socks5" are accepted.
func ProxyURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty proxy address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", raw)
	}

	return u, nil
}

type ctxKey struct{}

// WithProxy attaches the proxy chosen for one attempt to ctx.
func WithProxy(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the proxy stored by WithProxy, or nil.
func FromContext(ctx context.Context) *url.URL {
	u, _ := ctx.Value(ctxKey{}).(*url.URL)
	return u
}

// FromRequest is a Func that routes each request through the proxy
// carried by its context. Requests without one go direct.
func FromRequest(req *http.Request) (*url.URL, error) {
	return FromContext(req.Context()), nil
}
