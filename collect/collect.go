package collect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dreamerjackson/ghcrawler/proxy"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrStatus = errors.New("unexpected status code")

// BrowserFetch fetches pages the way a browser would, through one shared
// http.Client. Each call draws its own proxy from the selector.
type BrowserFetch struct {
	client *http.Client
	options
}

func NewBrowserFetch(opts ...Option) *BrowserFetch {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy.FromRequest
	transport.MaxIdleConnsPerHost = 32

	return &BrowserFetch{
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: transport,
		},
		options: options,
	}
}

func (b *BrowserFetch) Fetch(ctx context.Context, url string) ([]byte, error) {
	if b.Limit != nil {
		if err := b.Limit.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var via string
	if b.Proxy != nil {
		if p := b.Proxy.Next(); p != nil {
			ctx = proxy.WithProxy(ctx, p)
			via = p.Host
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Debug("fetch failed",
			zap.String("url", url),
			zap.String("proxy", via),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w:%d", ErrStatus, resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

// DeterminEncoding sniffs the body encoding from the first KB and the
// Content-Type header, falling back to UTF-8.
func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		zap.L().Error("peek body failed", zap.Error(err))

		return unicode.UTF8
	}

	if len(bytes) == 0 {
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, contentType)

	return e
}

