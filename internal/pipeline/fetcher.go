package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/dealscan/internal/cache"
	"github.com/ppiankov/dealscan/internal/model"
	"github.com/ppiankov/dealscan/internal/util"
	"github.com/ppiankov/dealscan/internal/worker"
)

// fetchSleepFunc is the sleep used between retries; tests replace it
var fetchSleepFunc = time.Sleep

// Fetcher downloads a search feed and returns its items
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int

	limiter *worker.Limiter
	robots  *util.RobotsChecker
	cache   cache.FeedCache
	refresh bool
}

// FetcherOption configures optional Fetcher behavior
type FetcherOption func(*Fetcher)

// WithCache serves repeated feed URLs from c
func WithCache(c cache.FeedCache) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
	}
}

// WithRefresh evicts each feed's cached body before fetching it again
func WithRefresh() FetcherOption {
	return func(f *Fetcher) {
		f.refresh = true
	}
}

// WithLimiter spaces requests per host
func WithLimiter(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a Fetcher from the HTTP settings
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) (*Fetcher, error) {
	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)
	if err != nil {
		return nil, err
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &http.Transport{Proxy: proxy},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		attempts:  attempts,
	}

	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fetch retrieves the feed at rawURL once and returns its items in feed order
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]model.FeedItem, error) {
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
	}

	if f.cache != nil {
		if f.refresh {
			if err := f.cache.Evict(rawURL); err != nil {
				return nil, fmt.Errorf("refresh cached feed: %w", err)
			}
		} else if body, ok := f.cache.Lookup(rawURL); ok {
			return parseFeed(body)
		}
	}

	body, err := f.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		// A failed cache write only costs a refetch next time
		_ = f.cache.Store(rawURL, body)
	}

	return items, nil
}

// FetchWithRetry calls Fetch, retrying transient failures with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) ([]model.FeedItem, error) {
	var lastErr error
	backoff := time.Second

	for attempt := 1; attempt <= f.attempts; attempt++ {
		items, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return items, nil
		}
		lastErr = err

		if attempt == f.attempts || !isRetryableFetchError(err) || ctx.Err() != nil {
			break
		}

		fetchSleepFunc(backoff)
		backoff *= 2
	}

	return nil, lastErr
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("%w: rate limit: %w", ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	return body, nil
}

// parseFeed extracts title, link and raw pubDate from every item. An item
// lacking any of the three makes the whole feed malformed.
func parseFeed(body []byte) ([]model.FeedItem, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}

	items := make([]model.FeedItem, 0, len(feed.Items))
	for i, item := range feed.Items {
		fi := model.FeedItem{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
		}
		switch {
		case strings.TrimSpace(fi.Title) == "":
			return nil, fmt.Errorf("%w: item %d has no title", ErrMalformedFeed, i)
		case fi.Link == "":
			return nil, fmt.Errorf("%w: item %d has no link", ErrMalformedFeed, i)
		case fi.Published == "":
			return nil, fmt.Errorf("%w: item %d has no pubDate", ErrMalformedFeed, i)
		}
		items = append(items, fi)
	}

	return items, nil
}

// isRetryableFetchError reports whether a fetch failure is worth another attempt
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	if errors.Is(err, ErrMalformedFeed) || errors.Is(err, ErrRobotsDisallowed) {
		return false
	}

	if isTimeout(err) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
