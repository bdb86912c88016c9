package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of requests Prefetch runs at once.
const DefaultConcurrency = 8

type statusEntry struct {
	status Status
	err    error
}

type bodyEntry struct {
	body []byte
	err  error
}

// Cache memoizes the answers of another Fetcher. URLs that were not
// prefetched are fetched on first use and memoized as well.
//
// Design decision: Validation must happen strictly in input order because
// duplicate detection depends on earlier lines, but no fetch depends on
// another. So we fetch everything first with bounded concurrency and keep
// the ordered pass free of network latency.
type Cache struct {
	source   Fetcher
	mu       sync.Mutex
	statuses map[string]statusEntry
	bodies   map[string]bodyEntry
}

// PrefetchOption configures Prefetch.
type PrefetchOption func(*prefetchConfig)

type prefetchConfig struct {
	concurrency int
	logger      *slog.Logger
}

// WithConcurrency sets the maximum number of concurrent requests.
func WithConcurrency(n int) PrefetchOption {
	return func(c *prefetchConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithPrefetchLogger sets the logger used by Prefetch.
func WithPrefetchLogger(logger *slog.Logger) PrefetchOption {
	return func(c *prefetchConfig) {
		c.logger = logger
	}
}

// NewCache wraps source without fetching anything.
func NewCache(source Fetcher) *Cache {
	return &Cache{
		source:   source,
		statuses: make(map[string]statusEntry),
		bodies:   make(map[string]bodyEntry),
	}
}

// Prefetch requests the status of every URL in statusURLs and the body of
// every URL in bodyURLs, concurrently, and returns the filled cache.
// Individual failures are memoized, not returned: they only reject the
// lines that reference them. The only error is a cancelled context.
func Prefetch(ctx context.Context, source Fetcher, statusURLs, bodyURLs []string, opts ...PrefetchOption) (*Cache, error) {
	cfg := prefetchConfig{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	cache := NewCache(source)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	for _, u := range dedupe(statusURLs) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			status, err := source.FetchStatus(ctx, u)
			cache.storeStatus(u, status, err)
			return nil
		})
	}
	for _, u := range dedupe(bodyURLs) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := source.FetchBody(ctx, u)
			cache.storeBody(u, body, err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	cfg.logger.Debug("prefetch complete",
		"status_urls", len(statusURLs),
		"body_urls", len(bodyURLs),
		"elapsed", time.Since(startTime),
	)
	return cache, nil
}

// FetchStatus implements Fetcher.
func (c *Cache) FetchStatus(ctx context.Context, url string) (Status, error) {
	c.mu.Lock()
	e, ok := c.statuses[url]
	c.mu.Unlock()
	if ok {
		return e.status, e.err
	}

	status, err := c.source.FetchStatus(ctx, url)
	c.storeStatus(url, status, err)
	return status, err
}

// FetchBody implements Fetcher.
func (c *Cache) FetchBody(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	e, ok := c.bodies[url]
	c.mu.Unlock()
	if ok {
		return e.body, e.err
	}

	body, err := c.source.FetchBody(ctx, url)
	c.storeBody(url, body, err)
	return body, err
}

func (c *Cache) storeStatus(url string, status Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[url] = statusEntry{status: status, err: err}
}

func (c *Cache) storeBody(url string, body []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[url] = bodyEntry{body: body, err: err}
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
