package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/sectxt/internal/tor"
	"github.com/valyala/bytebufferpool"
)

// maxRedirects is the redirect limit for every request.
const maxRedirects = 10

// Client fetches URLs over HTTPS, and over Tor for onion hosts.
type Client struct {
	direct      *http.Client
	onion       *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the clearnet HTTP client. Its CheckRedirect is
// overwritten so the redirect policy stays the same.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.direct = c
	}
}

// WithTimeout sets the timeout of the clearnet client.
func WithTimeout(timeout time.Duration) Option {
	return func(cl *Client) {
		cl.direct.Timeout = timeout
	}
}

// WithTor routes onion hosts through the given Tor client.
func WithTor(tc *tor.Client) Option {
	return func(cl *Client) {
		if tc != nil {
			cl.onion = tc.NewHTTPClient()
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithMaxBodySize limits how much of a body FetchBody reads.
func WithMaxBodySize(size int64) Option {
	return func(cl *Client) {
		if size > 0 {
			cl.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a Client with a 10 second timeout and a 1 MiB body limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		direct:      &http.Client{Timeout: 10 * time.Second},
		userAgent:   "sectxt",
		maxBodySize: 1 << 20,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.direct.CheckRedirect = checkRedirect
	if c.onion != nil {
		c.onion.CheckRedirect = checkRedirect
	}
	return c
}

// checkRedirect follows at most maxRedirects hops and never downgrades
// from https to http.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return ErrTooManyRedirects
	}
	if via[0].URL.Scheme == "https" && req.URL.Scheme != "https" {
		return ErrInsecureRedirect
	}
	return nil
}

// FetchStatus implements Fetcher.
func (c *Client) FetchStatus(ctx context.Context, rawURL string) (Status, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodySize)) //nolint:errcheck // drain for connection reuse

	// net/http sets Request.Response only on requests issued to follow a
	// redirect. Comparing URL strings would flag scheme case or escaping
	// differences as redirects.
	status := Status{
		Code:       resp.StatusCode,
		Redirected: resp.Request.Response != nil,
		FinalURL:   resp.Request.URL.String(),
	}

	c.logger.Debug("fetched status",
		"url", rawURL,
		"status", status.Code,
		"redirected", status.Redirected,
	)
	return status, nil
}

// FetchBody implements Fetcher.
func (c *Client) FetchBody(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, c.maxBodySize)); err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}

	body := make([]byte, buf.Len())
	copy(body, buf.B)

	c.logger.Debug("fetched body", "url", rawURL, "size", len(body))
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	client := c.direct
	if tor.IsOnionHost(u.Hostname()) {
		if c.onion == nil {
			return nil, ErrOnionWithoutTor
		}
		client = c.onion
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	return resp, nil
}
