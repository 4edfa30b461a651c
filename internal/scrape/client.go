// Package scrape pulls watch histories, film metadata and reviews from the
// source site. Static pages are fetched over plain HTTP and parsed with
// goquery; the few values rendered client-side go through a headless browser.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the site root all scrape paths are resolved against.
const DefaultBaseURL = "https://letterboxd.com"

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultPageDelay is the pause between history pages, to stay polite.
const DefaultPageDelay = time.Second

// Error represents an error while fetching a page from the site.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scrape error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("scrape error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client fetches and parses site pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pageDelay  time.Duration
	useBrowser bool
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different site root, typically a test
// server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithUserAgent overrides the user agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageDelay sets the pause between consecutive history pages.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageDelay = d }
}

// WithBrowser toggles headless-browser fallbacks. Requires Chrome/Chromium on
// the system when enabled.
func WithBrowser(enabled bool) Option {
	return func(c *Client) { c.useBrowser = enabled }
}

// NewClient creates a Client with default pacing against the real site.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		pageDelay:  DefaultPageDelay,
		useBrowser: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get fetches one page and hands back the parsed document.
func (c *Client) get(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: url, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Message: "failed to parse HTML", Cause: err}
	}
	return doc, nil
}
