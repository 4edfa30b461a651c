package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// reviewTimeout bounds the headless-browser fallback per review page.
const reviewTimeout = 10 * time.Second

// HasReview reports whether the user wrote a review for the film. The plain
// HTTP path answers for most pages; when it fails and the browser is enabled
// the page is rendered headlessly before giving up.
func (c *Client) HasReview(ctx context.Context, handle, slug string) (bool, error) {
	url := fmt.Sprintf("%s/%s/film/%s/", c.baseURL, handle, slug)

	doc, err := c.get(ctx, url)
	if err == nil {
		return reviewFromDoc(doc) != "", nil
	}
	if !c.useBrowser {
		return false, err
	}

	text, browserErr := c.renderedReview(ctx, url)
	if browserErr != nil {
		return false, fmt.Errorf("review check failed for %s on %s: %w", handle, slug, browserErr)
	}
	return text != "", nil
}

// ReviewText fetches the review body for the film's diary page. Returns nil
// when the user wrote no review.
func (c *Client) ReviewText(ctx context.Context, handle, slug string) (*string, error) {
	url := fmt.Sprintf("%s/%s/film/%s/", c.baseURL, handle, slug)

	doc, err := c.get(ctx, url)
	if err == nil {
		if text := reviewFromDoc(doc); text != "" {
			return &text, nil
		}
		return nil, nil
	}
	if !c.useBrowser {
		return nil, err
	}

	text, browserErr := c.renderedReview(ctx, url)
	if browserErr != nil {
		return nil, fmt.Errorf("review fetch failed for %s on %s: %w", handle, slug, browserErr)
	}
	if text == "" {
		return nil, nil
	}
	return &text, nil
}

// reviewFromDoc extracts the review paragraph text, empty when the page has
// a review container but no actual text.
func reviewFromDoc(doc *goquery.Document) string {
	if doc.Find("section.review.js-review").Length() == 0 {
		return ""
	}
	return strings.TrimSpace(doc.Find("div.js-review-body").Find("p").Text())
}

// renderedReview renders the diary page in a headless browser and extracts
// the review text the same way the fast path does.
func (c *Client) renderedReview(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := c.newBrowserContext(ctx, reviewTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	return reviewFromDoc(doc), nil
}
