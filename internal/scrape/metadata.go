package scrape

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/errgroup"

	"github.com/mreid/filmblend/internal/types"
)

const (
	// metadataBatchSize is how many film pages are fetched concurrently.
	metadataBatchSize = 3
	// metadataBatchDelay separates batches to stay polite.
	metadataBatchDelay = 500 * time.Millisecond
	// popularityTimeout bounds the headless-browser visit per film.
	popularityTimeout = 15 * time.Second
)

var (
	yearRE       = regexp.MustCompile(`^\d{4}$`)
	popularityRE = regexp.MustCompile(`Watched by ([\d,]+)`)
)

// FilmMetadata scrapes one film's page: year, poster, genres and directors
// come from the static HTML; the watch count is rendered client-side and
// needs the browser. A missing watch count is not fatal, the record just
// stays un-enriched on that axis.
func (c *Client) FilmMetadata(ctx context.Context, slug string) (*types.FilmMetadata, error) {
	url := fmt.Sprintf("%s/film/%s/", c.baseURL, slug)
	doc, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	meta := parseFilmPage(doc, slug)

	if c.useBrowser {
		popularity, err := c.watchCount(ctx, url)
		if err != nil {
			log.Printf("failed to get watch count for %s: %v", slug, err)
		} else {
			meta.Popularity = popularity
		}
	}

	return meta, nil
}

// FilmMetadataBatch scrapes many film pages in small concurrent batches with
// a pause in between. Films that fail are logged and skipped so one broken
// page cannot sink a whole enrichment run.
func (c *Client) FilmMetadataBatch(ctx context.Context, slugs []string) ([]types.FilmMetadata, error) {
	var all []types.FilmMetadata
	for start := 0; start < len(slugs); start += metadataBatchSize {
		end := start + metadataBatchSize
		if end > len(slugs) {
			end = len(slugs)
		}

		batch := slugs[start:end]
		results := make([]*types.FilmMetadata, len(batch))
		g, gCtx := errgroup.WithContext(ctx)
		for i, slug := range batch {
			g.Go(func() error {
				meta, err := c.FilmMetadata(gCtx, slug)
				if err != nil {
					log.Printf("failed to scrape metadata for %s: %v", slug, err)
					return nil
				}
				results[i] = meta
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, meta := range results {
			if meta != nil {
				all = append(all, *meta)
			}
		}

		if end < len(slugs) {
			select {
			case <-time.After(metadataBatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return all, nil
}

func parseFilmPage(doc *goquery.Document, slug string) *types.FilmMetadata {
	meta := &types.FilmMetadata{FilmSlug: slug}

	if title := strings.TrimSpace(doc.Find("h1.film-title").Text()); title != "" {
		meta.Title = title
	} else {
		meta.Title = titleFromSlug(slug)
	}

	yearText := strings.TrimSpace(doc.Find(".releasedate a").First().Text())
	if yearRE.MatchString(yearText) {
		if year, err := strconv.Atoi(yearText); err == nil {
			meta.Year = &year
		}
	}

	for _, sel := range []string{".film-poster img", ".poster-list img", "img.image"} {
		if src, ok := doc.Find(sel).Attr("src"); ok && src != "" {
			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}
			meta.PosterURL = &src
			break
		}
	}

	doc.Find(`a[href^="/films/genre/"]`).Each(func(_ int, a *goquery.Selection) {
		if genre := strings.TrimSpace(a.Text()); genre != "" {
			meta.Genres = append(meta.Genres, genre)
		}
	})

	doc.Find(".credits .creatorlist a.contributor .prettify").Each(func(_ int, name *goquery.Selection) {
		if director := strings.TrimSpace(name.Text()); director != "" {
			meta.Directors = append(meta.Directors, director)
		}
	})

	return meta
}

// watchCount renders the film page in a headless browser and reads the
// "Watched by N" statistic.
func (c *Client) watchCount(ctx context.Context, url string) (*int, error) {
	browserCtx, cancel := c.newBrowserContext(ctx, popularityTimeout)
	defer cancel()

	var label string
	var found bool
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(".production-statistic.-watches"),
		chromedp.AttributeValue(".production-statistic.-watches", "aria-label", &label, &found),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}
	if !found {
		return nil, nil
	}

	m := popularityRE.FindStringSubmatch(label)
	if m == nil {
		return nil, nil
	}
	count, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil, nil
	}
	return &count, nil
}

// newBrowserContext builds a throwaway headless browser context.
func (c *Client) newBrowserContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(c.userAgent),
		)...,
	)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)

	return browserCtx, func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	}
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
