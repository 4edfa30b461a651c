package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mreid/filmblend/internal/types"
)

// Rating classes encode twice the half-star value, e.g. rated-9 is 4.5.
var ratingClassRE = regexp.MustCompile(`rated-(\d+)`)

// WatchedFilms scrapes a user's complete watch history, following pagination
// until the last page and pausing between pages.
func (c *Client) WatchedFilms(ctx context.Context, handle string) ([]types.FilmEntry, error) {
	var all []types.FilmEntry
	for page := 1; ; page++ {
		films, hasNext, err := c.WatchedFilmsPage(ctx, handle, page)
		if err != nil {
			return nil, err
		}
		all = append(all, films...)
		if !hasNext {
			return all, nil
		}

		select {
		case <-time.After(c.pageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// WatchedFilmsPage scrapes one page of a user's history and reports whether
// a next page exists.
func (c *Client) WatchedFilmsPage(ctx context.Context, handle string, page int) ([]types.FilmEntry, bool, error) {
	url := fmt.Sprintf("%s/%s/films/page/%d/", c.baseURL, handle, page)
	doc, err := c.get(ctx, url)
	if err != nil {
		return nil, false, err
	}
	films, hasNext := parseWatchedPage(doc, handle, page)
	return films, hasNext, nil
}

// parseWatchedPage reads the poster grid. Each grid item carries the film
// slug as a data attribute, the rating encoded in a CSS class, and a liked
// marker; entries without a slug or title are skipped.
func parseWatchedPage(doc *goquery.Document, handle string, page int) ([]types.FilmEntry, bool) {
	var films []types.FilmEntry
	doc.Find(".griditem").Each(func(_ int, item *goquery.Selection) {
		title := item.Find(".film-poster img").AttrOr("alt", "")
		slug := item.Find("[data-item-slug]").AttrOr("data-item-slug", "")
		if slug == "" || title == "" {
			return
		}

		var rating *float64
		ratingClass := item.Find(".poster-viewingdata .rating").AttrOr("class", "")
		if m := ratingClassRE.FindStringSubmatch(ratingClass); m != nil {
			if halves, err := strconv.Atoi(m[1]); err == nil {
				r := float64(halves) / 2
				rating = &r
			}
		}

		films = append(films, types.FilmEntry{
			UserHandle: handle,
			FilmSlug:   slug,
			Title:      title,
			Rating:     rating,
			Liked:      item.Find(".like.liked-micro").Length() > 0,
		})
	})

	nextSelector := fmt.Sprintf(`.paginate-pages a[href$="/page/%d/"]`, page+1)
	hasNext := doc.Find(nextSelector).Length() > 0
	return films, hasNext
}
