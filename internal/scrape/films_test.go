package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gridPageOne = `<!DOCTYPE html>
<html><body>
<ul class="grid">
  <li class="griditem">
    <div class="film-poster" data-item-slug="the-godfather">
      <img alt="The Godfather" src="//a.ltrbxd.com/godfather.jpg">
    </div>
    <p class="poster-viewingdata">
      <span class="rating rated-9"></span>
      <span class="like liked-micro"></span>
    </p>
  </li>
  <li class="griditem">
    <div class="film-poster" data-item-slug="jaws">
      <img alt="Jaws" src="//a.ltrbxd.com/jaws.jpg">
    </div>
    <p class="poster-viewingdata"></p>
  </li>
  <li class="griditem">
    <div class="film-poster">
      <img src="//a.ltrbxd.com/broken.jpg">
    </div>
  </li>
</ul>
<div class="paginate-pages">
  <ul><li><a href="/someone/films/page/2/">2</a></li></ul>
</div>
</body></html>`

const gridPageTwo = `<!DOCTYPE html>
<html><body>
<ul class="grid">
  <li class="griditem">
    <div class="film-poster" data-item-slug="heat">
      <img alt="Heat" src="//a.ltrbxd.com/heat.jpg">
    </div>
    <p class="poster-viewingdata"><span class="rating rated-10"></span></p>
  </li>
</ul>
</body></html>`

func newGridServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/someone/films/page/1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, gridPageOne)
	})
	mux.HandleFunc("/someone/films/page/2/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, gridPageTwo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(WithBaseURL(srv.URL), WithPageDelay(0), WithBrowser(false))
}

func TestWatchedFilmsPageParsesGrid(t *testing.T) {
	client := newTestClient(newGridServer(t))

	films, hasNext, err := client.WatchedFilmsPage(context.Background(), "someone", 1)
	require.NoError(t, err)
	assert.True(t, hasNext)
	require.Len(t, films, 2, "the item without slug and title must be skipped")

	godfather := films[0]
	assert.Equal(t, "someone", godfather.UserHandle)
	assert.Equal(t, "the-godfather", godfather.FilmSlug)
	assert.Equal(t, "The Godfather", godfather.Title)
	require.NotNil(t, godfather.Rating)
	assert.Equal(t, 4.5, *godfather.Rating)
	assert.True(t, godfather.Liked)

	jaws := films[1]
	assert.Equal(t, "jaws", jaws.FilmSlug)
	assert.Nil(t, jaws.Rating, "unrated stays nil, never zero")
	assert.False(t, jaws.Liked)
}

func TestWatchedFilmsFollowsPagination(t *testing.T) {
	client := newTestClient(newGridServer(t))

	films, err := client.WatchedFilms(context.Background(), "someone")
	require.NoError(t, err)
	require.Len(t, films, 3)

	heat := films[2]
	assert.Equal(t, "heat", heat.FilmSlug)
	require.NotNil(t, heat.Rating)
	assert.Equal(t, 5.0, *heat.Rating)
}

func TestWatchedFilmsPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	client := newTestClient(srv)

	_, _, err := client.WatchedFilmsPage(context.Background(), "nobody", 1)
	require.Error(t, err)

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Contains(t, scrapeErr.Message, "404")
}
