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

const filmPage = `<!DOCTYPE html>
<html><body>
<h1 class="film-title">The Godfather</h1>
<div class="releasedate"><a href="/films/year/1972/">1972</a></div>
<div class="film-poster"><img src="//a.ltrbxd.com/godfather-poster.jpg"></div>
<div class="text-sluglist">
  <a href="/films/genre/crime/">Crime</a>
  <a href="/films/genre/drama/">Drama</a>
</div>
<div class="credits">
  <span class="creatorlist">
    <a class="contributor" href="/director/francis-ford-coppola/"><span class="prettify">Francis Ford Coppola</span></a>
  </span>
</div>
</body></html>`

const sparseFilmPage = `<!DOCTYPE html>
<html><body>
<div class="releasedate"><a href="/films/year/0/">TBA</a></div>
</body></html>`

func TestFilmMetadataParsesStaticFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/film/the-godfather/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, filmPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := newTestClient(srv)

	meta, err := client.FilmMetadata(context.Background(), "the-godfather")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "the-godfather", meta.FilmSlug)
	assert.Equal(t, "The Godfather", meta.Title)
	require.NotNil(t, meta.Year)
	assert.Equal(t, 1972, *meta.Year)
	require.NotNil(t, meta.PosterURL)
	assert.Equal(t, "https://a.ltrbxd.com/godfather-poster.jpg", *meta.PosterURL)
	assert.Equal(t, []string{"Crime", "Drama"}, meta.Genres)
	assert.Equal(t, []string{"Francis Ford Coppola"}, meta.Directors)
	assert.Nil(t, meta.Popularity, "watch count needs the browser path")
}

func TestFilmMetadataSparsePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/film/some-upcoming-film/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sparseFilmPage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := newTestClient(srv)

	meta, err := client.FilmMetadata(context.Background(), "some-upcoming-film")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "Some Upcoming Film", meta.Title, "title falls back to the slug")
	assert.Nil(t, meta.Year, "non-numeric release text is ignored")
	assert.Nil(t, meta.PosterURL)
	assert.Nil(t, meta.Genres)
	assert.Nil(t, meta.Directors)
}

func TestFilmMetadataBatchSkipsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/film/the-godfather/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, filmPage)
	})
	mux.HandleFunc("/film/gone-film/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := newTestClient(srv)

	metas, err := client.FilmMetadataBatch(context.Background(), []string{"the-godfather", "gone-film"})
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "the-godfather", metas[0].FilmSlug)
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		slug     string
		expected string
	}{
		{"the-godfather", "The Godfather"},
		{"heat", "Heat"},
		{"2001-a-space-odyssey", "2001 A Space Odyssey"},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleFromSlug(tt.slug))
		})
	}
}
