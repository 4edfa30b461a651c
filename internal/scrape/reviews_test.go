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

const reviewPage = `<!DOCTYPE html>
<html><body>
<section class="review js-review">
  <div class="js-review-body"><p>An offer I could not refuse.</p></div>
</section>
</body></html>`

const emptyReviewPage = `<!DOCTYPE html>
<html><body>
<section class="review js-review">
  <div class="js-review-body"></div>
</section>
</body></html>`

const noReviewPage = `<!DOCTYPE html>
<html><body>
<div class="diary-entry">Watched on 12 Mar 2024</div>
</body></html>`

func newReviewServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ana/film/the-godfather/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, reviewPage)
	})
	mux.HandleFunc("/ana/film/jaws/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, emptyReviewPage)
	})
	mux.HandleFunc("/ben/film/the-godfather/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, noReviewPage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHasReview(t *testing.T) {
	client := newTestClient(newReviewServer(t))
	ctx := context.Background()

	has, err := client.HasReview(ctx, "ana", "the-godfather")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = client.HasReview(ctx, "ana", "jaws")
	require.NoError(t, err)
	assert.False(t, has, "an empty review container is not a review")

	has, err = client.HasReview(ctx, "ben", "the-godfather")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReviewText(t *testing.T) {
	client := newTestClient(newReviewServer(t))
	ctx := context.Background()

	text, err := client.ReviewText(ctx, "ana", "the-godfather")
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Equal(t, "An offer I could not refuse.", *text)

	text, err = client.ReviewText(ctx, "ben", "the-godfather")
	require.NoError(t, err)
	assert.Nil(t, text)
}

func TestHasReviewFetchFailureWithoutBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := newTestClient(srv)

	_, err := client.HasReview(context.Background(), "ana", "the-godfather")
	require.Error(t, err)
}
