package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreid/filmblend/internal/compat"
	"github.com/mreid/filmblend/internal/scrape"
	"github.com/mreid/filmblend/internal/selection"
	"github.com/mreid/filmblend/internal/types"
)

type fakeFilms struct {
	films map[string][]types.FilmEntry
}

func (f *fakeFilms) UserFilms(_ context.Context, handle string) ([]types.FilmEntry, error) {
	return f.films[handle], nil
}

func (f *fakeFilms) UserFilmsRated(_ context.Context, handle string, rating float64) ([]types.FilmEntry, error) {
	var out []types.FilmEntry
	for _, film := range f.films[handle] {
		if film.Rating != nil && *film.Rating == rating {
			out = append(out, film)
		}
	}
	return out, nil
}

func (f *fakeFilms) FilmMetadata(_ context.Context, _ string) (*types.FilmMetadata, error) {
	return nil, nil
}

func (f *fakeFilms) HasReview(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeFilms) ReviewText(_ context.Context, _, _ string) (*string, error) {
	return nil, nil
}

// enrichedFilm builds a fully enriched history entry for scoring tests.
func enrichedFilm(handle, slug string, rating float64) types.FilmEntry {
	r := rating
	popularity := 50000
	return types.FilmEntry{
		UserHandle: handle,
		FilmSlug:   slug,
		Title:      slug,
		Rating:     &r,
		Genres:     []string{"Drama"},
		Directors:  []string{"Someone"},
		Popularity: &popularity,
	}
}

func newTestServer(films map[string][]types.FilmEntry) *Server {
	source := &fakeFilms{films: films}
	return &Server{
		engine:   compat.NewEngine(source),
		selector: selection.New(source, source, source, selection.WithRand(rand.New(rand.NewSource(1)))),
		registry: scrape.NewRegistry(),
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleCompatibility(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "the-godfather", 5), enrichedFilm("ana", "heat", 4)},
		"ben": {enrichedFilm("ben", "the-godfather", 5), enrichedFilm("ben", "heat", 4)},
	})

	rec := postJSON(t, s.routes(), "/api/compatibility", map[string]string{
		"user_a": "ana", "user_b": "ben",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report types.CompatibilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ana", report.UserA)
	assert.Equal(t, 50.0, report.Scores.RatingAlignment, "identical ratings score full alignment")
	assert.Equal(t, 2, report.Stats.CommonFilms)
}

func TestHandleCompatibilityValidation(t *testing.T) {
	s := newTestServer(nil)

	rec := postJSON(t, s.routes(), "/api/compatibility", map[string]string{"user_a": "ana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/compatibility", bytes.NewReader([]byte("{not json")))
	rec2 := httptest.NewRecorder()
	s.routes().ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestHandleCompatibilityNoData(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "the-godfather", 5)},
	})

	rec := postJSON(t, s.routes(), "/api/compatibility", map[string]string{
		"user_a": "ana", "user_b": "ghost",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_data", resp["error"])
}

func TestHandleCompatibilityNotReady(t *testing.T) {
	bare := enrichedFilm("ben", "heat", 4)
	bare.Popularity = nil

	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "heat", 4)},
		"ben": {bare},
	})

	rec := postJSON(t, s.routes(), "/api/compatibility", map[string]string{
		"user_a": "ana", "user_b": "ben",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "metadata_not_ready", resp["error"])
	assert.Contains(t, resp, "metadata_status")
}

func TestHandleCommonMovies(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "the-godfather", 5)},
		"ben": {enrichedFilm("ben", "the-godfather", 5)},
	})

	rec := postJSON(t, s.routes(), "/api/common-movies", map[string]any{
		"user_a": "ana", "user_b": "ben", "max_movies": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		CommonMovies []types.CommonFilm `json:"common_movies"`
		Count        int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.CommonMovies, 1)
	assert.Equal(t, types.MatchPerfect, resp.CommonMovies[0].MatchStrength)
}

func TestHandleCommonMoviesSummary(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "the-godfather", 5)},
		"ben": {enrichedFilm("ben", "the-godfather", 5)},
	})

	rec := postJSON(t, s.routes(), "/api/common-movies-summary", map[string]string{
		"user_a": "ana", "user_b": "ben",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary types.FavoritesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.PerfectMatches)
}

func TestHandleBiggestDisagreement(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "heat", 5)},
		"ben": {enrichedFilm("ben", "heat", 0.5)},
	})

	rec := postJSON(t, s.routes(), "/api/biggest-disagreement", map[string]string{
		"user_a": "ana", "user_b": "ben",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Found        bool                    `json:"found"`
		Disagreement *types.DisagreementFilm `json:"disagreement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Found)
	assert.Equal(t, "heat", resp.Disagreement.FilmSlug)
	assert.Equal(t, 4.5, resp.Disagreement.DisagreementScore)
}

func TestHandleBiggestDisagreementNone(t *testing.T) {
	s := newTestServer(map[string][]types.FilmEntry{
		"ana": {enrichedFilm("ana", "heat", 5)},
		"ben": {enrichedFilm("ben", "jaws", 3)},
	})

	rec := postJSON(t, s.routes(), "/api/biggest-disagreement", map[string]string{
		"user_a": "ana", "user_b": "ben",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["found"])
}

func TestHandleStatusAndHealth(t *testing.T) {
	s := newTestServer(nil)
	s.registry.Begin("ana")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, []any{"ana"}, status["active_scrapes"])

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(nil)
	handler := s.withCORS(s.routes())

	req := httptest.NewRequest(http.MethodOptions, "/api/compatibility", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
