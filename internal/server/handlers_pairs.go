package server

import (
	"net/http"

	"github.com/mreid/filmblend/internal/types"
)

// handleCompatibility computes the full compatibility report for a pair,
// consulting the report cache first.
func (s *Server) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	var req types.PairRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if cached := s.cache.GetReport(r.Context(), req.UserA, req.UserB); cached != nil {
		s.jsonResponse(w, http.StatusOK, cached)
		return
	}

	report, err := s.engine.Compatibility(r.Context(), req.UserA, req.UserB)
	if err != nil {
		s.compatError(w, err)
		return
	}

	s.cache.SetReport(r.Context(), req.UserA, req.UserB, report)
	s.jsonResponse(w, http.StatusOK, report)
}

// handleCommonMovies returns the pair's shared favorites.
func (s *Server) handleCommonMovies(w http.ResponseWriter, r *http.Request) {
	var req types.CommonMoviesRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	films, err := s.selector.CommonFavorites(r.Context(), req.UserA, req.UserB, req.MaxMovies)
	if err != nil {
		s.compatError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"common_movies": films,
		"count":         len(films),
	})
}

// handleCommonMoviesSummary returns aggregate insights over the pair's
// shared favorites.
func (s *Server) handleCommonMoviesSummary(w http.ResponseWriter, r *http.Request) {
	var req types.PairRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.selector.CommonMoviesSummary(r.Context(), req.UserA, req.UserB)
	if err != nil {
		s.compatError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, summary)
}

// handleBiggestDisagreement returns the film the pair disagrees on most, or
// an explicit "none" when they share no rated films.
func (s *Server) handleBiggestDisagreement(w http.ResponseWriter, r *http.Request) {
	var req types.PairRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	film, err := s.selector.BiggestDisagreement(r.Context(), req.UserA, req.UserB)
	if err != nil {
		s.compatError(w, err)
		return
	}
	if film == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"found":   false,
			"message": "No commonly rated films between these users",
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"found":        true,
		"disagreement": film,
	})
}
