// Package server provides the HTTP REST API for the film blend service.
package server

import (
	"errors"
	"net/http"

	"github.com/mreid/filmblend/internal/compat"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notReady *compat.NotReadyError
	var noData *compat.NoDataError
	switch {
	case errors.As(err, &notReady):
		return http.StatusConflict
	case errors.As(err, &noData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// compatError writes the typed scoring errors with structured payloads so
// clients can tell "scrape first" apart from "wait for enrichment".
func (s *Server) compatError(w http.ResponseWriter, err error) {
	var notReady *compat.NotReadyError
	if errors.As(err, &notReady) {
		s.jsonResponse(w, http.StatusConflict, map[string]any{
			"error":           "metadata_not_ready",
			"message":         notReady.Error(),
			"metadata_status": notReady.Status,
		})
		return
	}

	var noData *compat.NoDataError
	if errors.As(err, &noData) {
		s.jsonResponse(w, http.StatusNotFound, map[string]any{
			"error":   "no_data",
			"message": noData.Error(),
		})
		return
	}

	s.errorResponse(w, http.StatusInternalServerError, err.Error())
}
