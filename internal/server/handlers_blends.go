package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mreid/filmblend/internal/compat"
	"github.com/mreid/filmblend/internal/db"
	"github.com/mreid/filmblend/internal/types"
)

// handleStartBlend opens a blend for the first user and scrapes their
// history in the background.
func (s *Server) handleStartBlend(w http.ResponseWriter, r *http.Request) {
	var req types.StartBlendRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	blendID, err := s.db.CreateBlend(r.Context(), req.UserHandle)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.scrapeInBackground(req.UserHandle)

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"blend_id": blendID,
		"status":   db.BlendStatusPending,
	})
}

// handleJoinBlend records the second user and scrapes their history in the
// background.
func (s *Server) handleJoinBlend(w http.ResponseWriter, r *http.Request) {
	var req types.JoinBlendRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.db.JoinBlend(r.Context(), req.BlendID, req.UserHandle); err != nil {
		s.errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.db.UpdateBlendStatus(r.Context(), req.BlendID, db.BlendStatusScraping); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.scrapeInBackground(req.UserHandle)

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"blend_id": req.BlendID,
		"status":   db.BlendStatusScraping,
	})
}

// handleScrapeBlend re-scrapes both members of an existing blend.
func (s *Server) handleScrapeBlend(w http.ResponseWriter, r *http.Request) {
	var req types.ScrapeBlendRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	blend, err := s.db.GetBlend(r.Context(), req.BlendID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if blend == nil {
		s.errorResponse(w, http.StatusNotFound, "Blend not found")
		return
	}
	if blend.UserB == nil {
		s.errorResponse(w, http.StatusConflict, "Blend has no second user yet")
		return
	}

	if err := s.db.UpdateBlendStatus(r.Context(), req.BlendID, db.BlendStatusScraping); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.scrapeInBackground(blend.UserA)
	s.scrapeInBackground(*blend.UserB)

	s.jsonResponse(w, http.StatusAccepted, map[string]any{
		"blend_id": blend.ID,
		"status":   db.BlendStatusScraping,
	})
}

// handleBlendStatus reports a blend's lifecycle state plus the readiness of
// its members' data. A blend that just became ready is marked so.
func (s *Server) handleBlendStatus(w http.ResponseWriter, r *http.Request) {
	var req types.BlendStatusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	blend, err := s.db.GetBlend(r.Context(), req.BlendID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if blend == nil {
		s.errorResponse(w, http.StatusNotFound, "Blend not found")
		return
	}

	response := map[string]any{"blend": blend}

	if blend.UserB != nil {
		scraping := s.registry.Active()
		response["active_scrapes"] = scraping

		readiness, err := s.engine.CheckReadiness(r.Context(), blend.UserA, *blend.UserB, nil)
		if err != nil {
			// No stored films yet just means the scrapes have not landed;
			// the blend is not ready rather than in error.
			var noData *compat.NoDataError
			if errors.As(err, &noData) {
				response["readiness"] = map[string]any{"ready": false, "reason": noData.Error()}
				s.jsonResponse(w, http.StatusOK, response)
				return
			}
			s.compatError(w, err)
			return
		}
		response["readiness"] = readiness

		if readiness.Ready && len(scraping) == 0 && blend.Status != db.BlendStatusReady {
			if err := s.db.UpdateBlendStatus(r.Context(), blend.ID, db.BlendStatusReady); err != nil {
				log.Printf("failed to mark blend %s ready: %v", blend.ID, err)
			} else {
				blend.Status = db.BlendStatusReady
			}
		}
	}

	s.jsonResponse(w, http.StatusOK, response)
}

// scrapeInBackground starts a history scrape unless one is already running
// for the handle. The scrape outlives the request, so it gets its own
// context.
func (s *Server) scrapeInBackground(handle string) {
	if !s.registry.Begin(handle) {
		log.Printf("scrape for %s already in progress, skipping", handle)
		return
	}

	go func() {
		defer s.registry.End(handle)
		ctx := context.Background()

		count, err := s.runner.SyncUser(ctx, handle)
		if err != nil {
			log.Printf("scrape for %s failed: %v", handle, err)
			return
		}
		log.Printf("scrape for %s finished with %d films", handle, count)
		s.cache.InvalidateUser(ctx, handle)
	}()
}
