// Package server provides the HTTP REST API for the film blend service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mreid/filmblend/internal/cache"
	"github.com/mreid/filmblend/internal/compat"
	"github.com/mreid/filmblend/internal/config"
	"github.com/mreid/filmblend/internal/db"
	"github.com/mreid/filmblend/internal/scrape"
	"github.com/mreid/filmblend/internal/selection"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	db         *db.DB
	engine     *compat.Engine
	selector   *selection.Selector
	runner     *scrape.Runner
	registry   *scrape.Registry
	cache      *cache.Cache
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	// Connect to database
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clientOpts := []scrape.Option{
		scrape.WithPageDelay(time.Duration(cfg.PageDelayMS) * time.Millisecond),
		scrape.WithBrowser(cfg.UseBrowser),
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, scrape.WithUserAgent(cfg.UserAgent))
	}
	client := scrape.NewClient(clientOpts...)

	s := &Server{
		db:       database,
		engine:   compat.NewEngine(database),
		selector: selection.New(database, database, client),
		runner:   scrape.NewRunner(client, database),
		registry: scrape.NewRegistry(),
	}

	// Caching is optional; the server runs fine without Redis.
	if cfg.RedisAddr != "" {
		reports, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, report caching disabled: %v", err)
		} else {
			s.cache = reports
		}
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout while scrapes run
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the API router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Blend lifecycle
	mux.HandleFunc("POST /api/scrape-start-blend", s.handleStartBlend)
	mux.HandleFunc("POST /api/scrape-join-blend", s.handleJoinBlend)
	mux.HandleFunc("POST /api/scrape-blend", s.handleScrapeBlend)
	mux.HandleFunc("POST /api/blend-final-status", s.handleBlendStatus)

	// Pair computations
	mux.HandleFunc("POST /api/compatibility", s.handleCompatibility)
	mux.HandleFunc("POST /api/common-movies", s.handleCommonMovies)
	mux.HandleFunc("POST /api/common-movies-summary", s.handleCommonMoviesSummary)
	mux.HandleFunc("POST /api/biggest-disagreement", s.handleBiggestDisagreement)

	// Operational
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := s.cache.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports which handles are being scraped right now.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	active := s.registry.Active()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"active_scrapes": active,
		"count":          len(active),
	})
}

// decodeRequest parses a JSON body into a validatable request type.
func decodeRequest(r *http.Request, req interface{ Validate() error }) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return req.Validate()
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
