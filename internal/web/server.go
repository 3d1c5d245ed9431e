// Package web serves the movie list, add, edit and delete pages along with
// health and metrics endpoints.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/top-movies/internal/metrics"
	"github.com/user/top-movies/internal/movies"
	"github.com/user/top-movies/internal/store"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Movies   int64  `json:"movies"`
	Uptime   string `json:"uptime"`
}

// Options configures the web server
type Options struct {
	// SecretKey signs form tokens; form pages fail while it is empty
	SecretKey string
	// ImageBaseURL prefixes candidate poster paths on the search results page
	ImageBaseURL string
}

// Server handles HTTP requests for the movie pages, health checks and metrics
type Server struct {
	service   *movies.Service
	store     store.Store
	router    *httprouter.Router
	server    *http.Server
	pages     *pages
	csrf      *csrfProtector
	startTime time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(service *movies.Service, store store.Store, opts Options) (*Server, error) {
	p, err := loadPages(opts.ImageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		service:   service,
		store:     store,
		router:    httprouter.New(),
		pages:     p,
		csrf:      newCSRFProtector(opts.SecretKey),
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.instrument("list", s.handleList))
	s.router.GET("/add", s.instrument("add", s.handleAddPage))
	s.router.POST("/add", s.instrument("add", s.handleAddSearch))
	s.router.GET("/edit/:id", s.instrument("edit", s.handleEditPage))
	s.router.POST("/edit/:id", s.instrument("edit", s.handleEditSubmit))
	s.router.GET("/delete/:id", s.instrument("delete", s.handleDelete))

	s.router.GET("/health", s.instrument("health", s.handleHealth))
	s.router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, errPageNotFound)
	})
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("Recovered from panic")
		s.renderError(w, r, fmt.Errorf("panic: %v", v))
	}
}

// Handler returns the root handler with request logging applied
func (s *Server) Handler() http.Handler {
	return withRequestID(s.router)
}

// Start begins listening on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth returns JSON with status, database connectivity, and uptime
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	dbStatus := "healthy"
	var count int64
	if err := s.store.Ping(ctx); err != nil {
		dbStatus = fmt.Sprintf("unhealthy: %v", err)
	} else if count, err = s.store.CountMovies(ctx); err != nil {
		dbStatus = fmt.Sprintf("unhealthy: %v", err)
	} else {
		metrics.SetMovieCount(int(count))
	}

	uptime := s.GetUptime().Round(time.Second).String()

	status := "healthy"
	if dbStatus != "healthy" {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:   status,
		Database: dbStatus,
		Movies:   count,
		Uptime:   uptime,
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// GetUptime returns the server uptime
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.startTime)
}
