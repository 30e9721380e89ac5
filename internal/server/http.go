package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lgiavedoni/claw-tools/internal/interfaces"
	"github.com/lgiavedoni/claw-tools/internal/metrics"
	"github.com/lgiavedoni/claw-tools/internal/types"
)

// HTTPServer serves the dashboard, the feed API and the metrics endpoint
type HTTPServer struct {
	config      *types.Config
	feedService interfaces.FeedService
	server      *http.Server

	metrics *metrics.FeedMetrics

	// Static files (embedded or filesystem)
	staticFS fs.FS

	// Server lifecycle
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	isRunning  bool
	runningMux sync.RWMutex

	// Statistics
	stats      HTTPServerStats
	statsMutex sync.RWMutex
}

// HTTPServerStats represents statistics about the HTTP server
type HTTPServerStats struct {
	RequestsHandled int64 `json:"requests_handled"`
	RequestErrors   int64 `json:"request_errors"`
	StreamClients   int64 `json:"stream_clients"`
	IsRunning       bool  `json:"is_running"`
}

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Services  map[string]interface{} `json:"services"`
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(config *types.Config, feedService interfaces.FeedService, staticFS fs.FS) *HTTPServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &HTTPServer{
		config:      config,
		feedService: feedService,
		metrics:     metrics.GetFeedMetrics(),
		staticFS:    staticFS,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.runningMux.Lock()
	defer s.runningMux.Unlock()

	if s.isRunning {
		return fmt.Errorf("HTTP server is already running")
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.isRunning = true
	s.updateStats(func(stats *HTTPServerStats) {
		stats.IsRunning = true
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log.Printf("HTTP server starting on port %d", s.config.HTTPPort)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *HTTPServer) Stop() error {
	s.runningMux.Lock()
	defer s.runningMux.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	s.wg.Wait()
	s.isRunning = false
	s.updateStats(func(stats *HTTPServerStats) {
		stats.IsRunning = false
	})

	log.Printf("HTTP server stopped")
	return nil
}

// GetStats returns server statistics
func (s *HTTPServer) GetStats() HTTPServerStats {
	s.statsMutex.RLock()
	defer s.statsMutex.RUnlock()
	return s.stats
}

// setupRoutes configures all HTTP routes
func (s *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// API routes
	mux.HandleFunc("/api/health", s.middleware("health", s.handleHealth))
	mux.HandleFunc("/api/feed", s.middleware("feed", s.handleFeed))
	mux.HandleFunc("/api/files", s.middleware("files", s.handleFiles))
	mux.HandleFunc("/api/feed/stream", s.middleware("stream", s.handleFeedStream))

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Dashboard static files
	mux.HandleFunc("/", s.middleware("index", s.handleIndex))
	mux.HandleFunc("/static/", s.middleware("static", s.handleStatic))
}

// middleware applies CORS headers, request IDs and counters to a handler.
// CORS stays permissive: the dashboard may be served from another origin
// during development.
func (s *HTTPServer) middleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Request-Id", uuid.NewString())

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		s.metrics.RecordHTTPRequest(route)
		s.updateStats(func(stats *HTTPServerStats) {
			stats.RequestsHandled++
		})

		next(w, r)
	}
}

// handleHealth handles the health check endpoint
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   getVersion(),
		Services: map[string]interface{}{
			"feed_service": s.feedService.GetStats(),
			"http_server":  s.GetStats(),
		},
	}

	s.sendJSONResponse(w, http.StatusOK, response)
}

// handleFeed handles the classified feed endpoint
func (s *HTTPServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	dir, file, limit, level, err := s.parseFeedQuery(r)
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid query parameters: %v", err))
		return
	}

	result, err := s.feedService.Feed(dir, file, limit, level)
	if err != nil {
		log.Printf("Error assembling feed: %v", err)
		s.sendErrorResponse(w, http.StatusInternalServerError, "Failed to read log feed")
		return
	}

	s.sendJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

// handleFiles handles the log file listing endpoint
func (s *HTTPServer) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = s.config.LogDir
	}

	files, err := s.feedService.Files(dir)
	if err != nil {
		log.Printf("Error listing log files: %v", err)
		s.sendErrorResponse(w, http.StatusInternalServerError, "Failed to list log files")
		return
	}

	s.sendJSONResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    files,
	})
}

// parseFeedQuery parses feed query parameters, applying configured defaults
func (s *HTTPServer) parseFeedQuery(r *http.Request) (dir, file string, limit int, level string, err error) {
	query := r.URL.Query()

	dir = query.Get("dir")
	if dir == "" {
		dir = s.config.LogDir
	}

	file = query.Get("file")
	if file == "" {
		file = s.config.LogFile
	}

	limit = s.config.DefaultLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 1000 {
			return "", "", 0, "", fmt.Errorf("invalid limit, must be between 1 and 1000")
		}
	}

	level = strings.ToUpper(query.Get("level"))
	return dir, file, limit, level, nil
}

// sendJSONResponse sends a JSON response
func (s *HTTPServer) sendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
		s.updateStats(func(stats *HTTPServerStats) {
			stats.RequestErrors++
		})
	}
}

// sendErrorResponse sends an error response
func (s *HTTPServer) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.metrics.HTTPErrorsTotal.Inc()
	s.updateStats(func(stats *HTTPServerStats) {
		stats.RequestErrors++
	})

	s.sendJSONResponse(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// handleIndex serves the dashboard page
func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.serveEmbeddedFile(w, r, "index.html", "text/html; charset=utf-8")
}

// handleStatic serves static dashboard assets (CSS, JS)
func (s *HTTPServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	if path == "" || strings.Contains(path, "..") {
		http.NotFound(w, r)
		return
	}

	contentType := ""
	switch {
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	}

	s.serveEmbeddedFile(w, r, path, contentType)
}

// serveEmbeddedFile serves a file from the embedded filesystem
func (s *HTTPServer) serveEmbeddedFile(w http.ResponseWriter, r *http.Request, filename, contentType string) {
	data, err := fs.ReadFile(s.staticFS, filename)
	if err != nil {
		log.Printf("Error reading embedded file %s: %v", filename, err)
		http.NotFound(w, r)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// updateStats safely updates the server statistics
func (s *HTTPServer) updateStats(updateFunc func(*HTTPServerStats)) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	updateFunc(&s.stats)
}

// getVersion returns the application version (placeholder for build-time injection)
func getVersion() string {
	return "1.0.0"
}
