package server

import (
	"log/slog"
	"net/http"

	"superstore-dashboard/internal/handlers"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const defaultMaxUploadBytes = 200 << 20

type Server struct {
	analytics      *services.Analytics
	mux            *http.ServeMux
	logger         *slog.Logger
	metrics        *observability.Metrics
	pageHandlers   *handlers.PageHandlers
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
	uploadHandlers *handlers.UploadHandlers
}

type Options struct {
	MaxUploadBytes int64
	// Metrics, when set, is served on /metrics.
	Metrics *observability.Metrics
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		analytics:      analytics,
		mux:            http.NewServeMux(),
		logger:         logger,
		metrics:        opts.Metrics,
		pageHandlers:   handlers.NewPageHandlers(analytics, logger),
		apiHandlers:    handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:    handlers.NewSSEHandlers(analytics, logger),
		exportHandlers: handlers.NewExportHandlers(analytics, logger),
		uploadHandlers: handlers.NewUploadHandlers(analytics, logger, opts.MaxUploadBytes),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Dataset management
	s.mux.HandleFunc("POST /upload", s.uploadHandlers.HandleUpload)
	s.mux.HandleFunc("POST /upload/reset", s.uploadHandlers.HandleReset)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/export.csv", s.exportHandlers.HandleCSV)
	s.mux.HandleFunc("GET /api/export.xlsx", s.exportHandlers.HandleXLSX)
	s.mux.HandleFunc("GET /charts/{chart}", s.exportHandlers.HandleChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
