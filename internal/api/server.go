// Package api implements the HTTP surface of the report service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hakim/scanreports/internal/config"
	"github.com/hakim/scanreports/internal/metrics"
	"github.com/hakim/scanreports/internal/storage"
)

// Options configures a Server
type Options struct {
	Provider   storage.Provider
	Logger     zerolog.Logger
	Metrics    *metrics.Registry // a private registry is created when nil
	CORS       config.CORSConfig
	Pagination config.PaginationConfig
	CacheSize  int
	Now        func() time.Time // defaults to time.Now
}

// Server represents the HTTP API server
type Server struct {
	provider   storage.Provider
	log        zerolog.Logger
	metrics    *metrics.Registry
	cors       config.CORSConfig
	pagination config.PaginationConfig
	cache      *reportCache
	now        func() time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	if opts.Provider == nil {
		return nil, errors.New("api: report provider is required")
	}

	defaults := config.DefaultConfig()
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaults.Cache.Size
	}
	if opts.Pagination.DefaultLimit <= 0 {
		opts.Pagination.DefaultLimit = defaults.Pagination.DefaultLimit
	}
	if opts.Pagination.MaxLimit < opts.Pagination.DefaultLimit {
		opts.Pagination.MaxLimit = opts.Pagination.DefaultLimit
	}

	cache, err := newReportCache(opts.CacheSize, opts.Metrics)
	if err != nil {
		return nil, err
	}

	return &Server{
		provider:   opts.Provider,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		cors:       opts.CORS,
		pagination: opts.Pagination,
		cache:      cache,
		now:        opts.Now,
	}, nil
}

// Routes registers the API endpoints on a new mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/reports", s.handle(s.handleListReports))
	mux.HandleFunc("GET /api/reports/latest", s.handle(s.handleLatestReport))
	mux.HandleFunc("GET /api/reports/{report_id}", s.handle(s.handleGetReport))

	return mux
}

// Handler returns the routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	// PanicRecovery sits inside AccessLog and Metrics so recovered panics
	// are still counted and logged as 500s.
	return chain(s.Routes(),
		RequestID(s.log),
		AccessLog(),
		Metrics(s.metrics),
		PanicRecovery(s.log),
		CORS(s.cors),
	)
}

// loggerFor returns the request-scoped logger, or the server logger when the
// request did not pass through RequestID
func (s *Server) loggerFor(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Detail: message,
		Error:  http.StatusText(status),
		Code:   status,
	})
}
