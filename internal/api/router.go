package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lineupsheet/internal/api/apierr"
	"github.com/mcoot/lineupsheet/internal/api/handler"
	"github.com/mcoot/lineupsheet/internal/api/middleware"
	"github.com/mcoot/lineupsheet/internal/metrics"
	sharedmw "github.com/mcoot/lineupsheet/internal/middleware"
	"github.com/mcoot/lineupsheet/internal/services/lineup"
	"github.com/mcoot/lineupsheet/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	LineupService  *lineup.Service
	Storage        storage.Storage
	StorageType    string
	MemoryFallback bool
	Metrics        *metrics.Recorder
	// RateLimiter throttles create, claim and unclaim (optional)
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	lineupHandler := handler.NewLineupHandler(cfg.LineupService)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.StorageType, cfg.MemoryFallback, cfg.Logger)

	// Create middleware
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	limit := cfg.RateLimiter.Limit

	// API subrouter with common middleware. Routes hang directly off it so a
	// method mismatch is reported as 405 rather than falling through to 404.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Lineup routes; mutations are rate limited per client
	api.Handle("/lineups", limit(http.HandlerFunc(lineupHandler.Create))).Methods(http.MethodPost)
	api.HandleFunc("/lineups/{id}", lineupHandler.Get).Methods(http.MethodGet)
	api.Handle("/lineups/{id}/claim", limit(http.HandlerFunc(lineupHandler.Claim))).Methods(http.MethodPost)
	api.Handle("/lineups/{id}/unclaim", limit(http.HandlerFunc(lineupHandler.Unclaim))).Methods(http.MethodPost)

	// Operational endpoints
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	api.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return middleware.CORS(r)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	handler.WriteError(w, apierr.NewMethodNotAllowedError())
}
