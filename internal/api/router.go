package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/committy/internal/api/handler"
	"github.com/mcoot/committy/internal/api/middleware"
	basemw "github.com/mcoot/committy/internal/middleware"
	"github.com/mcoot/committy/internal/services/auth"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/report"
	"github.com/mcoot/committy/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	CatalogService    *catalog.Service
	SessionController *session.Controller
	ReportService     *report.Service
	AuthService       *auth.Service
	// PublicBaseURL prefixes the shareable links in responses
	PublicBaseURL string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	cardHandler := handler.NewCardHandler(cfg.CatalogService, cfg.SessionController, cfg.PublicBaseURL)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.PublicBaseURL)
	reportHandler := handler.NewReportHandler(cfg.ReportService, cfg.CatalogService)

	// Create middleware
	adminMiddleware := middleware.Admin(cfg.AuthService)
	requestIDMiddleware := basemw.RequestID()
	loggingMiddleware := basemw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(requestIDMiddleware)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Catalog routes
	api.HandleFunc("/cards", cardHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/cards", cardHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/cards/ids", cardHandler.IDs).Methods(http.MethodGet)
	api.HandleFunc("/cards/links", cardHandler.Links).Methods(http.MethodGet)
	api.HandleFunc("/cards/count", cardHandler.Count).Methods(http.MethodGet)
	api.HandleFunc("/cards/random", cardHandler.Random).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}", cardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}/reports", reportHandler.Create).Methods(http.MethodPost)

	// Session routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{hand_size}/{token}", sessionHandler.Draw).Methods(http.MethodGet)
	api.HandleFunc("/matchups/{c1}/{c2}", sessionHandler.Matchup).Methods(http.MethodGet)
	api.HandleFunc("/verdicts", sessionHandler.Verdict).Methods(http.MethodPost)
	api.HandleFunc("/precedents/{c1}/{c2}", sessionHandler.Precedent).Methods(http.MethodGet)

	// Admin routes (all require the admin key)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/reports", reportHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/reports/{id}", reportHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/reports/{id}", reportHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/cards/{id}/reports", reportHandler.ClearForCard).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
