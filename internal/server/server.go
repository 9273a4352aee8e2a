package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/erp-api/internal/attachments"
	"github.com/hongminglow/erp-api/internal/auth"
	"github.com/hongminglow/erp-api/internal/config"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/handlers"
	"github.com/hongminglow/erp-api/internal/middleware"
	"github.com/hongminglow/erp-api/internal/storage/replicated"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store *replicated.Store, publisher events.Publisher) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, store, publisher),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Routes builds the full handler tree. Public routes are registered before
// the authenticated subrouter so they match first.
func Routes(cfg config.Config, store *replicated.Store, publisher events.Publisher) http.Handler {
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	files := attachments.NewStore(cfg.UploadDir)

	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(store, tokenManager, publisher).Register(r)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir())))).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.RequireAuth(tokenManager, cfg.AuthRequired))
	handlers.NewEmployeeHandler(store, publisher).Register(api)
	handlers.NewDaybookHandler(store, files, cfg.PublicBaseURL, cfg.BalancePolicy, publisher).Register(api)
	handlers.NewLedgerHandler(store, cfg.Currency, publisher).Register(api)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(r))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
