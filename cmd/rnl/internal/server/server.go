// Package server exposes the ingest API: clients POST batches of log
// entries, which are masked again, persisted and re-emitted through the
// server logger.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/auth"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/config"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	apperrors "github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/errors"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/store"
)

// Server represents the HTTP server
type Server struct {
	config   *config.AppConfig
	store    *store.EntryStore
	tokens   *auth.TokenService
	redactor logging.Redactor
	logger   *logging.Logger
	mux      *http.ServeMux
	server   *http.Server
	version  string
}

// New creates a new server instance. Entry data is masked with redactor
// before it is stored.
func New(cfg *config.AppConfig, st *store.EntryStore, tokens *auth.TokenService, redactor logging.Redactor, version string) *Server {
	mux := http.NewServeMux()

	srv := &Server{
		config:   cfg,
		store:    st,
		tokens:   tokens,
		redactor: redactor,
		logger:   logging.GetLogger(),
		mux:      mux,
		version:  version,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  constants.HTTPReadTimeout,
			WriteTimeout: constants.HTTPWriteTimeout,
			IdleTimeout:  constants.HTTPIdleTimeout,
		},
	}

	srv.setupRoutes()
	return srv
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	prefix := s.config.Server.Prefix
	healthPath := prefix + "/health"

	requestLogger := logging.NewRequestLogger(logging.RequestLoggerConfig{
		Logger:     s.logger,
		SkipPaths:  []string{healthPath},
		LogHeaders: true,
	})
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return requestLogger.Middleware(apperrors.RecoveryMiddleware(h))
	}
	requireToken := auth.NewMiddleware(s.tokens).RequireToken

	s.mux.HandleFunc("GET "+healthPath, wrap(s.healthHandler))
	s.mux.HandleFunc("POST "+prefix+"/logs:ingest", wrap(requireToken(s.ingestHandler)))
	s.mux.HandleFunc("GET "+prefix+"/logs:list", wrap(requireToken(s.listHandler)))
	s.mux.HandleFunc("/", wrap(s.notFoundHandler))
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Infof("Starting server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Run starts the server and blocks until ctx is done, SIGINT or SIGTERM
// arrives, or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- s.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.logger.Infof("Received signal: %v", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteError(w, r, apperrors.NewAPIError(http.StatusNotFound, apperrors.CodeNotFound, "Endpoint not found"))
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.ErrorWithErr("Error encoding JSON response", err)
	}
}
