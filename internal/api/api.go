// Package api exposes the lead store and outreach pipeline over REST.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/outreach"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

// Options wires the server's collaborators.
type Options struct {
	Store     store.Store
	Registry  *pipeline.Registry
	Generator *outreach.Generator
	Policy    outreach.Policy
	Targeting *outreach.Targeting
	Sender    *outreach.Sender

	// ExportDir receives files written by the export endpoint.
	ExportDir string
	// Token, when set, is required as a bearer token on /api routes.
	Token string
}

// Server is the REST API server.
type Server struct {
	store     store.Store
	registry  *pipeline.Registry
	generator *outreach.Generator
	policy    outreach.Policy
	targeting *outreach.Targeting
	sender    *outreach.Sender
	exportDir string
	token     string
}

// NewServer builds a Server from Options.
func NewServer(opts Options) *Server {
	return &Server{
		store:     opts.Store,
		registry:  opts.Registry,
		generator: opts.Generator,
		policy:    opts.Policy,
		targeting: opts.Targeting,
		sender:    opts.Sender,
		exportDir: opts.ExportDir,
		token:     opts.Token,
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth)

		r.Get("/leads", s.handleListLeads)
		r.Post("/leads", s.handleCreateLead)
		r.Get("/leads/{id}", s.handleGetLead)
		r.Post("/leads/status", s.handleUpdateStatus)
		r.Post("/leads/export", s.handleExport)

		r.Post("/emails/generate", s.handleGenerateEmail)
		r.Post("/emails/send", s.handleSendEmails)

		r.Get("/dashboard/stats", s.handleDashboardStats)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("api: shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("api: shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("api: starting server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "api: server listen")
	}
	return nil
}

// auth enforces the bearer token with a constant-time compare. With no
// token configured, the API is open.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
