// Package httpapi exposes the service's HTTP surface: the webhook endpoints
// the messaging platform calls, health and stats endpoints for operators,
// and Prometheus metrics.
package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adityakx/sehat/internal/memory"
	"github.com/adityakx/sehat/internal/observability"
	"github.com/adityakx/sehat/internal/whatsapp"
)

// Queue accepts inbound messages for asynchronous processing.
type Queue interface {
	Enqueue(userID, text string) bool
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	queue       Queue
	store       memory.Store
	verifyToken string
	services    map[string]bool
	logger      *slog.Logger
	router      chi.Router
}

type Options struct {
	Queue       Queue
	Store       memory.Store
	VerifyToken string
	// Services reports which external integrations have credentials, for
	// the health endpoint.
	Services map[string]bool
	Logger   *slog.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		queue:       opts.Queue,
		store:       opts.Store,
		verifyToken: opts.VerifyToken,
		services:    opts.Services,
		logger:      opts.Logger.With("component", "httpapi"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/webhook", s.handleVerify)
	r.Post("/webhook", s.handleWebhook)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Get("/v1/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleVerify answers the platform's subscription handshake: echo the
// challenge when the verify token matches, reject otherwise.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "" || token == "" {
		respondError(w, http.StatusBadRequest, "missing verification parameters")
		return
	}
	if mode != "subscribe" || token != s.verifyToken {
		s.logger.Warn("webhook verification rejected", "mode", mode)
		respondError(w, http.StatusForbidden, "verification failed")
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	inbound, err := whatsapp.ParseWebhook(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	for _, msg := range inbound {
		if !s.queue.Enqueue(msg.From, msg.Text) {
			s.logger.Warn("message dropped at webhook", "user", msg.From)
		}
	}

	// The platform retries on non-2xx; processing failures are ours to
	// absorb, so the webhook always acknowledges valid payloads.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"services": s.services,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_conversations": stats.TotalTurns,
		"unique_users":        stats.UniqueUsers,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
