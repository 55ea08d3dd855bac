package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/ent0n29/callbridge/internal/agent"
	"github.com/ent0n29/callbridge/internal/config"
	"github.com/ent0n29/callbridge/internal/observability"
	"github.com/ent0n29/callbridge/internal/policy"
	"github.com/ent0n29/callbridge/internal/ultravox"
)

// SessionCreator opens a voice-AI session for one call.
type SessionCreator interface {
	CreateCall(ctx context.Context, cfg agent.SessionConfig) (ultravox.SessionHandle, error)
}

type Server struct {
	cfg      config.Config
	sessions SessionCreator
	metrics  *observability.Metrics
	logger   *slog.Logger
	redactor policy.Redactor
	limiter  *ipRateLimiter
}

func New(cfg config.Config, sessions SessionCreator, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		redactor: policy.Redactor{Enabled: cfg.LogRedactCaller},
	}
	if cfg.WebhookRateLimit > 0 {
		s.limiter = newIPRateLimiter(rate.Limit(cfg.WebhookRateLimit), cfg.WebhookRateBurst, logger)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}
		r.Post("/incoming", s.handleIncoming)
	})

	return r
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.sessions != nil
	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "unavailable"
	}
	respondJSON(w, status, map[string]any{
		"status":       state,
		"stream_name":  s.cfg.StreamName,
		"agent_model":  s.cfg.Agent.Model,
		"agent_voice":  s.cfg.Agent.Voice,
		"rate_limited": s.limiter != nil,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
