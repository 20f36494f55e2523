package api

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/config"
	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/metrics"
	"github.com/JakeFAU/trendwatch/internal/policy/ratelimit"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Fetcher is the orchestrator surface the HTTP layer drives.
type Fetcher interface {
	Trigger() trends.Snapshot
	Reset() trends.Snapshot
	Snapshot() trends.Snapshot
}

// Server wires HTTP handlers to the fetch orchestrator.
type Server struct {
	router         chi.Router
	fetcher        Fetcher
	limiter        *ratelimit.Limiter
	refreshSeconds int
	logger         *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(fetcher Fetcher, cfg config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		fetcher:        fetcher,
		limiter:        ratelimit.New(ratelimit.Config{PerMinute: cfg.ResetPerMinute}),
		refreshSeconds: cfg.RefreshSeconds,
		logger:         logging.Named(logger, "api"),
	}
	if s.refreshSeconds <= 0 {
		s.refreshSeconds = 5
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(metrics.Middleware)

	r.Get("/", s.index)
	r.Get("/fetch_again", s.fetchAgain)
	r.Get("/api/trends", s.apiTrends)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// index triggers a fetch when idle and renders whatever state results.
func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	s.renderSnapshot(w, s.fetcher.Trigger())
}

// fetchAgain discards the cached outcome and starts over on a fresh session.
func (s *Server) fetchAgain(w http.ResponseWriter, r *http.Request) {
	if client := clientAddress(r); !s.limiter.Allow(client) {
		s.logger.Warn("reset throttled", zap.String("client", client))
		http.Error(w, "too many reset requests", http.StatusTooManyRequests)
		return
	}
	s.fetcher.Reset()
	s.renderLoading(w, "/")
}

type trendsResponse struct {
	Status string                 `json:"status"`
	Record *trends.RecordDocument `json:"record,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func (s *Server) apiTrends(w http.ResponseWriter, _ *http.Request) {
	snap := s.fetcher.Trigger()
	if snap.Status != trends.StatusCompleted || snap.Outcome == nil {
		s.writeJSON(w, http.StatusAccepted, trendsResponse{Status: "fetching"})
		return
	}
	if !snap.Outcome.OK() {
		s.writeJSON(w, http.StatusBadGateway, trendsResponse{Status: "error", Error: snap.Outcome.Reason})
		return
	}
	doc := snap.Outcome.Record.Document()
	s.writeJSON(w, http.StatusOK, trendsResponse{Status: "ready", Record: &doc})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	snap := s.fetcher.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"fetch":   snap.Status.String(),
		"attempt": snap.Attempt,
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}
