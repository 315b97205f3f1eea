// Package api implements the assistant's HTTP surface: the
// authenticated chat endpoint and the health/version endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fenwick/mira-agent/internal/agent"
	"github.com/fenwick/mira-agent/internal/buildinfo"
	"github.com/fenwick/mira-agent/internal/llm"
)

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP API server.
type Server struct {
	listen       string
	orchestrator *agent.Orchestrator
	auth         *Authenticator
	logger       *slog.Logger
	server       *http.Server
}

// NewServer creates the API server. auth may be nil only in tests.
func NewServer(listen string, orch *agent.Orchestrator, auth *Authenticator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		listen:       listen,
		orchestrator: orch,
		auth:         auth,
		logger:       logger.With("component", "api"),
	}
}

// Handler builds the route table. Exposed so tests can drive it with
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/assistant/chat", s.requireAuth(s.handleChat))

	mux.HandleFunc("GET /v1/version", s.handleVersion)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        s.listen,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// Chat requests span two reasoning calls plus tool execution.
		WriteTimeout: 10 * time.Minute,
	}

	s.logger.Info("starting API server", "listen", s.listen)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":    "Mira",
		"version": buildinfo.Version,
		"status":  "ok",
	}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, buildinfo.Info(), s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}

// ChatRequest is the inbound chat payload: the full turn history, the
// caller keeps conversation state.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is one role-tagged turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest,
			"I couldn't read that request.", "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		s.errorResponse(w, http.StatusBadRequest,
			"Please send at least one message.", "messages is required")
		return
	}

	turns := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.orchestrator.Handle(r.Context(), turns)
	if err != nil {
		s.chatError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, reply, s.logger)
}

// chatError maps orchestrator failures to the error envelope. The
// message field is rendered directly to the owner, so it stays in
// plain language regardless of the status code.
func (s *Server) chatError(w http.ResponseWriter, err error) {
	switch {
	case llm.IsRateLimited(err):
		s.errorResponse(w, http.StatusTooManyRequests,
			"I'm getting too many requests right now. Please try again in a moment.",
			"reasoning service rate limited")
	case llm.IsQuotaExhausted(err):
		s.errorResponse(w, http.StatusPaymentRequired,
			"The assistant's usage budget is exhausted. Please check the account's plan.",
			"reasoning service quota exhausted")
	default:
		s.logger.Error("chat failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError,
			"Something went wrong on my side. Please try again.",
			"internal error")
	}
}

// errorResponse writes the error envelope. message is shown to the
// owner verbatim; detail is the machine-oriented error string.
func (s *Server) errorResponse(w http.ResponseWriter, code int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, map[string]any{
		"message": message,
		"error":   detail,
	}, s.logger)
}

var errNoToken = errors.New("missing bearer token")

// requireAuth wraps a handler with bearer-credential validation.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next(w, r)
			return
		}
		owner, err := s.auth.Authenticate(r)
		if err != nil {
			s.logger.Warn("authentication failed", "error", err)
			s.errorResponse(w, http.StatusUnauthorized,
				"You need to sign in to use the assistant.",
				fmt.Sprintf("unauthorized: %v", err))
			return
		}
		next(w, r.WithContext(withOwner(r.Context(), owner)))
	}
}
