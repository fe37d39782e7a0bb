package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/nlu"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server exposes a Runner over HTTP.
type Server struct {
	Runner  *runner.Runner
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the runner.
func NewHandler(r *runner.Runner, opts ...Option) http.Handler {
	s := &Server{Runner: r}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return enableCORS(s.Router())
}

// Router returns the chi router without the CORS wrapper.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Get("/flows", s.handleListFlows)
	r.Get("/events", s.handleEvents)
	r.Post("/navigate", s.handleNavigate)
	r.Post("/triggers/rank", s.handleRankTriggers)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleDeleteSession)
		r.Post("/{id}/turns", s.handleTurn)
		r.Post("/{id}/contexts", s.handleAppendContexts)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(colloquy.Version),
	})
}

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.Runner.Engine.Flows(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flows)
}

type navigateRequest struct {
	Position    domain.Position `json:"position"`
	Destination string          `json:"destination"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	target, err := s.Runner.Engine.Navigate(r.Context(), req.Position, req.Destination)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"target": target})
}

type rankRequest struct {
	Triggers map[string]domain.Trigger `json:"triggers"`
}

func (s *Server) handleRankTriggers(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ranked": s.Runner.Engine.RankTriggers(req.Triggers)})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Runner.Manager.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

type createSessionRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	state, err := s.Runner.Start(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Runner.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Runner.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type turnResponse struct {
	TurnID       string                 `json:"turn_id"`
	Decision     string                 `json:"decision"`
	Action       string                 `json:"action"`
	Sends        []domain.SendContent   `json:"sends,omitempty"`
	Position     domain.Position        `json:"position"`
	Node         *domain.Node           `json:"node,omitempty"`
	Ranked       []domain.RankedTrigger `json:"ranked,omitempty"`
	Diff         *domain.SessionDiff    `json:"diff,omitempty"`
	ForcePersist bool                   `json:"force_persist"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	u, err := nlu.Decode(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_understanding", err.Error())
		return
	}
	var opts []colloquy.TurnOption
	if topic, ok := raw["topic"].(string); ok {
		opts = append(opts, colloquy.WithTopic(topic))
	}

	out, err := s.Runner.HandleTurn(r.Context(), id, u, opts...)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, turnResponse{
		TurnID:       out.TurnID,
		Decision:     out.Decision.Describe(),
		Action:       out.Decision.Kind(),
		Sends:        out.Decision.Sends,
		Position:     out.Session.Position,
		Node:         out.Node,
		Ranked:       out.Ranked,
		Diff:         out.Diff,
		ForcePersist: out.ForcePersist,
	})
}

type contextsRequest struct {
	Names string `json:"names"`
	TTL   any    `json:"ttl"`
}

func (s *Server) handleAppendContexts(w http.ResponseWriter, r *http.Request) {
	var req contextsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	state, err := s.Runner.AppendContexts(r.Context(), chi.URLParam(r, "id"), req.Names, colloquy.ResolveTTL(req.TTL))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"contexts": state.Contexts})
}

// handleEvents streams flow changes as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "unsupported", "streaming not supported")
		return
	}

	events, err := s.Runner.Engine.Watch(r.Context())
	if err != nil {
		respondError(w, http.StatusNotImplemented, "unavailable", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: flows_changed\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// -- Helpers --

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, domain.ErrUnresolvableDestination):
		respondError(w, http.StatusUnprocessableEntity, "unresolvable_destination", err.Error())
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrNodeNotFound):
		respondError(w, http.StatusConflict, "stale_position", err.Error())
	default:
		s.Logger.Error("request failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
