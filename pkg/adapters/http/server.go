package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/logging"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/ports"
	"github.com/aretw0/tracery/pkg/runner"
	"github.com/aretw0/tracery/pkg/session"
)

// DefaultTemplate is expanded when a flatten request names no template.
const DefaultTemplate = "#origin#"

// maxBodySize bounds grammar uploads.
const maxBodySize = 1 << 20

// Server serves the REST API over a session manager.
type Server struct {
	Sessions *session.Manager

	spec         *openapi3.T
	gatherer     prometheus.Gatherer
	maxInputSize int
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithMaxInputSize bounds flatten templates in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithLogger sets the request failure logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// FlattenRequest is the POST /flatten body.
type FlattenRequest struct {
	Grammar  string `json:"grammar"`
	Template string `json:"template,omitempty"`
	Session  string `json:"session,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// FlattenResponse is the POST /flatten reply.
type FlattenResponse struct {
	Session string   `json:"session"`
	Results []string `json:"results"`
}

// NewHandler creates a new HTTP handler for the session manager.
// It fails when the embedded OpenAPI document does not validate.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	s := &Server{
		Sessions:     sessions,
		spec:         spec,
		maxInputSize: runner.DefaultMaxInputSize,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/grammars", s.ListGrammars)
	r.Route("/grammars/{name}", func(r chi.Router) {
		r.Get("/", s.GetGrammar)
		r.Put("/", s.PutGrammar)
		r.Delete("/", s.DeleteGrammar)
	})
	r.Post("/flatten", s.Flatten)
	r.Get("/events", s.SubscribeEvents)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Tracery API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tracery-http",
		"version":     strings.TrimSpace(tracery.Version),
		"api_version": apiVersion,
	})
}

// ListGrammars handles the GET /grammars request.
func (s *Server) ListGrammars(w http.ResponseWriter, r *http.Request) {
	names, err := s.Sessions.Loader().List(r.Context())
	if err != nil {
		s.fail(w, "List grammars", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetGrammar handles the GET /grammars/{name} request.
func (s *Server) GetGrammar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, err := s.Sessions.Loader().Load(r.Context(), name)
	if err != nil {
		s.fail(w, "Load grammar", err)
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

// PutGrammar handles the PUT /grammars/{name} request.
func (s *Server) PutGrammar(w http.ResponseWriter, r *http.Request) {
	store, ok := s.Sessions.Loader().(ports.GrammarStore)
	if !ok {
		http.Error(w, "Grammar store is read-only", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutGrammar: Invalid request body", "err", err)
		return
	}
	if sch := schema(s.spec, "Grammar"); sch != nil {
		if err := sch.VisitJSON(raw); err != nil {
			http.Error(w, fmt.Sprintf("Invalid grammar: %v", err), http.StatusBadRequest)
			return
		}
	}

	g, err := grammar.FromMap(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid grammar: %v", err), http.StatusBadRequest)
		return
	}

	name := chi.URLParam(r, "name")
	if err := store.Save(r.Context(), name, g); err != nil {
		s.fail(w, "Save grammar", err)
		return
	}
	s.Sessions.Invalidate(name)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGrammar handles the DELETE /grammars/{name} request.
func (s *Server) DeleteGrammar(w http.ResponseWriter, r *http.Request) {
	store, ok := s.Sessions.Loader().(ports.GrammarStore)
	if !ok {
		http.Error(w, "Grammar store is read-only", http.StatusMethodNotAllowed)
		return
	}

	name := chi.URLParam(r, "name")
	if err := store.Delete(r.Context(), name); err != nil {
		s.fail(w, "Delete grammar", err)
		return
	}
	s.Sessions.Invalidate(name)
	w.WriteHeader(http.StatusNoContent)
}

// Flatten handles the POST /flatten request.
func (s *Server) Flatten(w http.ResponseWriter, r *http.Request) {
	var body FlattenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Flatten: Invalid request body", "err", err)
		return
	}
	if body.Grammar == "" {
		http.Error(w, "Missing grammar", http.StatusBadRequest)
		return
	}
	if body.Template == "" {
		body.Template = DefaultTemplate
	}

	template, err := runner.SanitizeInputLimit(body.Template, s.maxInputSize)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid template: %v", err), http.StatusBadRequest)
		s.logger.Warn("Flatten: Template rejected", "err", err, "size", len(body.Template))
		return
	}

	resp, err := s.Sessions.Flatten(r.Context(), session.Request{
		Session:  body.Session,
		Grammar:  body.Grammar,
		Template: template,
		Count:    body.Count,
	})
	if err != nil {
		s.fail(w, "Flatten", err)
		return
	}

	s.writeJSON(w, http.StatusOK, FlattenResponse{Session: resp.Session, Results: resp.Results})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	watcher, ok := s.Sessions.Loader().(ports.Watchable)
	if !ok {
		http.Error(w, "Grammar store cannot be watched", http.StatusNotImplemented)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := watcher.Watch(r.Context())
	if err != nil {
		s.fail(w, "Watch", err)
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
		case name, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: grammar\ndata: %s\n\n", name)
			flusher.Flush()
		}
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrGrammarNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRecursionLimit):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrInvalidCount),
		errors.Is(err, session.ErrCountTooLarge),
		errors.Is(err, domain.ErrInvalidRule),
		errors.Is(err, domain.ErrInvalidGrammar),
		errors.Is(err, domain.ErrInvalidName):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
