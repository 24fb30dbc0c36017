package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/logging"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service defines what the HTTP adapter needs from the calculator service.
type Service interface {
	Settings() domain.Settings
	Calculate(useSums bool, in domain.InputSet) domain.Outcome
	Validate(useSums bool, in domain.InputSet) domain.ValidationResult
	Start(ctx context.Context, sessionID string, useSums bool) (*heartaxis.Result, error)
	Edit(ctx context.Context, sessionID string, field domain.Field, v domain.Value) (*heartaxis.Result, error)
	SwitchMode(ctx context.Context, sessionID string, useSums bool) (*heartaxis.Result, error)
	Reset(ctx context.Context, sessionID string) (*heartaxis.Result, error)
	Inspect(ctx context.Context, sessionID string) (*heartaxis.Result, error)
	End(ctx context.Context, sessionID string) (*heartaxis.Result, error)
	Remove(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

// CalculateRequest is the body of POST /calculate and POST /validate.
type CalculateRequest struct {
	UseSums bool            `json:"use_sums"`
	Inputs  domain.InputSet `json:"inputs"`
}

// ModeRequest is the body of PUT /sessions/{id}/mode.
type ModeRequest struct {
	UseSums *bool `json:"use_sums"`
}

// Server serves the calculator over HTTP.
type Server struct {
	svc      Service
	streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares the stream manager the service publishes to.
// Without it, SSE and WebSocket clients only see their own changes.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithMetrics exposes the registry on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{
		svc:    svc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			s.logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(spec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/settings", s.GetSettings)
	r.Post("/calculate", s.Calculate)
	r.Post("/validate", s.Validate)

	r.Get("/sessions", s.ListSessions)
	r.Post("/sessions/{id}", s.StartSession)
	r.Get("/sessions/{id}", s.InspectSession)
	r.Delete("/sessions/{id}", s.RemoveSession)
	r.Put("/sessions/{id}/fields/{field}", s.EditField)
	r.Put("/sessions/{id}/mode", s.SwitchMode)
	r.Post("/sessions/{id}/reset", s.ResetSession)
	r.Post("/sessions/{id}/end", s.EndSession)
	r.Get("/sessions/{id}/events", s.SubscribeEvents)
	r.Get("/sessions/{id}/live", s.LiveSession)

	return enableCORS(r)
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

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "heartaxis-http",
		"version":     strings.TrimSpace(heartaxis.Version),
		"api_version": apiVersion,
	})
}

// GetSettings handles the GET /settings request.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

// Calculate handles the POST /calculate request.
func (s *Server) Calculate(w http.ResponseWriter, r *http.Request) {
	var body CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("Calculate: invalid request body", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Calculate(body.UseSums, body.Inputs))
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("Validate: invalid request body", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Validate(body.UseSums, body.Inputs))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Sessions(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// StartSession handles the POST /sessions/{id} request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	useSums, ok := useSumsQuery(w, r)
	if !ok {
		return
	}

	res, err := s.svc.Start(r.Context(), sessionID, useSums)
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	status := http.StatusCreated
	if res.Restored {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// InspectSession handles the GET /sessions/{id} request.
func (s *Server) InspectSession(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "InspectSession", s.svc.Inspect)
}

// RemoveSession handles the DELETE /sessions/{id} request.
func (s *Server) RemoveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Remove(r.Context(), sessionID); err != nil {
		s.fail(w, "RemoveSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditField handles the PUT /sessions/{id}/fields/{field} request.
func (s *Server) EditField(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var name string
	if err := runtime.BindStyledParameterWithOptions("simple", "field", chi.URLParam(r, "field"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid field: %w", err))
		return
	}
	field, err := domain.ParseField(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	v, err := decodeReading(field, body["value"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.svc.Edit(r.Context(), sessionID, field, v)
	if err != nil {
		s.fail(w, "EditField", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SwitchMode handles the PUT /sessions/{id}/mode request.
func (s *Server) SwitchMode(w http.ResponseWriter, r *http.Request) {
	var body ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UseSums == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: use_sums is required"))
		return
	}
	s.respond(w, r, "SwitchMode", func(ctx context.Context, id string) (*heartaxis.Result, error) {
		return s.svc.SwitchMode(ctx, id, *body.UseSums)
	})
}

// ResetSession handles the POST /sessions/{id}/reset request.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "ResetSession", s.svc.Reset)
}

// EndSession handles the POST /sessions/{id}/end request.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "EndSession", s.svc.End)
}

// respond runs a session operation and writes its result.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (*heartaxis.Result, error)) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	res, err := fn(r.Context(), sessionID)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// sessionID binds the {id} path parameter, writing a 400 on failure.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid session id"))
		return "", false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	writeError(w, status, err)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeReading converts a loosely typed JSON value using the same rules as
// a persisted InputSet.
func decodeReading(field domain.Field, raw any) (domain.Value, error) {
	in, err := domain.InputSetFromMap(map[string]any{string(field): raw})
	if err != nil {
		return domain.Value{}, err
	}
	return in.Get(field), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// useSumsQuery binds the optional use_sums query parameter, defaulting to true.
func useSumsQuery(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var useSums *bool
	if err := runtime.BindQueryParameter("form", true, false, "use_sums", r.URL.Query(), &useSums); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid use_sums: %w", err))
		return false, false
	}
	if useSums == nil {
		return true, true
	}
	return *useSums, true
}
