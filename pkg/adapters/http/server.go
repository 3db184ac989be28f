package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
	"github.com/aretw0/coredata/pkg/runner"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validating openapi document: %w", err)
	}
	return doc, nil
}

// Server exposes a ports.Service over HTTP.
type Server struct {
	Service ports.Service
	Logger  *slog.Logger
	Metrics http.Handler
	Version string

	apiVersion string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the request logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetricsHandler replaces the default promhttp handler served on /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithVersion sets the application version reported by /info.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for svc.
// It fails if the embedded OpenAPI document is invalid.
func NewHandler(svc ports.Service, opts ...ServerOption) (http.Handler, error) {
	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Service:    svc,
		Metrics:    promhttp.Handler(),
		Version:    "dev",
		apiVersion: swagger.Info.Version,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/records/{kind}/{name}", s.GetEntityRecords)
	r.Get("/records/{kind}/{name}/{id}", s.GetEntityRecord)
	r.Get("/embed", s.GetEmbedPreview)
	r.Get("/autosaves/{type}/{id}", s.GetAutosave)
	r.Get("/entities", s.ListEntities)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", s.Metrics)

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetEntityRecords handles GET /records/{kind}/{name}.
func (s *Server) GetEntityRecords(w http.ResponseWriter, r *http.Request) {
	kind, name := chi.URLParam(r, "kind"), chi.URLParam(r, "name")
	if err := runner.SanitizeInputs(&kind, &name); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid input: %v", err)})
		return
	}

	records, err := s.Service.EntityRecords(r.Context(), kind, name)
	if err != nil {
		s.writeError(w, "GetEntityRecords", err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

// GetEntityRecord handles GET /records/{kind}/{name}/{id}.
func (s *Server) GetEntityRecord(w http.ResponseWriter, r *http.Request) {
	kind, name, id := chi.URLParam(r, "kind"), chi.URLParam(r, "name"), chi.URLParam(r, "id")
	if err := runner.SanitizeInputs(&kind, &name, &id); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid input: %v", err)})
		return
	}

	record, err := s.Service.EntityRecord(r.Context(), kind, name, id)
	if err != nil {
		s.writeError(w, "GetEntityRecord", err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// GetEmbedPreview handles GET /embed?url=.
func (s *Server) GetEmbedPreview(w http.ResponseWriter, r *http.Request) {
	url, err := runner.SanitizeInput(r.URL.Query().Get("url"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid url query parameter: %v", err)})
		return
	}

	preview, err := s.Service.EmbedPreview(r.Context(), url)
	if err != nil {
		s.writeError(w, "GetEmbedPreview", err)
		return
	}
	s.writeJSON(w, http.StatusOK, preview)
}

// GetAutosave handles GET /autosaves/{type}/{id}.
func (s *Server) GetAutosave(w http.ResponseWriter, r *http.Request) {
	var postID int
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &postID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid format for parameter id: %v", err)})
		return
	}

	postType, err := runner.SanitizeInput(chi.URLParam(r, "type"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid input: %v", err)})
		return
	}

	autosave, err := s.Service.Autosave(r.Context(), postType, postID)
	if err != nil {
		s.writeError(w, "GetAutosave", err)
		return
	}
	s.writeJSON(w, http.StatusOK, autosave)
}

// ListEntities handles GET /entities.
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Service.Entities(r.Context()))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "coredata-http",
		"version":     s.Version,
		"api_version": s.apiVersion,
	})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps resolver errors to response codes.
// Client errors from the upstream API are passed through, anything else upstream is a 502.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrEntityConfigNotFound) || errors.Is(err, domain.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, domain.ErrFetchFailed) {
		return http.StatusBadGateway
	}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		if fe.Status >= 400 && fe.Status < 500 {
			return fe.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var fe *domain.FetchError
	if errors.As(err, &fe) {
		body.Code = fe.Code
	}

	if status >= 500 {
		s.Logger.Error(op+" failed", "error", err, "status", status)
	} else {
		s.Logger.Debug(op+" failed", "error", err, "status", status)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
