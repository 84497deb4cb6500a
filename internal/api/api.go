// Package api exposes the harvest pipeline over HTTP.
//
// The server is deliberately small: one endpoint to run a harvest, one
// to inspect the manifest registry, and a health probe. Runs execute
// synchronously; callers needing long-running jobs should front this
// with their own queueing.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/depharvest/pkg/buildinfo"
	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/errors"
	"github.com/matzehuels/depharvest/pkg/gitlab"
	"github.com/matzehuels/depharvest/pkg/harvest"
	"github.com/matzehuels/depharvest/pkg/manifest/languages"
	"github.com/matzehuels/depharvest/pkg/render"
)

// Server handles harvest requests over HTTP.
type Server struct {
	token   string
	backend cache.Cache
	logger  *log.Logger

	// runFunc executes one harvest; replaced in tests.
	runFunc func(ctx context.Context, req HarvestRequest) (*harvest.Result, error)

	httpServer *http.Server
}

// NewServer returns a server bound to addr. The token is used for all
// upstream GitLab requests; the cache backend is shared across runs.
func NewServer(addr, token string, backend cache.Cache, logger *log.Logger) *Server {
	s := &Server{token: token, backend: backend, logger: logger}
	s.runFunc = s.runHarvest
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/harvests", s.handleHarvest)
		r.Get("/registry", s.handleRegistry)
	})
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("api server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// HarvestRequest is the body of POST /v1/harvests.
type HarvestRequest struct {
	// ProjectURL locates the repository, e.g.
	// "https://gitlab.com/group/repo" or "group/repo".
	ProjectURL string `json:"project_url"`

	// Ref is the branch, tag, or commit to harvest. Defaults to "main".
	Ref string `json:"ref,omitempty"`

	// Language scopes the harvest to one language's manifests.
	Language string `json:"language,omitempty"`

	// Auto detects the primary language and scopes to it.
	Auto bool `json:"auto,omitempty"`

	// FailFast aborts on the first failed content batch.
	FailFast bool `json:"fail_fast,omitempty"`

	// Format selects the response body: "json" (default) or "dot".
	Format string `json:"format,omitempty"`
}

// HarvestResponse is the body of a successful harvest run.
type HarvestResponse struct {
	ID        string          `json:"id"`
	Project   string          `json:"project"`
	Ref       string          `json:"ref"`
	StartedAt time.Time       `json:"started_at"`
	Result    *harvest.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	type patternInfo struct {
		Glob string `json:"glob"`
	}
	type langInfo struct {
		Name     string        `json:"name"`
		Patterns []patternInfo `json:"patterns"`
	}
	var out []langInfo
	for _, lang := range languages.Default() {
		info := langInfo{Name: lang.Name}
		for _, p := range lang.Patterns {
			info.Patterns = append(info.Patterns, patternInfo{Glob: p.Glob})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	var req HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectURL == "" {
		writeError(w, http.StatusBadRequest, "project_url is required")
		return
	}
	if req.Ref == "" {
		req.Ref = "main"
	}

	id := uuid.NewString()
	started := time.Now().UTC()
	logger := s.logger.With("run", id, "project", req.ProjectURL)
	logger.Info("harvest started")

	result, err := s.runFunc(r.Context(), req)
	if err != nil {
		logger.Error("harvest failed", "error", err)
		writeError(w, statusFor(err), errors.UserMessage(err))
		return
	}
	logger.Info("harvest finished", "languages", len(result.Dependencies), "names", result.TotalNames())

	if req.Format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.ToDOT(result.Dependencies)))
		return
	}
	writeJSON(w, http.StatusOK, HarvestResponse{
		ID:        id,
		Project:   req.ProjectURL,
		Ref:       req.Ref,
		StartedAt: started,
		Result:    result,
	})
}

// runHarvest wires the real pipeline for one request.
func (s *Server) runHarvest(ctx context.Context, req HarvestRequest) (*harvest.Result, error) {
	project, err := gitlab.ProjectFromURL(req.ProjectURL)
	if err != nil {
		return nil, err
	}
	base, err := harvest.BaseURL(req.ProjectURL)
	if err != nil {
		return nil, err
	}
	client := gitlab.NewClient(base, s.token, s.backend)
	src := harvest.NewGitLabSource(client, project, req.Ref)
	return harvest.NewRunner(src, project).Run(ctx, harvest.Options{
		Scope:     req.Language,
		AutoScope: req.Auto,
		FailFast:  req.FailFast,
		Logger:    s.logger,
	})
}

// statusFor maps pipeline error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidProject, errors.ErrCodeInvalidLanguage:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
