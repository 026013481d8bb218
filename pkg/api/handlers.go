package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pacstage/pkg/buildinfo"
	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/history"
	"github.com/matzehuels/pacstage/pkg/pipeline"
	"github.com/matzehuels/pacstage/pkg/render/nodelink"
)

// ResolveResponse is the body of GET /v1/resolve.
type ResolveResponse struct {
	Seeds    []string    `json:"seeds"`
	Packages []string    `json:"packages"`
	Edges    []deps.Edge `json:"edges"`
	Cached   bool        `json:"cached"`
}

// ProviderResponse is the body of GET /v1/providers.
type ProviderResponse struct {
	Dependency string `json:"dependency"`
	Provider   string `json:"provider"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

var contentTypes = map[string]string{
	nodelink.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	nodelink.FormatSVG: "image/svg+xml",
	nodelink.FormatPDF: "application/pdf",
	nodelink.FormatPNG: "image/png",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleResolve handles GET /v1/resolve?pkg=a&pkg=b[&unique=true][&max_depth=N][&refresh=true].
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	opts, err := resolveOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Command = "api resolve"

	res, err := s.runner.Resolve(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	edges := res.Resolution.Edges
	if edges == nil {
		edges = []deps.Edge{}
	}
	s.writeJSON(w, http.StatusOK, ResolveResponse{
		Seeds:    nonNil(opts.Seeds),
		Packages: nonNil(res.Packages),
		Edges:    edges,
		Cached:   res.CacheInfo.ResolveHit,
	})
}

// handleProviders handles GET /v1/providers?dep=x.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	dep := r.URL.Query().Get("dep")
	if dep == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "missing dep parameter"))
		return
	}

	res, err := s.runner.Providers(r.Context(), []string{dep}, pipeline.Options{
		Refresh: boolParam(r, "refresh"),
		Command: "api providers",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ProviderResponse{Dependency: dep, Provider: res.Providers[dep]})
}

// handleGraph handles GET /v1/graph?pkg=a[&format=svg][&detailed=true].
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := resolveOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.GraphFormat = r.URL.Query().Get("format")
	if opts.GraphFormat == "" {
		opts.GraphFormat = nodelink.FormatDOT
	}
	opts.Detailed = boolParam(r, "detailed")
	opts.Command = "api graph"

	_, data, err := s.runner.Graph(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[opts.GraphFormat])
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleHistoryList handles GET /v1/history[?limit=N].
func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runs, err := s.store().List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleHistoryGet handles GET /v1/history/{id}.
func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store().Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if run == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "run %q not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) store() history.Store {
	if s.runner.History == nil {
		return history.NewNullStore()
	}
	return s.runner.History
}

// resolveOptions reads the resolve query parameters shared by /resolve and
// /graph.
func resolveOptions(r *http.Request) (pipeline.Options, error) {
	seeds := r.URL.Query()["pkg"]
	depth, err := intParam(r, "max_depth")
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Seeds:    seeds,
		MaxDepth: depth,
		Unique:   boolParam(r, "unique"),
		Refresh:  boolParam(r, "refresh"),
	}, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, raw)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StatusCode maps an error to the HTTP status the API responds with.
func StatusCode(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Code: string(code), Error: errors.UserMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}
