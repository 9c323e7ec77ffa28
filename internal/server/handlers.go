package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/badgeforge/pkg/buildinfo"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
	"github.com/matzehuels/badgeforge/pkg/store"
)

// =============================================================================
// Response Types
// =============================================================================

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type generateResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    generatedBadge  `json:"data"`
	Config  json.RawMessage `json:"config,omitempty"`
}

type generatedBadge struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Hash     string `json:"hash"`
	Cached   bool   `json:"cached"`
}

type templateSummary struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Builtin     bool      `json:"builtin"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type templateRequest struct {
	Description string          `json:"description"`
	Document    json.RawMessage `json:"document"`
}

// =============================================================================
// Service Handlers
// =============================================================================

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "badgeforge badge API",
		"version": buildinfo.Version,
		"health":  "/api/v1/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "badgeforge",
	})
}

// =============================================================================
// Badge Handlers
// =============================================================================

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.execute(r, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Message: "Badge generated successfully",
		Data: generatedBadge{
			Base64:   sink.DataURI(result.Artifact, result.Format),
			Filename: "badge" + result.Format.Extension(),
			MimeType: result.Format.ContentType(),
			Hash:     result.DocHash,
			Cached:   result.CacheInfo.ArtifactHit,
		},
		Config: json.RawMessage(body),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.execute(r, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, result)
}

// =============================================================================
// Template Handlers
// =============================================================================

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.templates.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]templateSummary, len(list))
	for i, t := range list {
		out[i] = templateSummary{Name: t.Name, Description: t.Description, Builtin: t.Builtin, UpdatedAt: t.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": t})
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req templateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "template body must be {description, document}"))
		return
	}
	t := &store.Template{
		Name:        chi.URLParam(r, "name"),
		Description: req.Description,
		Document:    req.Document,
	}
	if err := s.templates.Put(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.templates.Get(r.Context(), t.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": saved})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.execute(r, t.Document)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, result)
}

// =============================================================================
// Helpers
// =============================================================================

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooBig.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return body, nil
}

// execute runs the pipeline with the server limits and the request's
// format, quality and refresh query parameters.
func (s *Server) execute(r *http.Request, data []byte) (*pipeline.Result, error) {
	q := r.URL.Query()
	opts := s.base
	opts.Format = q.Get("format")
	opts.Refresh = q.Get("refresh") == "true"
	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "quality must be an integer")
		}
		opts.JPEGQuality = n
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	return s.runner.Execute(r.Context(), data, opts)
}

func writeArtifact(w http.ResponseWriter, result *pipeline.Result) {
	h := w.Header()
	h.Set("Content-Type", result.Format.ContentType())
	h.Set("Content-Length", strconv.Itoa(len(result.Artifact)))
	h.Set("X-Badge-Hash", result.DocHash)
	if result.CacheInfo.ArtifactHit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifact)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) && errors.GetCode(err) == "" {
		return http.StatusGatewayTimeout
	}
	return errors.GetCode(err).HTTPStatus()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorResponse{Message: msg, Code: code})
}
