package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/WomainOK/slideseq/pkg/cache"
	"github.com/WomainOK/slideseq/pkg/catalog"
	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/pipeline"
	"github.com/WomainOK/slideseq/pkg/slideshow"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// OptimizeRequest is the body of POST /v1/optimize. Catalog is the catalog
// file content; Options carries the solve parameters.
type OptimizeRequest struct {
	Catalog string           `json:"catalog"`
	Options pipeline.Options `json:"options"`
}

// OptimizeResponse is the body of a successful optimize call.
type OptimizeResponse struct {
	Score       int     `json:"score"`
	State       string  `json:"state"`
	Slides      [][]int `json:"slides"`
	CatalogHash string  `json:"catalog_hash"`
	RunID       string  `json:"run_id,omitempty"`
	Cached      bool    `json:"cached"`
	Photos      int     `json:"photos"`
}

// VerifyRequest is the body of POST /v1/verify. Both fields are file
// contents in the CLI text formats.
type VerifyRequest struct {
	Catalog  string `json:"catalog"`
	Sequence string `json:"sequence"`
}

// VerifyResponse is the body of a successful verify call. An invalid
// sequence is a 200 with Valid false, not an error.
type VerifyResponse struct {
	Valid     bool       `json:"valid"`
	Score     int        `json:"score"`
	Slides    int        `json:"slides"`
	Violation *Violation `json:"violation,omitempty"`
}

// Violation describes the first feasibility rule a sequence broke.
type Violation struct {
	Reason string `json:"reason"`
	Slide  int    `json:"slide"`
}

// ErrorResponse is the body of any failed call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	photos, err := catalog.Read(strings.NewReader(req.Catalog))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash := cache.Hash([]byte(req.Catalog))

	result, err := s.runner.Optimize(r.Context(), photos, hash, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := OptimizeResponse{
		Score:       result.Score,
		State:       result.State.String(),
		Slides:      make([][]int, len(result.Sequence)),
		CatalogHash: result.CatalogHash,
		RunID:       result.RunID,
		Cached:      result.CacheInfo.ResultHit,
		Photos:      result.Stats.PhotoCount,
	}
	for i, slide := range result.Sequence {
		resp.Slides[i] = slide.IDs()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	photos, err := catalog.Read(strings.NewReader(req.Catalog))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	seq, err := slideshow.ReadSequence(strings.NewReader(req.Sequence))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.runner.Verify(r.Context(), photos, seq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := VerifyResponse{
		Valid:  v.Valid,
		Score:  v.Score,
		Slides: v.Slides,
	}
	if v.Violation != nil {
		resp.Violation = &Violation{
			Reason: string(v.Violation.Reason),
			Slide:  v.Violation.SlideIndex,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// decodeBody parses the JSON request body into dst, writing a 400 on
// failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  string(errors.ErrCodeInvalidInput),
		})
		return false
	}
	return true
}

// writeError maps an error code to an HTTP status and writes the JSON error
// body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCatalog,
		errors.ErrCodeInvalidSequence, errors.ErrCodeInvalidOptions:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
