package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/render"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 16

type analyzeRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type searchRequest struct {
	Address string `json:"address"`
}

type analyzeResponse struct {
	Label  string                `json:"label"`
	Result domain.CoverageResult `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyzeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "lat must be a number"})
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "lon must be a number"})
		return
	}
	s.analyzePoint(w, r, domain.Point{Lat: lat, Lon: lon})
}

func (s *Server) handleAnalyzeJSON(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Lat == nil || req.Lon == nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon are required"})
		return
	}
	s.analyzePoint(w, r, domain.Point{Lat: *req.Lat, Lon: *req.Lon})
}

func (s *Server) analyzePoint(w http.ResponseWriter, r *http.Request, p domain.Point) {
	result, err := s.analyzer.Analyze(r.Context(), s.session, p)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, analyzeResponse{Label: result.Level.Label(), Result: result})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.analyzer.AnalyzeAddress(r.Context(), s.session, req.Address)
	if errors.Is(err, domain.ErrNoResults) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, analyzeResponse{Label: result.Level.Label(), Result: result})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleReport renders the current result for the display surface. Before
// the first successful analysis it answers 204.
func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	st := s.session.Snapshot()
	if st.Result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	html, err := render.HTMLString(*st.Result)
	if err != nil {
		s.logger.Error("render report failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "render failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPoint), errors.Is(err, domain.ErrEmptyAddress):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQueryFailure):
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream query failed"})
	default:
		s.logger.Error("analysis failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
