package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/reviewcheck/internal/analysis"
	"github.com/hyperjump/reviewcheck/internal/embedding"
	"github.com/hyperjump/reviewcheck/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"entities": s.entities.Entities()})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := s.entities.Entity(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "entity not found")
		return
	}
	s.respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("analyze request", zap.String("entity_id", id))
	report, err := s.analyzer.AnalyzeEntity(r.Context(), id)
	if err != nil {
		s.respondAnalysisError(w, r, err, zap.String("entity_id", id))
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCustomReview(w http.ResponseWriter, r *http.Request) {
	var req models.CustomReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("custom review request", zap.String("entity_id", req.EntityID), zap.Int("review_len", len(req.ReviewText)))
	report, err := s.analyzer.AnalyzeCustomReview(r.Context(), &req)
	if err != nil {
		s.respondAnalysisError(w, r, err, zap.String("entity_id", req.EntityID))
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"threshold": s.analyzer.Threshold(),
		"model":     s.model,
	}
	if s.stats != nil {
		resp["cache"] = s.stats.Stats()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondAnalysisError maps analysis errors to HTTP statuses: unknown entity is 404,
// invalid input is 400, and provider or numeric failures are 500.
func (s *Server) respondAnalysisError(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	switch {
	case errors.Is(err, analysis.ErrEntityNotFound):
		s.respondError(w, http.StatusNotFound, "entity not found")
	case errors.Is(err, analysis.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		fields = append(fields, zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		var pe *embedding.ProviderError
		if errors.As(err, &pe) {
			fields = append(fields, zap.String("provider_error", string(pe.Kind)), zap.Int("provider_status", pe.StatusCode))
		}
		s.logger.Error("analysis failed", fields...)
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
