package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shopsight/shopsight/internal/brand"
	"github.com/shopsight/shopsight/internal/ingest"
	"github.com/shopsight/shopsight/internal/storage/postgres"
)

type ingestRequest struct {
	WebsiteURL string `json:"website_url"`
}

type competitorsResponse struct {
	Brand       brand.Profile   `json:"brand"`
	Competitors []brand.Profile `json:"competitors"`
}

func (s *Server) ingestBrand(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WebsiteURL == "" {
		writeError(w, http.StatusBadRequest, "website_url is required")
		return
	}

	profile, err := s.ingest.Ingest(r.Context(), req.WebsiteURL)
	switch {
	case errors.Is(err, ingest.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ingest.ErrUnreachable):
		writeError(w, http.StatusUnauthorized, err.Error())
	case err != nil:
		s.logger.Error("ingest failed", zap.String("website_url", req.WebsiteURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to persist brand profile")
	default:
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) getBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brand_id")
	if !ok {
		return
	}
	profile, err := s.store.GetProfile(r.Context(), brandID)
	if errors.Is(err, postgres.ErrNotFound) {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}
	if err != nil {
		s.logger.Error("load brand failed", zap.Int64("brand_id", brandID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) listCompetitors(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brand_id")
	if !ok {
		return
	}
	profile, err := s.store.GetProfile(r.Context(), brandID)
	if errors.Is(err, postgres.ErrNotFound) {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}
	if err != nil {
		s.logger.Error("load brand failed", zap.Int64("brand_id", brandID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load brand")
		return
	}
	competitors, err := s.store.Competitors(r.Context(), brandID)
	if err != nil {
		s.logger.Error("list competitors failed", zap.Int64("brand_id", brandID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list competitors")
		return
	}
	if competitors == nil {
		competitors = []brand.Profile{}
	}
	writeJSON(w, http.StatusOK, competitorsResponse{Brand: profile, Competitors: competitors})
}

func (s *Server) addCompetitor(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brand_id")
	if !ok {
		return
	}
	competitorID, ok := pathID(w, r, "competitor_id")
	if !ok {
		return
	}
	err := s.store.AddCompetitor(r.Context(), brandID, competitorID)
	switch {
	case errors.Is(err, postgres.ErrSelfCompetitor):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, postgres.ErrNotFound):
		writeError(w, http.StatusNotFound, "brand not found")
	case err != nil:
		s.logger.Error("add competitor failed", zap.Int64("brand_id", brandID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add competitor")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "mapped"})
	}
}

func (s *Server) removeCompetitor(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brand_id")
	if !ok {
		return
	}
	competitorID, ok := pathID(w, r, "competitor_id")
	if !ok {
		return
	}
	err := s.store.RemoveCompetitor(r.Context(), brandID, competitorID)
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		writeError(w, http.StatusNotFound, "competitor mapping not found")
	case err != nil:
		s.logger.Error("remove competitor failed", zap.Int64("brand_id", brandID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to remove competitor")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "unmapped"})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
