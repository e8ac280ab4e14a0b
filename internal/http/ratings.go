package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storerate/storerate/internal/auth"
	"github.com/storerate/storerate/internal/repository"
	"github.com/storerate/storerate/internal/service"
)

type submitRatingRequest struct {
	StoreID     int64   `json:"storeId" validate:"required,min=1"`
	Score       int     `json:"score" validate:"required,min=1,max=5"`
	Review      *string `json:"review" validate:"omitempty,max=1000"`
	IsAnonymous bool    `json:"isAnonymous"`
}

type updateRatingRequest struct {
	Score       *int    `json:"score" validate:"omitempty,min=1,max=5"`
	Review      *string `json:"review" validate:"omitempty,max=1000"`
	IsAnonymous *bool   `json:"isAnonymous"`
}

type storeRatingsResponse struct {
	pageResponse[ratingResponse]
	Statistics ratingStatsResponse `json:"statistics"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req submitRatingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	rating, err := s.ratings.Submit(r.Context(), actor, service.SubmitRatingParams{
		StoreID:     req.StoreID,
		Score:       req.Score,
		Review:      req.Review,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		s.respondServiceError(w, err, "submit rating")
		return
	}

	s.respondJSON(w, http.StatusCreated, toRatingResponse(rating))
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	ratingID, err := idParam(r, "ratingID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req updateRatingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	rating, err := s.ratings.Update(r.Context(), actor, ratingID, repository.RatingPatch{
		Score:       req.Score,
		Review:      req.Review,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		s.respondServiceError(w, err, "update rating")
		return
	}

	s.respondJSON(w, http.StatusOK, toRatingResponse(rating))
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	ratingID, err := idParam(r, "ratingID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	deleted, err := s.ratings.Delete(r.Context(), actor, ratingID)
	if err != nil {
		s.respondServiceError(w, err, "delete rating")
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleStoreRatings(w http.ResponseWriter, r *http.Request) {
	storeID, err := idParam(r, "storeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	filters, err := buildRatingFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var viewer *auth.Identity
	if identity, ok := identityFrom(r); ok {
		viewer = &identity
	}

	page, err := s.ratings.StoreRatings(r.Context(), viewer, storeID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list store ratings")
		return
	}

	stats, err := s.ratings.StoreStats(r.Context(), storeID)
	if err != nil {
		s.respondServiceError(w, err, "store stats")
		return
	}

	s.respondJSON(w, http.StatusOK, storeRatingsResponse{
		pageResponse: toPageResponse(page, toRatingResponse),
		Statistics:   toRatingStatsResponse(stats),
	})
}

func (s *Server) handleStoreStats(w http.ResponseWriter, r *http.Request) {
	storeID, err := idParam(r, "storeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	stats, err := s.ratings.StoreStats(r.Context(), storeID)
	if err != nil {
		s.respondServiceError(w, err, "store stats")
		return
	}

	s.respondJSON(w, http.StatusOK, toRatingStatsResponse(stats))
}

func (s *Server) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	userID, err := idParam(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	filters, err := buildRatingFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.ratings.UserRatings(r.Context(), actor, userID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list user ratings")
		return
	}

	s.respondJSON(w, http.StatusOK, toPageResponse(page, toRatingResponse))
}

func (s *Server) handleListAllRatings(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	filters, err := buildRatingFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.ratings.AllRatings(r.Context(), actor, filters)
	if err != nil {
		s.respondServiceError(w, err, "list all ratings")
		return
	}

	s.respondJSON(w, http.StatusOK, toPageResponse(page, toRatingResponse))
}

func (s *Server) handleOverallStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	stats, err := s.ratings.OverallStats(r.Context(), actor)
	if err != nil {
		s.respondServiceError(w, err, "overall stats")
		return
	}

	s.respondJSON(w, http.StatusOK, toOverallStatsResponse(stats))
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}
