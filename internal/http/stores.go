package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

type storeCreateRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=400"`
	OwnerID *int64  `json:"ownerId" validate:"omitempty,min=1"`
}

type storeUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=400"`
}

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	filters, err := buildStoreFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.repo.Stores.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list stores: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list stores")
		return
	}

	s.respondJSON(w, http.StatusOK, toPageResponse(page, toStoreResponse))
}

func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := idParam(r, "storeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	store, err := s.repo.Stores.GetByID(r.Context(), storeID)
	if err != nil {
		s.respondServiceError(w, err, "get store")
		return
	}

	s.respondJSON(w, http.StatusOK, toStoreResponse(store))
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req storeCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	if req.OwnerID != nil {
		owner, err := s.repo.Users.GetByID(r.Context(), *req.OwnerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "ownerId does not reference an existing user")
				return
			}
			s.respondServiceError(w, err, "resolve store owner")
			return
		}
		if owner.Role != domain.RoleStoreOwner && owner.Role != domain.RoleAdmin {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "ownerId must reference a store owner or admin")
			return
		}
	}

	store, err := s.repo.Stores.Create(r.Context(), repository.StoreCreateParams{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		s.respondServiceError(w, err, "create store")
		return
	}

	s.respondJSON(w, http.StatusCreated, toStoreResponse(store))
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	storeID, err := idParam(r, "storeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req storeUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	store, err := s.repo.Stores.Update(r.Context(), storeID, repository.StorePatch{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		s.respondServiceError(w, err, "update store")
		return
	}

	s.respondJSON(w, http.StatusOK, toStoreResponse(store))
}

func (s *Server) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	storeID, err := idParam(r, "storeID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	deleted, err := s.repo.Stores.Delete(r.Context(), storeID)
	if err != nil {
		s.respondServiceError(w, err, "delete store")
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// requireAdmin writes a 403 and returns false unless the authenticated caller
// is an admin.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return false
	}
	if identity.Role != domain.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return false
	}
	return true
}
