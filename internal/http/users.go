package httpserver

import (
	"net/http"

	"github.com/storerate/storerate/internal/domain"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	filters, err := buildUserFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.repo.Users.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list users: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users")
		return
	}

	s.respondJSON(w, http.StatusOK, toPageResponse(page, toUserResponse))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	userID, err := idParam(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	// Users may fetch their own account; anything else is admin territory.
	if identity.ID != userID && identity.Role != domain.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
		return
	}

	user, err := s.repo.Users.GetByID(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err, "get user")
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	userID, err := idParam(r, "userID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	deactivated, err := s.repo.Users.Deactivate(r.Context(), userID)
	if err != nil {
		s.logger.Printf("deactivate user: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to deactivate user")
		return
	}
	if !deactivated {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
}
