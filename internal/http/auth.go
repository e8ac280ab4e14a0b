package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/storerate/storerate/internal/auth"
	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

type registerRequest struct {
	Name     string  `json:"name" validate:"required,min=20,max=60"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=16"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}
	if msg, ok := checkPasswordPolicy(req.Password); !ok {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Printf("hash password: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	// Self-registration always creates a normal user; elevated roles are
	// provisioned out of band (see cmd/seed).
	user, err := s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleNormalUser,
		Address:      req.Address,
	})
	if err != nil {
		s.respondServiceError(w, err, "register user")
		return
	}

	token, err := s.auth.Issue(user)
	if err != nil {
		s.logger.Printf("issue token: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
		return
	}

	s.respondJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
			return
		}
		s.logger.Printf("login: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	s.respondJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=16"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	user, err := s.repo.Users.GetByID(r.Context(), actor.ID)
	if err != nil {
		s.respondServiceError(w, err, "get current user")
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := identityFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req changePasswordRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}
	if msg, ok := checkPasswordPolicy(req.NewPassword); !ok {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	user, err := s.repo.Users.GetByID(r.Context(), actor.ID)
	if err != nil {
		s.respondServiceError(w, err, "change password")
		return
	}
	if err := s.auth.CheckPassword(user, req.CurrentPassword); err != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Current password is incorrect")
		return
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Printf("hash password: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change password")
		return
	}
	if err := s.repo.Users.UpdatePassword(r.Context(), actor.ID, hash); err != nil {
		s.respondServiceError(w, err, "change password")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// checkPasswordPolicy enforces the parts of the password policy that the
// declarative tags cannot express: one uppercase letter and one special
// character.
func checkPasswordPolicy(password string) (string, bool) {
	hasUpper := false
	hasSpecial := false
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, ch):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return "Password must contain at least one uppercase letter", false
	}
	if !hasSpecial {
		return "Password must contain at least one special character", false
	}
	return "", true
}
