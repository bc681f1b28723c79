package handlers

import (
	"net/http"

	"github.com/sidesales/sidesales-backend/internal/api/middleware"
	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/service"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// AuthHandler handles login, logout and the current-user lookup.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST requests to exchange credentials for a bearer token.
//
// Endpoint: POST /api/auth/login
// Request body: request.LoginRequest
// Response: 200 OK with model.LoginResponse
// Error: 400 Bad Request for a malformed body
// Error: 401 Unauthorized for wrong credentials or an inactive user
// Error: 429 Too Many Requests when the client IP is rate limited
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		respondValidationError(w, err)
		return
	}

	login, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}

	response.RespondJSON(w, http.StatusOK, login)
}

// Logout revokes the session of the token used for this request.
//
// Endpoint: POST /api/auth/logout
// Response: 204 No Content
// Error: 401 Unauthorized if the session is already gone
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID := middleware.TokenIDFromContext(r.Context())
	if tokenID == "" {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error(), nil)
		return
	}

	if err := h.authService.Logout(r.Context(), tokenID); err != nil {
		respondServiceError(w, err, "failed to log out")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Me returns the authenticated user.
//
// Endpoint: GET /api/auth/me
// Response: 200 OK with model.User
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error(), nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}
