package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/service"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// UserHandler handles user administration. Every endpoint requires the
// manage_users permission, which the service enforces.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles GET requests for user accounts.
//
// Endpoint: GET /api/user?includeInactive=true
// Response: 200 OK with []model.User
// Error: 403 Forbidden for non-admin callers
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	includeInactive := false
	if v := r.URL.Query().Get("includeInactive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid includeInactive", err.Error())
			return
		}
		includeInactive = parsed
	}

	users, err := h.userService.ListUsers(r.Context(), actor, includeInactive)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveUsers.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET requests for a single user.
//
// Endpoint: GET /api/user/{uuid}
// Response: 200 OK with model.User
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), actor, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveUser.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST requests to create an account.
//
// Endpoint: POST /api/user
// Request body: request.CreateUserRequest
// Response: 201 Created with model.User
// Error: 400 Bad Request with a field map on validation failure
// Error: 409 Conflict if the username is taken
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionManageUsers)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateUser(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err, "failed to create user")
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT requests to change a user's profile, role or active flag.
//
// Endpoint: PUT /api/user/{uuid}
// Request body: request.UpdateUserRequest
// Response: 200 OK with model.User
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionManageUsers)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateUser(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update user")
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// SetPassword replaces a user's password and signs the user out everywhere.
//
// Endpoint: PUT /api/user/{uuid}/password
// Request body: request.SetPasswordRequest
// Response: 204 No Content
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionManageUsers)
	if !ok {
		return
	}

	req, err := parseJSON[request.SetPasswordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetPassword(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.userService.SetPassword(r.Context(), actor, chi.URLParam(r, "uuid"), req); err != nil {
		respondServiceError(w, err, "failed to set password")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
