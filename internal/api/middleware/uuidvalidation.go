// Package middleware provides HTTP middleware for authentication, rate limiting,
// request logging and URL parameter validation.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// ValidateUUIDMiddleware validates that the uuid URL parameter is present and is a valid UUID.
// When the route also has a childId parameter (contributions, costs, payments) it is
// validated the same way.
// Returns 400 Bad Request if an ID is missing or invalid.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetPurchase)
//	    r.Delete("/contribution/{childId}", handler.DeleteContribution)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		UUID := chi.URLParam(r, "uuid")

		if UUID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid UUID is required", "")
			return
		}

		if err := validation.ValidateUUID(UUID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateChildIDMiddleware validates the childId URL parameter of nested resources.
// It must be registered on routes where chi has already matched {childId}.
func ValidateChildIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := validation.ValidateUUID(chi.URLParam(r, "childId")); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
