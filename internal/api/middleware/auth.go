package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.User, *auth.Claims, error)
}

type userKey struct{}
type tokenIDKey struct{}

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey{}).(model.User)
	return u, ok
}

// TokenIDFromContext returns the jti of the token used for the request.
func TokenIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tokenIDKey{}).(string)
	return id
}

// RequireAuth validates the "Authorization: Bearer <token>" header, checks that
// its session is still open and that the user is active, then stores the
// user, token ID and auth.Actor in the request context.
// Returns 401 Unauthorized otherwise. Role checks happen in the services.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireAuth(authService))
//	    r.Get("/dashboard", dashboardHandler.Dashboard)
//	})
func RequireAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error(), "missing bearer token")
				return
			}

			user, claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				respondAuthError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, user)
			ctx = context.WithValue(ctx, tokenIDKey{}, claims.ID)
			ctx = auth.WithActor(ctx, auth.NewActor(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidToken):
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidToken.Error(), nil)
	case errors.Is(err, apperrors.ErrSessionNotFound):
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrSessionNotFound.Error(), nil)
	case errors.Is(err, apperrors.ErrUserInactive), errors.Is(err, apperrors.ErrUserNotFound):
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUserInactive.Error(), nil)
	default:
		logger.L.Error("failed to authenticate request", "error", err, "path", sanitize(r.URL.Path))
		response.RespondError(w, http.StatusInternalServerError, "failed to authenticate request", nil)
	}
}
