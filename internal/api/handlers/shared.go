package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// maxBodyBytes bounds request bodies; nested purchases are the largest payloads.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a value of type T.
// Empty bodies and trailing data are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, errors.New("request body is required")
		}
		return v, fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return v, errors.New("request body must contain a single JSON object")
	}
	return v, nil
}

// requireActor returns the caller set by the auth middleware, or writes 401.
func requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthenticated.Error(), nil)
		return auth.Actor{}, false
	}
	return actor, true
}

// requirePermission returns the caller when it may perform action, or writes
// 401/403. Write handlers call it before decoding the body so an unauthorized
// caller never learns how its payload would have been validated.
func requirePermission(w http.ResponseWriter, r *http.Request, action auth.Action) (auth.Actor, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return auth.Actor{}, false
	}
	if err := auth.Require(actor, action); err != nil {
		respondServiceError(w, err, "permission check failed")
		return auth.Actor{}, false
	}
	return actor, true
}

// respondValidationError writes 400 with the field map when err is a *validation.Error.
func respondValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError maps a service error to its HTTP status. Unexpected
// errors are logged here and answered with 500 and message.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case isValidationError(err):
		respondValidationError(w, err)

	case errors.Is(err, apperrors.ErrPermissionDenied):
		response.RespondError(w, http.StatusForbidden, apperrors.ErrPermissionDenied.Error(), err.Error())

	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrUserInactive):
		response.RespondError(w, http.StatusUnauthorized, rootMessage(err), nil)

	case isNotFound(err):
		response.RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())

	case errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())

	case errors.Is(err, apperrors.ErrLastAdmin):
		response.RespondError(w, http.StatusConflict, apperrors.ErrLastAdmin.Error(), nil)

	case errors.Is(err, apperrors.ErrRateLimited):
		response.RespondError(w, http.StatusTooManyRequests, apperrors.ErrRateLimited.Error(), nil)

	default:
		logger.L.Error(message, "error", err)
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}

func isValidationError(err error) bool {
	var verr *validation.Error
	return errors.As(err, &verr) ||
		errors.Is(err, validation.ErrInvalidDate) ||
		errors.Is(err, validation.ErrInvalidUUID)
}

var notFoundErrors = []error{
	apperrors.ErrUserNotFound,
	apperrors.ErrPurchaseNotFound,
	apperrors.ErrContributionNotFound,
	apperrors.ErrAdditionalCostNotFound,
	apperrors.ErrSaleNotFound,
	apperrors.ErrPaymentNotFound,
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// rootMessage returns the text of the sentinel wrapped in err, so clients see
// "sale not found" rather than the whole wrap chain.
func rootMessage(err error) string {
	for _, target := range append(notFoundErrors,
		apperrors.ErrUnauthenticated,
		apperrors.ErrInvalidCredentials,
		apperrors.ErrInvalidToken,
		apperrors.ErrSessionNotFound,
		apperrors.ErrUserInactive,
	) {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
