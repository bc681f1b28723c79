package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/service"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// PurchaseHandler handles purchase-related HTTP requests, including the
// contributions and additional costs nested under a purchase.
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// ListPurchases handles GET requests for every purchase with derived totals.
//
// Endpoint: GET /api/purchase
// Response: 200 OK with []model.PurchaseResponse (empty array when none exist)
// Error: 500 Internal Server Error if retrieval fails
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	purchases, err := h.purchaseService.ListPurchases(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePurchases.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, purchases)
}

// GetPurchase handles GET requests for one purchase with its contributions,
// costs and sales.
//
// Endpoint: GET /api/purchase/{uuid}
// Response: 200 OK with model.PurchaseResponse
// Error: 404 Not Found if the purchase does not exist
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(r.Context(), actor, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePurchase.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, purchase)
}

// CreatePurchase handles POST requests to create a purchase together with its
// contributions and additional costs.
//
// Endpoint: POST /api/purchase
// Request body: request.CreatePurchaseRequest
// Response: 201 Created with model.PurchaseResponse
// Error: 400 Bad Request with a field map on validation failure
// Error: 403 Forbidden for VIEWER callers
// Error: 404 Not Found if a referenced user does not exist
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreatePurchaseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePurchase(req); err != nil {
		respondValidationError(w, err)
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err, "failed to create purchase")
		return
	}

	response.RespondJSON(w, http.StatusCreated, purchase)
}

// UpdatePurchase handles PUT requests with the purchase fields to change.
//
// Endpoint: PUT /api/purchase/{uuid}
// Request body: request.UpdatePurchaseRequest
// Response: 200 OK with model.PurchaseResponse
// Error: 400 Bad Request with a field map on validation failure
// Error: 404 Not Found if the purchase does not exist
func (h *PurchaseHandler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdatePurchaseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePurchase(req); err != nil {
		respondValidationError(w, err)
		return
	}

	purchase, err := h.purchaseService.UpdatePurchase(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update purchase")
		return
	}

	response.RespondJSON(w, http.StatusOK, purchase)
}

// DeletePurchase removes a purchase and everything recorded against it.
//
// Endpoint: DELETE /api/purchase/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the purchase does not exist
func (h *PurchaseHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	if err := h.purchaseService.DeletePurchase(r.Context(), actor, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete purchase")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AddContribution records a partner's contribution to a purchase.
//
// Endpoint: POST /api/purchase/{uuid}/contribution
// Request body: request.CreateContributionRequest
// Response: 201 Created with model.Contribution
// Error: 404 Not Found if the purchase or payer does not exist
func (h *PurchaseHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateContributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateContribution(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contribution, err := h.purchaseService.AddContribution(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to add contribution")
		return
	}

	response.RespondJSON(w, http.StatusCreated, contribution)
}

// DeleteContribution removes a contribution from a purchase.
//
// Endpoint: DELETE /api/purchase/{uuid}/contribution/{childId}
// Response: 204 No Content
// Error: 404 Not Found if the contribution does not belong to the purchase
func (h *PurchaseHandler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	err := h.purchaseService.DeleteContribution(r.Context(), actor, chi.URLParam(r, "uuid"), chi.URLParam(r, "childId"))
	if err != nil {
		respondServiceError(w, err, "failed to delete contribution")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AddAdditionalCost records an extra expense on a purchase.
//
// Endpoint: POST /api/purchase/{uuid}/cost
// Request body: request.CreateAdditionalCostRequest
// Response: 201 Created with model.AdditionalCost
// Error: 404 Not Found if the purchase or paying user does not exist
func (h *PurchaseHandler) AddAdditionalCost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateAdditionalCostRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAdditionalCost(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cost, err := h.purchaseService.AddAdditionalCost(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to add additional cost")
		return
	}

	response.RespondJSON(w, http.StatusCreated, cost)
}

// DeleteAdditionalCost removes an additional cost from a purchase.
//
// Endpoint: DELETE /api/purchase/{uuid}/cost/{childId}
// Response: 204 No Content
// Error: 404 Not Found if the cost does not belong to the purchase
func (h *PurchaseHandler) DeleteAdditionalCost(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	err := h.purchaseService.DeleteAdditionalCost(r.Context(), actor, chi.URLParam(r, "uuid"), chi.URLParam(r, "childId"))
	if err != nil {
		respondServiceError(w, err, "failed to delete additional cost")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
