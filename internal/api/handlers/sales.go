package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/service"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// SaleHandler handles sale-related HTTP requests, including payments.
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// ListSales handles GET requests for sales, optionally filtered.
//
// Endpoint: GET /api/sale?status=CONFIRMED&purchaseId={uuid}
// Response: 200 OK with []model.SaleResponse (empty array when none match)
// Error: 400 Bad Request for an unknown status or malformed purchaseId
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := model.SaleFilter{
		PurchaseID: strings.TrimSpace(r.URL.Query().Get("purchaseId")),
		Status:     model.SaleStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))),
	}
	if filter.PurchaseID != "" {
		if err := validation.ValidateUUID(filter.PurchaseID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid purchaseId", err.Error())
			return
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.RespondError(w, http.StatusBadRequest, "invalid status", string(filter.Status))
		return
	}

	sales, err := h.saleService.ListSales(r.Context(), actor, filter)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSales.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, sales)
}

// GetSale handles GET requests for one sale with payments and totals.
//
// Endpoint: GET /api/sale/{uuid}
// Response: 200 OK with model.SaleResponse
// Error: 404 Not Found if the sale does not exist
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(r.Context(), actor, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSale.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, sale)
}

// CreateSale handles POST requests to record a sale with its initial payments.
//
// Endpoint: POST /api/sale
// Request body: request.CreateSaleRequest
// Response: 201 Created with model.SaleResponse
// Error: 400 Bad Request with a field map on validation failure
// Error: 404 Not Found if the purchase or a receiver does not exist
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateSaleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateSale(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sale, err := h.saleService.CreateSale(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err, "failed to create sale")
		return
	}

	response.RespondJSON(w, http.StatusCreated, sale)
}

// UpdateSale handles PUT requests with the sale fields to change.
//
// Endpoint: PUT /api/sale/{uuid}
// Request body: request.UpdateSaleRequest
// Response: 200 OK with model.SaleResponse
// Error: 404 Not Found if the sale or the new purchase does not exist
func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateSaleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateSale(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sale, err := h.saleService.UpdateSale(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update sale")
		return
	}

	response.RespondJSON(w, http.StatusOK, sale)
}

// DeleteSale removes a sale and its payments.
//
// Endpoint: DELETE /api/sale/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the sale does not exist
func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(r.Context(), actor, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete sale")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AddPayment records an installment received against a sale.
//
// Endpoint: POST /api/sale/{uuid}/payment
// Request body: request.CreatePaymentRequest
// Response: 201 Created with model.SalePayment
// Error: 404 Not Found if the sale or receiver does not exist
func (h *SaleHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreatePaymentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePayment(req); err != nil {
		respondValidationError(w, err)
		return
	}

	payment, err := h.saleService.AddPayment(r.Context(), actor, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to add payment")
		return
	}

	response.RespondJSON(w, http.StatusCreated, payment)
}

// DeletePayment removes a payment from a sale.
//
// Endpoint: DELETE /api/sale/{uuid}/payment/{childId}
// Response: 204 No Content
// Error: 404 Not Found if the payment does not belong to the sale
func (h *SaleHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePermission(w, r, auth.ActionWrite)
	if !ok {
		return
	}

	err := h.saleService.DeletePayment(r.Context(), actor, chi.URLParam(r, "uuid"), chi.URLParam(r, "childId"))
	if err != nil {
		respondServiceError(w, err, "failed to delete payment")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
