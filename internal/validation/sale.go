package validation

import (
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// ValidateCreateSale validates a sale creation request and its nested payments.
// Quantity is not compared with the purchased quantity.
func ValidateCreateSale(req request.CreateSaleRequest) error {
	errs := make(map[string]string)

	checkRequiredUUID(errs, "purchaseId", req.PurchaseID)
	if checkRequired(errs, "buyerName", req.BuyerName) {
		checkLength(errs, "buyerName", req.BuyerName, MaxNameLength)
	}
	checkLength(errs, "buyerDescription", req.BuyerDescription, MaxTextLength)
	checkPositive(errs, "quantity", req.Quantity)
	checkNonNegative(errs, "unitPrice", req.UnitPrice)
	checkRequiredDate(errs, "soldOn", req.SoldOn)
	checkStatus(errs, req.Status)
	checkLength(errs, "notes", req.Notes, MaxTextLength)

	for i, p := range req.Payments {
		validatePayment(errs, fmt.Sprintf("payments[%d].", i), p)
	}

	return result(errs)
}

// ValidateUpdateSale validates a sale update request. Any status may be set.
func ValidateUpdateSale(req request.UpdateSaleRequest) error {
	errs := make(map[string]string)

	if req.PurchaseID != nil {
		checkRequiredUUID(errs, "purchaseId", *req.PurchaseID)
	}
	if req.BuyerName != nil && checkRequired(errs, "buyerName", *req.BuyerName) {
		checkLength(errs, "buyerName", *req.BuyerName, MaxNameLength)
	}
	if req.BuyerDescription != nil {
		checkLength(errs, "buyerDescription", *req.BuyerDescription, MaxTextLength)
	}
	if req.Quantity != nil {
		checkPositive(errs, "quantity", *req.Quantity)
	}
	if req.UnitPrice != nil {
		checkNonNegative(errs, "unitPrice", *req.UnitPrice)
	}
	if req.SoldOn != nil {
		checkRequiredDate(errs, "soldOn", *req.SoldOn)
	}
	if req.Status != nil {
		if *req.Status == "" {
			errs["status"] = "status is required"
		} else {
			checkStatus(errs, *req.Status)
		}
	}
	if req.Notes != nil {
		checkLength(errs, "notes", *req.Notes, MaxTextLength)
	}

	return result(errs)
}

// ValidatePayment validates a payment added to an existing sale.
func ValidatePayment(req request.CreatePaymentRequest) error {
	errs := make(map[string]string)
	validatePayment(errs, "", req)
	return result(errs)
}

// checkStatus accepts an empty status, which defaults to DRAFT.
func checkStatus(errs map[string]string, status string) {
	if status != "" && !model.SaleStatus(status).Valid() {
		errs["status"] = fmt.Sprintf("invalid status: %s", status)
	}
}

func validatePayment(errs map[string]string, prefix string, req request.CreatePaymentRequest) {
	checkRequiredUUID(errs, prefix+"receiverId", req.ReceiverID)
	checkPositive(errs, prefix+"amount", req.Amount)
	if checkRequired(errs, prefix+"method", req.Method) && !model.PaymentMethod(req.Method).Valid() {
		errs[prefix+"method"] = fmt.Sprintf("invalid method: %s", req.Method)
	}
	checkOptionalDate(errs, prefix+"paidOn", req.PaidOn)
	checkLength(errs, prefix+"notes", req.Notes, MaxTextLength)
}
