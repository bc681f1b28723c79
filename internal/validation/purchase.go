package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ValidateCreatePurchase validates a purchase creation request, including its
// nested contributions and additional costs.
//
// Required fields:
//   - title: non-empty, at most MaxTitleLength characters
//   - quantity: greater than zero
//   - purchasedOn: YYYY-MM-DD
//   - totalAmountOriginal: not negative
//   - totalAmountEur: required when totalCurrency is not EUR
//
// Nested errors are keyed like "contributions[0].payerId".
func ValidateCreatePurchase(req request.CreatePurchaseRequest) error {
	errs := make(map[string]string)

	if checkRequired(errs, "title", req.Title) {
		checkLength(errs, "title", req.Title, MaxTitleLength)
	}
	checkLength(errs, "description", req.Description, MaxTextLength)
	checkPositive(errs, "quantity", req.Quantity)
	checkRequiredDate(errs, "purchasedOn", req.PurchasedOn)

	checkAmount(errs, "total", req.TotalAmountOriginal, req.TotalCurrency, req.TotalAmountEUR)
	checkAmount(errs, "signal", req.SignalAmountOriginal, req.SignalCurrency, req.SignalAmountEUR)
	checkOptionalUUID(errs, "signalPaidBy", req.SignalPaidBy)
	checkOptionalDate(errs, "signalPaidOn", req.SignalPaidOn)

	for i, c := range req.Contributions {
		validateContribution(errs, fmt.Sprintf("contributions[%d].", i), c)
	}
	for i, c := range req.AdditionalCosts {
		validateAdditionalCost(errs, fmt.Sprintf("additionalCosts[%d].", i), c)
	}

	return result(errs)
}

// ValidateUpdatePurchase validates a purchase update request.
// Provided fields must meet the same constraints as on create. The EUR amount
// rule is re-checked by the service against the merged purchase.
func ValidateUpdatePurchase(req request.UpdatePurchaseRequest) error {
	errs := make(map[string]string)

	if req.Title != nil && checkRequired(errs, "title", *req.Title) {
		checkLength(errs, "title", *req.Title, MaxTitleLength)
	}
	if req.Description != nil {
		checkLength(errs, "description", *req.Description, MaxTextLength)
	}
	if req.Quantity != nil {
		checkPositive(errs, "quantity", *req.Quantity)
	}
	if req.PurchasedOn != nil {
		checkRequiredDate(errs, "purchasedOn", *req.PurchasedOn)
	}
	if req.TotalAmountOriginal != nil {
		checkNonNegative(errs, "totalAmountOriginal", *req.TotalAmountOriginal)
	}
	if req.TotalCurrency != nil {
		checkCurrency(errs, "totalCurrency", *req.TotalCurrency)
	}
	if req.TotalAmountEUR != nil {
		checkNonNegative(errs, "totalAmountEur", *req.TotalAmountEUR)
	}
	if req.SignalAmountOriginal != nil {
		checkNonNegative(errs, "signalAmountOriginal", *req.SignalAmountOriginal)
	}
	if req.SignalCurrency != nil {
		checkCurrency(errs, "signalCurrency", *req.SignalCurrency)
	}
	if req.SignalAmountEUR != nil {
		checkNonNegative(errs, "signalAmountEur", *req.SignalAmountEUR)
	}
	if req.SignalPaidBy != nil {
		checkOptionalUUID(errs, "signalPaidBy", *req.SignalPaidBy)
	}
	if req.SignalPaidOn != nil {
		checkOptionalDate(errs, "signalPaidOn", *req.SignalPaidOn)
	}

	return result(errs)
}

// ValidateContribution validates a contribution added to an existing purchase.
func ValidateContribution(req request.CreateContributionRequest) error {
	errs := make(map[string]string)
	validateContribution(errs, "", req)
	return result(errs)
}

// ValidateAdditionalCost validates a cost added to an existing purchase.
func ValidateAdditionalCost(req request.CreateAdditionalCostRequest) error {
	errs := make(map[string]string)
	validateAdditionalCost(errs, "", req)
	return result(errs)
}

// RequireEURAmount reports whether an amount in the given currency needs an
// explicit EUR value. Zero amounts never do.
func RequireEURAmount(original decimal.Decimal, currency string) bool {
	return NormalizeCurrency(currency) != DefaultCurrency && !original.IsZero()
}

func checkAmount(errs map[string]string, prefix string, original decimal.Decimal, currency string, eur *decimal.Decimal) {
	checkNonNegative(errs, prefix+"AmountOriginal", original)
	checkCurrency(errs, prefix+"Currency", currency)
	if eur != nil {
		checkNonNegative(errs, prefix+"AmountEur", *eur)
	} else if RequireEURAmount(original, currency) {
		errs[prefix+"AmountEur"] = prefix + "AmountEur is required when the currency is not EUR"
	}
}

func validateContribution(errs map[string]string, prefix string, req request.CreateContributionRequest) {
	checkRequiredUUID(errs, prefix+"payerId", req.PayerID)

	kind := model.ContributionType(req.ContributionType)
	switch {
	case req.ContributionType == "":
		errs[prefix+"contributionType"] = prefix + "contributionType is required"
	case !kind.Valid():
		errs[prefix+"contributionType"] = fmt.Sprintf("invalid contributionType: %s", req.ContributionType)
	}

	checkNonNegative(errs, prefix+"value", req.Value)
	if kind == model.ContributionPercentage && req.Value.GreaterThan(hundred) {
		errs[prefix+"value"] = prefix + "value must be between 0 and 100 for a percentage"
	}

	checkOptionalDate(errs, prefix+"paidOn", req.PaidOn)
	checkLength(errs, prefix+"notes", req.Notes, MaxTextLength)
}

func validateAdditionalCost(errs map[string]string, prefix string, req request.CreateAdditionalCostRequest) {
	if checkRequired(errs, prefix+"label", req.Label) {
		checkLength(errs, prefix+"label", req.Label, MaxTitleLength)
	}
	checkNonNegative(errs, prefix+"amount", req.Amount)
	checkOptionalUUID(errs, prefix+"paidBy", req.PaidBy)
	checkOptionalDate(errs, prefix+"incurredOn", req.IncurredOn)
}
