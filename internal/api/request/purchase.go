package request

import "github.com/shopspring/decimal"

// CreatePurchaseRequest represents the request body for creating a purchase.
// Contributions and additional costs are created in the same transaction.
// When a currency is EUR (or omitted) the EUR amount may be left out.
type CreatePurchaseRequest struct {
	Title                string                        `json:"title"`
	Description          string                        `json:"description"`
	Quantity             decimal.Decimal               `json:"quantity"`
	PurchasedOn          string                        `json:"purchasedOn"`
	TotalAmountOriginal  decimal.Decimal               `json:"totalAmountOriginal"`
	TotalCurrency        string                        `json:"totalCurrency"`
	TotalAmountEUR       *decimal.Decimal              `json:"totalAmountEur,omitempty"`
	SignalAmountOriginal decimal.Decimal               `json:"signalAmountOriginal"`
	SignalCurrency       string                        `json:"signalCurrency"`
	SignalAmountEUR      *decimal.Decimal              `json:"signalAmountEur,omitempty"`
	SignalPaidBy         string                        `json:"signalPaidBy"`
	SignalPaidOn         string                        `json:"signalPaidOn"`
	Contributions        []CreateContributionRequest   `json:"contributions"`
	AdditionalCosts      []CreateAdditionalCostRequest `json:"additionalCosts"`
}

// UpdatePurchaseRequest represents the request body for updating a purchase.
// Omitted fields keep their value. An empty signalPaidBy or signalPaidOn clears it.
type UpdatePurchaseRequest struct {
	Title                *string          `json:"title,omitempty"`
	Description          *string          `json:"description,omitempty"`
	Quantity             *decimal.Decimal `json:"quantity,omitempty"`
	PurchasedOn          *string          `json:"purchasedOn,omitempty"`
	TotalAmountOriginal  *decimal.Decimal `json:"totalAmountOriginal,omitempty"`
	TotalCurrency        *string          `json:"totalCurrency,omitempty"`
	TotalAmountEUR       *decimal.Decimal `json:"totalAmountEur,omitempty"`
	SignalAmountOriginal *decimal.Decimal `json:"signalAmountOriginal,omitempty"`
	SignalCurrency       *string          `json:"signalCurrency,omitempty"`
	SignalAmountEUR      *decimal.Decimal `json:"signalAmountEur,omitempty"`
	SignalPaidBy         *string          `json:"signalPaidBy,omitempty"`
	SignalPaidOn         *string          `json:"signalPaidOn,omitempty"`
}

// CreateContributionRequest represents a contribution to a purchase.
// paidOn defaults to the purchase date.
type CreateContributionRequest struct {
	PayerID          string          `json:"payerId"`
	ContributionType string          `json:"contributionType"`
	Value            decimal.Decimal `json:"value"`
	PaidOn           string          `json:"paidOn"`
	Notes            string          `json:"notes"`
}

// CreateAdditionalCostRequest represents an extra expense on a purchase.
type CreateAdditionalCostRequest struct {
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	PaidBy     string          `json:"paidBy"`
	IncurredOn string          `json:"incurredOn"`
}
