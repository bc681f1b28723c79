package request

import "github.com/shopspring/decimal"

// CreateSaleRequest represents the request body for creating a sale with
// optional initial payments.
type CreateSaleRequest struct {
	PurchaseID       string                 `json:"purchaseId"`
	BuyerName        string                 `json:"buyerName"`
	BuyerDescription string                 `json:"buyerDescription"`
	Quantity         decimal.Decimal        `json:"quantity"`
	UnitPrice        decimal.Decimal        `json:"unitPrice"`
	SoldOn           string                 `json:"soldOn"`
	Status           string                 `json:"status"`
	Notes            string                 `json:"notes"`
	Payments         []CreatePaymentRequest `json:"payments"`
}

type UpdateSaleRequest struct {
	PurchaseID       *string          `json:"purchaseId,omitempty"`
	BuyerName        *string          `json:"buyerName,omitempty"`
	BuyerDescription *string          `json:"buyerDescription,omitempty"`
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unitPrice,omitempty"`
	SoldOn           *string          `json:"soldOn,omitempty"`
	Status           *string          `json:"status,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

// CreatePaymentRequest represents one installment received against a sale.
// paidOn defaults to the sale date.
type CreatePaymentRequest struct {
	ReceiverID string          `json:"receiverId"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	PaidOn     string          `json:"paidOn"`
	Notes      string          `json:"notes"`
}
