package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is a display/filter label. Any status may be set at any time.
type SaleStatus string

const (
	SaleDraft     SaleStatus = "DRAFT"
	SaleConfirmed SaleStatus = "CONFIRMED"
	SaleSettled   SaleStatus = "SETTLED"
)

// Valid reports whether s is a known sale status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleDraft, SaleConfirmed, SaleSettled:
		return true
	}
	return false
}

// PaymentMethod is how a sale installment was received.
type PaymentMethod string

const (
	PaymentPix      PaymentMethod = "PIX"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentOther    PaymentMethod = "OTHER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentTransfer, PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// Sale is a resale event against a purchase.
type Sale struct {
	ID               string          `json:"id"`
	PurchaseID       string          `json:"purchaseId"`
	BuyerName        string          `json:"buyerName"`
	BuyerDescription string          `json:"buyerDescription"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	SoldOn           time.Time       `json:"soldOn"`
	Status           SaleStatus      `json:"status"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SalePayment is one installment received against a sale.
type SalePayment struct {
	ID         string          `json:"id"`
	SaleID     string          `json:"saleId"`
	ReceiverID string          `json:"receiverId"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	PaidOn     time.Time       `json:"paidOn"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// SaleTotals holds the derived monetary fields of a sale.
type SaleTotals struct {
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalPayments decimal.Decimal `json:"totalPayments"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// SaleResponse represents a sale with its payments and derived totals for API responses.
type SaleResponse struct {
	Sale
	SaleTotals
	PurchaseTitle string        `json:"purchaseTitle"`
	Payments      []SalePayment `json:"payments"`
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	PurchaseID string
	Status     SaleStatus
}
