package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionType tells how a contribution value is interpreted.
type ContributionType string

const (
	ContributionAbsolute   ContributionType = "ABSOLUTE"
	ContributionPercentage ContributionType = "PERCENTAGE"
)

// Valid reports whether t is a known contribution type.
func (t ContributionType) Valid() bool {
	return t == ContributionAbsolute || t == ContributionPercentage
}

// Purchase represents a batch buy-in. Monetary totals are normalized to EUR;
// the original amount and currency are kept for reference only.
type Purchase struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Quantity             decimal.Decimal `json:"quantity"`
	PurchasedOn          time.Time       `json:"purchasedOn"`
	TotalAmountOriginal  decimal.Decimal `json:"totalAmountOriginal"`
	TotalCurrency        string          `json:"totalCurrency"`
	TotalAmountEUR       decimal.Decimal `json:"totalAmountEur"`
	SignalAmountOriginal decimal.Decimal `json:"signalAmountOriginal"`
	SignalCurrency       string          `json:"signalCurrency"`
	SignalAmountEUR      decimal.Decimal `json:"signalAmountEur"`
	SignalPaidBy         *string         `json:"signalPaidBy,omitempty"`
	SignalPaidOn         *time.Time      `json:"signalPaidOn,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Contribution records how much of a purchase a user funded.
// ResolvedAmount is fixed when the contribution is created: percentage
// contributions are not re-evaluated when the purchase total changes later.
type Contribution struct {
	ID             string           `json:"id"`
	PurchaseID     string           `json:"purchaseId"`
	PayerID        string           `json:"payerId"`
	Type           ContributionType `json:"contributionType"`
	Value          decimal.Decimal  `json:"value"`
	ResolvedAmount decimal.Decimal  `json:"resolvedAmount"`
	PaidOn         time.Time        `json:"paidOn"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// AdditionalCost is an extra expense on a purchase, optionally attributed to
// the user who covered it.
type AdditionalCost struct {
	ID         string          `json:"id"`
	PurchaseID string          `json:"purchaseId"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	PaidBy     *string         `json:"paidBy,omitempty"`
	IncurredOn time.Time       `json:"incurredOn"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// PurchaseTotals holds the derived monetary fields of a purchase.
// UnitCost is null when the quantity is zero.
type PurchaseTotals struct {
	UnitCost        decimal.NullDecimal `json:"unitCost"`
	TotalBase       decimal.Decimal     `json:"totalBase"`
	TotalSignal     decimal.Decimal     `json:"totalSignal"`
	TotalAdditional decimal.Decimal     `json:"totalAdditional"`
	TotalCost       decimal.Decimal     `json:"totalCost"`
}

// PurchaseResponse represents a purchase with its children and derived totals for API responses.
type PurchaseResponse struct {
	Purchase
	PurchaseTotals
	TotalRevenue    decimal.Decimal  `json:"totalRevenue"`
	TotalProfit     decimal.Decimal  `json:"totalProfit"`
	Contributions   []Contribution   `json:"contributions"`
	AdditionalCosts []AdditionalCost `json:"additionalCosts"`
	Sales           []Sale           `json:"sales,omitempty"`
}
