package model

import "github.com/shopspring/decimal"

// OverallTotals is the business-wide profit/loss.
type OverallTotals struct {
	Invested    decimal.Decimal `json:"invested"`    // Σ purchase total cost
	Revenue     decimal.Decimal `json:"revenue"`     // Σ sale total price
	Profit      decimal.Decimal `json:"profit"`      // revenue - invested
	Received    decimal.Decimal `json:"received"`    // Σ payments
	Outstanding decimal.Decimal `json:"outstanding"` // revenue - received
}

// LedgerEntry is one user's running balance.
type LedgerEntry struct {
	UserID            string          `json:"userId"`
	DisplayName       string          `json:"displayName"`
	Role              Role            `json:"role"`
	Contributions     decimal.Decimal `json:"contributions"`
	AdditionalCosts   decimal.Decimal `json:"additionalCosts"`
	Signals           decimal.Decimal `json:"signals"`
	Invested          decimal.Decimal `json:"invested"`
	Received          decimal.Decimal `json:"received"`
	Attributed        decimal.Decimal `json:"attributed"`
	Balance           decimal.Decimal `json:"balance"`           // received - invested
	AttributedBalance decimal.Decimal `json:"attributedBalance"` // attributed - invested
}

// PurchaseSummary compares the cost of a purchase with the revenue of its sales.
type PurchaseSummary struct {
	PurchaseID string              `json:"purchaseId"`
	Title      string              `json:"title"`
	UnitCost   decimal.NullDecimal `json:"unitCost"`
	TotalCost  decimal.Decimal     `json:"totalCost"`
	Revenue    decimal.Decimal     `json:"revenue"`
	Profit     decimal.Decimal     `json:"profit"`
	SalesCount int                 `json:"salesCount"`
}

// Reconciliation relates the ledger to the overall result:
// LedgerSum == Profit - Outstanding + Unfunded.
type Reconciliation struct {
	LedgerSum   decimal.Decimal `json:"ledgerSum"`
	Profit      decimal.Decimal `json:"profit"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Unfunded    decimal.Decimal `json:"unfunded"`
	Balanced    bool            `json:"balanced"`
}

// Dashboard is the aggregate view served to the dashboard page.
type Dashboard struct {
	Totals         OverallTotals     `json:"totals"`
	Ledger         []LedgerEntry     `json:"ledger"`
	Purchases      []PurchaseSummary `json:"purchases"`
	Reconciliation Reconciliation    `json:"reconciliation"`
}
