// Package ledger contains the pure money arithmetic of the application:
// per-record derived totals and the dashboard roll-ups built from them.
// Nothing in this package touches the database or mutates its inputs.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/model"
)

// MoneyPlaces is the number of decimal places money is stored with.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// PurchaseTotals calculates the derived monetary fields of a purchase.
//
// Formulas:
//   - TotalBase = TotalAmountEUR
//   - TotalAdditional = Σ costs.Amount
//   - TotalCost = TotalBase + SignalAmountEUR + TotalAdditional
//   - UnitCost = TotalBase / Quantity, null when Quantity is zero
//
// costs should belong to p; callers filter beforehand.
func PurchaseTotals(p model.Purchase, costs []model.AdditionalCost) model.PurchaseTotals {
	additional := SumCosts(costs)

	return model.PurchaseTotals{
		UnitCost:        UnitCost(p.TotalAmountEUR, p.Quantity),
		TotalBase:       p.TotalAmountEUR,
		TotalSignal:     p.SignalAmountEUR,
		TotalAdditional: additional,
		TotalCost:       p.TotalAmountEUR.Add(p.SignalAmountEUR).Add(additional),
	}
}

// UnitCost divides the base total by quantity, rounded to MoneyPlaces for display.
// No total is derived from it. A zero quantity yields an invalid (null) result
// instead of a division.
func UnitCost(totalBase, quantity decimal.Decimal) decimal.NullDecimal {
	if quantity.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(totalBase.Div(quantity).Round(MoneyPlaces))
}

// SaleTotals calculates the derived monetary fields of a sale.
// TotalPrice = Quantity * UnitPrice; Outstanding = TotalPrice - Σ payments.
func SaleTotals(s model.Sale, payments []model.SalePayment) model.SaleTotals {
	totalPrice := SalePrice(s)
	paid := SumPayments(payments)

	return model.SaleTotals{
		TotalPrice:    totalPrice,
		TotalPayments: paid,
		Outstanding:   totalPrice.Sub(paid),
	}
}

// SalePrice returns quantity * unit price.
func SalePrice(s model.Sale) decimal.Decimal {
	return s.Quantity.Mul(s.UnitPrice)
}

// ResolveContribution converts a contribution into a currency amount.
// Absolute values are returned as-is; percentages are taken of totalBase.
// The result is meant to be persisted once, at creation time.
func ResolveContribution(kind model.ContributionType, value, totalBase decimal.Decimal) decimal.Decimal {
	if kind == model.ContributionAbsolute {
		return value.Round(MoneyPlaces)
	}
	if totalBase.IsZero() {
		return decimal.Zero
	}
	return totalBase.Mul(value).Div(hundred).Round(MoneyPlaces)
}

// SumCosts adds up additional cost amounts.
func SumCosts(costs []model.AdditionalCost) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.Amount)
	}
	return total
}

// SumPayments adds up payment amounts.
func SumPayments(payments []model.SalePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// SumContributions adds up resolved contribution amounts.
func SumContributions(contributions []model.Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.ResolvedAmount)
	}
	return total
}

// Revenue adds up the total price of the given sales.
func Revenue(sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(SalePrice(s))
	}
	return total
}
