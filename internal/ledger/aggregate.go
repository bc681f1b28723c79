package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/model"
)

// Book holds every record the roll-ups need, read in a single transaction.
// Any collection may be empty; empty collections sum to zero.
type Book struct {
	Users         []model.User
	Purchases     []model.Purchase
	Contributions []model.Contribution
	Costs         []model.AdditionalCost
	Sales         []model.Sale
	Payments      []model.SalePayment
}

// index groups child rows by their parent so each roll-up is a single pass.
type index struct {
	costsByPurchase         map[string][]model.AdditionalCost
	contributionsByPurchase map[string][]model.Contribution
	salesByPurchase         map[string][]model.Sale
	paymentsBySale          map[string][]model.SalePayment
}

func newIndex(b Book) index {
	idx := index{
		costsByPurchase:         make(map[string][]model.AdditionalCost),
		contributionsByPurchase: make(map[string][]model.Contribution),
		salesByPurchase:         make(map[string][]model.Sale),
		paymentsBySale:          make(map[string][]model.SalePayment),
	}
	for _, c := range b.Costs {
		idx.costsByPurchase[c.PurchaseID] = append(idx.costsByPurchase[c.PurchaseID], c)
	}
	for _, c := range b.Contributions {
		idx.contributionsByPurchase[c.PurchaseID] = append(idx.contributionsByPurchase[c.PurchaseID], c)
	}
	for _, s := range b.Sales {
		idx.salesByPurchase[s.PurchaseID] = append(idx.salesByPurchase[s.PurchaseID], s)
	}
	for _, p := range b.Payments {
		idx.paymentsBySale[p.SaleID] = append(idx.paymentsBySale[p.SaleID], p)
	}
	return idx
}

// Summarize runs every roll-up over the book.
func Summarize(b Book) model.Dashboard {
	overall := Overall(b)
	entries := PerUser(b)

	return model.Dashboard{
		Totals:         overall,
		Ledger:         entries,
		Purchases:      PerPurchase(b),
		Reconciliation: Reconcile(b, overall, entries),
	}
}

// Overall computes profit = Σ sale total price - Σ purchase total cost.
func Overall(b Book) model.OverallTotals {
	idx := newIndex(b)

	invested := decimal.Zero
	for _, p := range b.Purchases {
		invested = invested.Add(PurchaseTotals(p, idx.costsByPurchase[p.ID]).TotalCost)
	}

	revenue := Revenue(b.Sales)
	received := SumPayments(b.Payments)

	return model.OverallTotals{
		Invested:    invested,
		Revenue:     revenue,
		Profit:      revenue.Sub(invested),
		Received:    received,
		Outstanding: revenue.Sub(received),
	}
}

// PerPurchase compares each purchase's total cost with the revenue of its sales.
// Output order follows b.Purchases.
func PerPurchase(b Book) []model.PurchaseSummary {
	idx := newIndex(b)

	summaries := make([]model.PurchaseSummary, 0, len(b.Purchases))
	for _, p := range b.Purchases {
		totals := PurchaseTotals(p, idx.costsByPurchase[p.ID])
		sales := idx.salesByPurchase[p.ID]
		revenue := Revenue(sales)

		summaries = append(summaries, model.PurchaseSummary{
			PurchaseID: p.ID,
			Title:      p.Title,
			UnitCost:   totals.UnitCost,
			TotalCost:  totals.TotalCost,
			Revenue:    revenue,
			Profit:     revenue.Sub(totals.TotalCost),
			SalesCount: len(sales),
		})
	}
	return summaries
}

// PerUser builds one ledger entry per user:
//
//	Balance = Σ payments received - Σ contributions - Σ additional costs paid - Σ signals paid
//
// Attributed is each purchase's revenue split pro rata to what every user
// invested in that purchase. Inactive users only appear when they have activity.
// Entries are sorted by display name, then user ID.
func PerUser(b Book) []model.LedgerEntry {
	idx := newIndex(b)

	entries := make(map[string]*model.LedgerEntry, len(b.Users))
	active := make(map[string]bool, len(b.Users))
	for _, u := range b.Users {
		entries[u.ID] = newEntry(u)
		active[u.ID] = u.IsActive
	}

	touched := make(map[string]bool)
	entry := func(userID string) *model.LedgerEntry {
		e, ok := entries[userID]
		if !ok {
			e = &model.LedgerEntry{UserID: userID, DisplayName: userID}
			zero(e)
			entries[userID] = e
		}
		touched[userID] = true
		return e
	}

	for _, p := range b.Purchases {
		invested := make(map[string]decimal.Decimal)

		for _, c := range idx.contributionsByPurchase[p.ID] {
			e := entry(c.PayerID)
			e.Contributions = e.Contributions.Add(c.ResolvedAmount)
			invested[c.PayerID] = invested[c.PayerID].Add(c.ResolvedAmount)
		}
		for _, c := range idx.costsByPurchase[p.ID] {
			if c.PaidBy == nil {
				continue
			}
			e := entry(*c.PaidBy)
			e.AdditionalCosts = e.AdditionalCosts.Add(c.Amount)
			invested[*c.PaidBy] = invested[*c.PaidBy].Add(c.Amount)
		}
		if p.SignalPaidBy != nil && !p.SignalAmountEUR.IsZero() {
			e := entry(*p.SignalPaidBy)
			e.Signals = e.Signals.Add(p.SignalAmountEUR)
			invested[*p.SignalPaidBy] = invested[*p.SignalPaidBy].Add(p.SignalAmountEUR)
		}

		attributeRevenue(invested, Revenue(idx.salesByPurchase[p.ID]), entry)
	}

	for _, pay := range b.Payments {
		e := entry(pay.ReceiverID)
		e.Received = e.Received.Add(pay.Amount)
	}

	result := make([]model.LedgerEntry, 0, len(entries))
	for id, e := range entries {
		if known, ok := active[id]; ok && !known && !touched[id] {
			continue
		}
		e.Invested = e.Contributions.Add(e.AdditionalCosts).Add(e.Signals)
		e.Attributed = e.Attributed.Round(MoneyPlaces)
		e.Balance = e.Received.Sub(e.Invested)
		e.AttributedBalance = e.Attributed.Sub(e.Invested)
		result = append(result, *e)
	}

	sort.Slice(result, func(i, j int) bool {
		ni, nj := strings.ToLower(result[i].DisplayName), strings.ToLower(result[j].DisplayName)
		if ni != nj {
			return ni < nj
		}
		return result[i].UserID < result[j].UserID
	})
	return result
}

// attributeRevenue splits revenue across investors in proportion to their share
// of the purchase's total investment. Nothing is attributed when nobody invested.
func attributeRevenue(invested map[string]decimal.Decimal, revenue decimal.Decimal, entry func(string) *model.LedgerEntry) {
	total := decimal.Zero
	for _, amount := range invested {
		total = total.Add(amount)
	}
	if !total.IsPositive() || revenue.IsZero() {
		return
	}
	for userID, amount := range invested {
		e := entry(userID)
		e.Attributed = e.Attributed.Add(amount.Mul(revenue).Div(total))
	}
}

// Reconcile checks the ledger against the overall result. Payments received
// equal revenue minus what buyers still owe, and money invested equals total
// cost minus what nobody has been recorded as paying, so:
//
//	Σ balances = profit - outstanding + unfunded
//
// Outstanding and unfunded are rebuilt from each sale's payments and each
// purchase's funding rather than from the ledger entries, so a payment or
// contribution the ledger counts without a matching sale or purchase leaves
// the book unbalanced.
func Reconcile(b Book, overall model.OverallTotals, entries []model.LedgerEntry) model.Reconciliation {
	idx := newIndex(b)

	ledgerSum := decimal.Zero
	for _, e := range entries {
		ledgerSum = ledgerSum.Add(e.Balance)
	}

	outstanding := decimal.Zero
	for _, s := range b.Sales {
		outstanding = outstanding.Add(SaleTotals(s, idx.paymentsBySale[s.ID]).Outstanding)
	}

	unfunded := decimal.Zero
	for _, p := range b.Purchases {
		unfunded = unfunded.Add(unfundedCost(p, idx.costsByPurchase[p.ID], idx.contributionsByPurchase[p.ID]))
	}

	expected := overall.Profit.Sub(outstanding).Add(unfunded)

	return model.Reconciliation{
		LedgerSum:   ledgerSum,
		Profit:      overall.Profit,
		Outstanding: outstanding,
		Unfunded:    unfunded,
		Balanced:    ledgerSum.Equal(expected),
	}
}

// unfundedCost is the part of a purchase's total cost no user is recorded as paying.
func unfundedCost(p model.Purchase, costs []model.AdditionalCost, contributions []model.Contribution) decimal.Decimal {
	funded := SumContributions(contributions)
	for _, c := range costs {
		if c.PaidBy != nil {
			funded = funded.Add(c.Amount)
		}
	}
	if p.SignalPaidBy != nil {
		funded = funded.Add(p.SignalAmountEUR)
	}
	return PurchaseTotals(p, costs).TotalCost.Sub(funded)
}

func newEntry(u model.User) *model.LedgerEntry {
	e := &model.LedgerEntry{
		UserID:      u.ID,
		DisplayName: u.DisplayName(),
		Role:        u.Role,
	}
	zero(e)
	return e
}

// zero makes every amount an explicit decimal zero so JSON renders "0".
func zero(e *model.LedgerEntry) {
	e.Contributions = decimal.Zero
	e.AdditionalCosts = decimal.Zero
	e.Signals = decimal.Zero
	e.Invested = decimal.Zero
	e.Received = decimal.Zero
	e.Attributed = decimal.Zero
	e.Balance = decimal.Zero
	e.AttributedBalance = decimal.Zero
}
