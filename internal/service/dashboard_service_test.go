package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/testutil"
)

// TestDashboardService_GetDashboard tests the aggregate view end to end.
//
// WHY: The dashboard is the only place partners see who owes whom. The ledger
// must reconcile with the overall profit read from the same rows.
func TestDashboardService_GetDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db)

		dash, err := svc.GetDashboard(ctx, testutil.Actor(model.RoleViewer))
		if err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}
		assertDecimal(t, "profit", dash.Totals.Profit, decimal.Zero)
		if len(dash.Ledger) != 0 || len(dash.Purchases) != 0 {
			t.Errorf("Expected empty ledger and purchases, got %d / %d", len(dash.Ledger), len(dash.Purchases))
		}
		if !dash.Reconciliation.Balanced {
			t.Error("Expected empty book to reconcile")
		}
	})

	t.Run("profit, balances and reconciliation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db)

		alice := testutil.NewUser().WithName("Alice", "Silva").Build(t, db)
		bob := testutil.NewUser().WithName("Bob", "Souza").Build(t, db)
		testutil.NewUser().WithName("Zed", "Gone").Inactive().Build(t, db)

		p := testutil.NewPurchase().Build(t, db)
		testutil.NewContribution(p.ID, alice.ID).WithAbsolute("60").Build(t, db)
		testutil.NewContribution(p.ID, bob.ID).WithAbsolute("40").Build(t, db)
		testutil.NewAdditionalCost(p.ID).WithAmount("20").PaidBy(alice.ID).Build(t, db)

		sale := testutil.NewSale(p.ID).WithQuantity("5").WithUnitPrice("30").Build(t, db)
		testutil.NewPayment(sale.ID, bob.ID).WithAmount("150").Build(t, db)

		dash, err := svc.GetDashboard(ctx, testutil.Actor(model.RoleViewer))
		if err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}

		assertDecimal(t, "invested", dash.Totals.Invested, d("120"))
		assertDecimal(t, "revenue", dash.Totals.Revenue, d("150"))
		assertDecimal(t, "profit", dash.Totals.Profit, d("30"))
		assertDecimal(t, "outstanding", dash.Totals.Outstanding, decimal.Zero)

		if len(dash.Ledger) != 2 {
			t.Fatalf("Expected 2 ledger entries (inactive user without activity hidden), got %d", len(dash.Ledger))
		}
		a, b := dash.Ledger[0], dash.Ledger[1]
		if a.UserID != alice.ID || b.UserID != bob.ID {
			t.Fatalf("Expected ledger sorted by display name, got %s, %s", a.DisplayName, b.DisplayName)
		}
		assertDecimal(t, "alice invested", a.Invested, d("80"))
		assertDecimal(t, "alice balance", a.Balance, d("-80"))
		assertDecimal(t, "alice attributed", a.Attributed, d("100"))
		assertDecimal(t, "bob invested", b.Invested, d("40"))
		assertDecimal(t, "bob balance", b.Balance, d("110"))
		assertDecimal(t, "bob attributed", b.Attributed, d("50"))

		if len(dash.Purchases) != 1 {
			t.Fatalf("Expected 1 purchase summary, got %d", len(dash.Purchases))
		}
		assertDecimal(t, "purchase profit", dash.Purchases[0].Profit, d("30"))
		if dash.Purchases[0].SalesCount != 1 {
			t.Errorf("Expected 1 sale, got %d", dash.Purchases[0].SalesCount)
		}

		assertDecimal(t, "ledger sum", dash.Reconciliation.LedgerSum, d("30"))
		if !dash.Reconciliation.Balanced {
			t.Errorf("Expected ledger to reconcile, got %+v", dash.Reconciliation)
		}
	})

	t.Run("inactive user with activity stays in the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db)

		former := testutil.NewUser().Inactive().Build(t, db)
		testutil.NewPurchase().WithSignal("15", former.ID).Build(t, db)

		dash, err := svc.GetDashboard(ctx, testutil.Actor(model.RoleViewer))
		if err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}
		if len(dash.Ledger) != 1 || dash.Ledger[0].UserID != former.ID {
			t.Fatalf("Expected inactive signal payer in ledger, got %+v", dash.Ledger)
		}
		assertDecimal(t, "signals", dash.Ledger[0].Signals, d("15"))
		assertDecimal(t, "unfunded", dash.Reconciliation.Unfunded, d("100"))
		if !dash.Reconciliation.Balanced {
			t.Errorf("Expected ledger to reconcile, got %+v", dash.Reconciliation)
		}
	})

	t.Run("book is read in one transaction that is released", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db)
		testutil.NewPurchase().Build(t, db)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := svc.GetDashboard(cancelled, testutil.Actor(model.RoleViewer)); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled from a cancelled load, got %v", err)
		}

		if _, err := svc.GetDashboard(ctx, testutil.Actor(model.RoleViewer)); err != nil {
			t.Fatalf("GetDashboard() returned unexpected error: %v", err)
		}

		// The test pool holds a single connection, so a leaked transaction blocks this write.
		writeCtx, cancelWrite := context.WithTimeout(ctx, 2*time.Second)
		defer cancelWrite()
		if _, err := db.ExecContext(writeCtx, `UPDATE purchases SET title = 'Renamed'`); err != nil {
			t.Errorf("Expected connection to be free after GetDashboard, got %v", err)
		}
	})

	t.Run("requires an authenticated role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db)

		_, err := svc.GetDashboard(ctx, testutil.Actor(model.Role("")))
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Errorf("Expected ErrPermissionDenied, got %v", err)
		}
	})
}
