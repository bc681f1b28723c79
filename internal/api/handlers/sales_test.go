package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/testutil"
)

func TestSaleHandler_ListSales(t *testing.T) {
	setupHandler := func(t *testing.T) (*SaleHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSaleService(t, db, testutil.NewTestCipher(t))
		return NewSaleHandler(svc), db
	}

	t.Run("filters by status and purchase", func(t *testing.T) {
		handler, db := setupHandler(t)
		p1 := testutil.NewPurchase().Build(t, db)
		p2 := testutil.NewPurchase().Build(t, db)
		testutil.NewSale(p1.ID).WithStatus(model.SaleConfirmed).Build(t, db)
		testutil.NewSale(p1.ID).WithStatus(model.SaleDraft).Build(t, db)
		testutil.NewSale(p2.ID).WithStatus(model.SaleConfirmed).Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/sale", map[string]string{
			"status":     "confirmed",
			"purchaseId": p1.ID,
		})
		req = testutil.WithActor(req, testutil.Actor(model.RoleViewer))
		w := httptest.NewRecorder()

		handler.ListSales(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp []model.SaleResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)

		if len(resp) != 1 {
			t.Fatalf("Expected 1 sale, got %d", len(resp))
		}
		if resp[0].PurchaseID != p1.ID || resp[0].Status != model.SaleConfirmed {
			t.Errorf("Unexpected sale returned: %+v", resp[0])
		}
		if resp[0].PurchaseTitle != p1.Title {
			t.Errorf("Expected purchase title %q, got %q", p1.Title, resp[0].PurchaseTitle)
		}
	})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{name: "unknown status", params: map[string]string{"status": "SHIPPED"}},
		{name: "malformed purchaseId", params: map[string]string{"purchaseId": "not-a-uuid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name+" returns 400", func(t *testing.T) {
			handler, _ := setupHandler(t)

			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/sale", tt.params)
			req = testutil.WithActor(req, testutil.Actor(model.RoleViewer))
			w := httptest.NewRecorder()

			handler.ListSales(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSaleHandler_CreateAndGet(t *testing.T) {
	setupHandler := func(t *testing.T) (*SaleHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSaleService(t, db, testutil.NewTestCipher(t))
		return NewSaleHandler(svc), db
	}

	t.Run("creates sale with payment and reports outstanding", func(t *testing.T) {
		handler, db := setupHandler(t)
		receiver := testutil.CreateUser(t, db, model.RoleManager)
		p := testutil.NewPurchase().Build(t, db)

		body := request.CreateSaleRequest{
			PurchaseID:       p.ID,
			BuyerName:        "Joana",
			BuyerDescription: "met at the fair",
			Quantity:         decimal.NewFromInt(2),
			UnitPrice:        decimal.NewFromInt(40),
			SoldOn:           "2024-04-10",
			Status:           string(model.SaleConfirmed),
			Payments: []request.CreatePaymentRequest{
				{
					ReceiverID: receiver.ID,
					Amount:     decimal.NewFromInt(30),
					Method:     string(model.PaymentPix),
					PaidOn:     "2024-04-10",
				},
			},
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale", body, nil)
		req = testutil.WithActor(req, testutil.Actor(model.RoleManager))
		w := httptest.NewRecorder()

		handler.CreateSale(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var created model.SaleResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)

		if !created.TotalPrice.Equal(decimal.NewFromInt(80)) {
			t.Errorf("Expected total price 80, got %s", created.TotalPrice)
		}
		if !created.Outstanding.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected outstanding 50, got %s", created.Outstanding)
		}
		if created.BuyerDescription != "met at the fair" {
			t.Errorf("Expected decrypted description, got %q", created.BuyerDescription)
		}

		req = testutil.NewRequestWithURLParams(http.MethodGet, "/api/sale/"+created.ID, map[string]string{"uuid": created.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleViewer))
		w = httptest.NewRecorder()

		handler.GetSale(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var fetched model.SaleResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&fetched)
		if len(fetched.Payments) != 1 {
			t.Errorf("Expected 1 payment, got %d", len(fetched.Payments))
		}
	})

	t.Run("missing purchase returns 404", func(t *testing.T) {
		handler, db := setupHandler(t)

		body := request.CreateSaleRequest{
			PurchaseID: testutil.MakeID(),
			BuyerName:  "Joana",
			Quantity:   decimal.NewFromInt(1),
			UnitPrice:  decimal.NewFromInt(10),
			SoldOn:     "2024-04-10",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale", body, nil)
		req = testutil.WithActor(req, testutil.Actor(model.RoleAdmin))
		w := httptest.NewRecorder()

		handler.CreateSale(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "sales", 0)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		handler, db := setupHandler(t)
		p := testutil.NewPurchase().Build(t, db)

		body := request.CreateSaleRequest{
			PurchaseID: p.ID,
			BuyerName:  "Joana",
			Quantity:   decimal.NewFromInt(1),
			UnitPrice:  decimal.NewFromInt(10),
			SoldOn:     "2024-04-10",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale", body, nil)
		req = testutil.WithActor(req, testutil.Actor(model.RoleViewer))
		w := httptest.NewRecorder()

		handler.CreateSale(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", w.Code)
		}
	})
}

func TestSaleHandler_UpdateAndPayments(t *testing.T) {
	setupHandler := func(t *testing.T) (*SaleHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSaleService(t, db, testutil.NewTestCipher(t))
		return NewSaleHandler(svc), db
	}

	t.Run("status can move backwards", func(t *testing.T) {
		handler, db := setupHandler(t)
		p := testutil.NewPurchase().Build(t, db)
		s := testutil.NewSale(p.ID).WithStatus(model.SaleSettled).Build(t, db)

		status := string(model.SaleDraft)
		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/sale/"+s.ID,
			request.UpdateSaleRequest{Status: &status}, map[string]string{"uuid": s.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleManager))
		w := httptest.NewRecorder()

		handler.UpdateSale(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp model.SaleResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != model.SaleDraft {
			t.Errorf("Expected status DRAFT, got %s", resp.Status)
		}
	})

	t.Run("add and delete payment", func(t *testing.T) {
		handler, db := setupHandler(t)
		receiver := testutil.CreateUser(t, db, model.RoleManager)
		p := testutil.NewPurchase().Build(t, db)
		s := testutil.NewSale(p.ID).Build(t, db)

		body := request.CreatePaymentRequest{
			ReceiverID: receiver.ID,
			Amount:     decimal.NewFromInt(15),
			Method:     string(model.PaymentCash),
			PaidOn:     "2024-04-11",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale/"+s.ID+"/payment", body,
			map[string]string{"uuid": s.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleManager))
		w := httptest.NewRecorder()

		handler.AddPayment(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var payment model.SalePayment
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&payment)

		req = testutil.NewRequestWithURLParams(http.MethodDelete, "/api/sale/"+s.ID+"/payment/"+payment.ID,
			map[string]string{"uuid": s.ID, "childId": payment.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleManager))
		w = httptest.NewRecorder()

		handler.DeletePayment(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "sale_payments", 0)
	})

	t.Run("payment with unknown method returns 400", func(t *testing.T) {
		handler, db := setupHandler(t)
		receiver := testutil.CreateUser(t, db, model.RoleManager)
		p := testutil.NewPurchase().Build(t, db)
		s := testutil.NewSale(p.ID).Build(t, db)

		body := request.CreatePaymentRequest{
			ReceiverID: receiver.ID,
			Amount:     decimal.NewFromInt(15),
			Method:     "CHEQUE",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale/"+s.ID+"/payment", body,
			map[string]string{"uuid": s.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleManager))
		w := httptest.NewRecorder()

		handler.AddPayment(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("viewer payment with bad method is forbidden", func(t *testing.T) {
		handler, db := setupHandler(t)
		p := testutil.NewPurchase().Build(t, db)
		s := testutil.NewSale(p.ID).Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/sale/"+s.ID+"/payment",
			request.CreatePaymentRequest{Method: "CHEQUE"}, map[string]string{"uuid": s.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleViewer))
		w := httptest.NewRecorder()

		handler.AddPayment(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", w.Code)
		}
	})

	t.Run("delete sale", func(t *testing.T) {
		handler, db := setupHandler(t)
		p := testutil.NewPurchase().Build(t, db)
		s := testutil.NewSale(p.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/sale/"+s.ID, map[string]string{"uuid": s.ID})
		req = testutil.WithActor(req, testutil.Actor(model.RoleAdmin))
		w := httptest.NewRecorder()

		handler.DeleteSale(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}
		testutil.AssertRowCount(t, db, "sales", 0)
	})
}
