package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sidesales/sidesales-backend/internal/api"
	"github.com/sidesales/sidesales-backend/internal/config"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/testutil"
)

func newTestRouter(t *testing.T, loginRateLimit int) (http.Handler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cipher := testutil.NewTestCipher(t)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Auth: config.AuthConfig{LoginRateLimit: loginRateLimit},
	}

	router := api.NewRouter(
		testutil.NewTestSystemService(t, db),
		testutil.NewTestAuthService(t, db),
		testutil.NewTestUserService(t, db),
		testutil.NewTestPurchaseService(t, db, cipher),
		testutil.NewTestSaleService(t, db, cipher),
		testutil.NewTestDashboardService(t, db),
		cfg,
	)
	return router, db
}

func loginToken(t *testing.T, router http.Handler, username string) string {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + testutil.DefaultPassword + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with %d: %s", w.Code, w.Body.String())
	}
	var resp model.LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestRouter(t *testing.T) {
	t.Run("system routes are public", func(t *testing.T) {
		router, _ := newTestRouter(t, 10)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		router, _ := newTestRouter(t, 10)

		for _, path := range []string{"/api/dashboard", "/api/purchase", "/api/sale", "/api/user", "/api/auth/me"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", path, w.Code)
			}
		}
	})

	t.Run("authenticated flow", func(t *testing.T) {
		router, db := newTestRouter(t, 10)
		user := testutil.CreateUser(t, db, model.RoleManager)
		token := loginToken(t, router, user.Username)

		body := `{"title":"Camping chairs","quantity":"6","purchasedOn":"2024-05-01","totalAmountOriginal":"120","totalCurrency":"EUR"}`
		req := httptest.NewRequest(http.MethodPost, "/api/purchase", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var created model.PurchaseResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)

		req = httptest.NewRequest(http.MethodGet, "/api/purchase/"+created.ID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403 for manager listing users, got %d", w.Code)
		}
	})

	t.Run("malformed ids are rejected before the handler", func(t *testing.T) {
		router, db := newTestRouter(t, 10)
		user := testutil.CreateUser(t, db, model.RoleAdmin)
		token := loginToken(t, router, user.Username)
		p := testutil.NewPurchase().Build(t, db)

		for _, path := range []string{"/api/purchase/not-a-uuid", "/api/purchase/" + p.ID + "/cost/not-a-uuid"} {
			method := http.MethodGet
			if strings.Contains(path, "/cost/") {
				method = http.MethodDelete
			}
			req := httptest.NewRequest(method, path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("%s %s: expected 400, got %d", method, path, w.Code)
			}
		}
	})

	t.Run("login is rate limited per client", func(t *testing.T) {
		router, _ := newTestRouter(t, 2)

		var last int
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"username":"nobody","password":"whatever-pass"}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			last = w.Code
		}

		if last != http.StatusTooManyRequests {
			t.Errorf("Expected 429 on third attempt, got %d", last)
		}
	})
}
