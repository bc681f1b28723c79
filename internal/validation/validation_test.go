package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/api/request"
)

const testUUID = "8b1d3c9e-6a3f-4d2b-9f1e-2c7a5b4d6e8f"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func strPtr(s string) *string {
	return &s
}

// fieldErrors unwraps a *Error or fails the test.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %T (%v)", err, err)
	}
	return verr.Fields
}

func validPurchase() request.CreatePurchaseRequest {
	return request.CreatePurchaseRequest{
		Title:               "Batch of bikes",
		Quantity:            dec("10"),
		PurchasedOn:         "2024-03-01",
		TotalAmountOriginal: dec("100"),
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID(testUUID); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Year() != 2024 || got.Month() != 2 || got.Day() != 29 {
		t.Errorf("Unexpected date %v", got)
	}

	for _, bad := range []string{"", "29/02/2024", "2023-02-29", "2024-02-29T10:00:00Z"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q): expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := map[string]string{"": "EUR", "usd": "USD", " brl ": "BRL", "EUR": "EUR"}
	for in, want := range tests {
		if got := NormalizeCurrency(in); got != want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateCreatePurchase(t *testing.T) {
	t.Run("valid minimal purchase", func(t *testing.T) {
		if err := ValidateCreatePurchase(validPurchase()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("valid purchase with nested children", func(t *testing.T) {
		req := validPurchase()
		req.Contributions = []request.CreateContributionRequest{
			{PayerID: testUUID, ContributionType: "PERCENTAGE", Value: dec("50")},
			{PayerID: testUUID, ContributionType: "ABSOLUTE", Value: dec("50"), PaidOn: "2024-03-02"},
		}
		req.AdditionalCosts = []request.CreateAdditionalCostRequest{
			{Label: "Shipping", Amount: dec("20"), PaidBy: testUUID},
		}
		if err := ValidateCreatePurchase(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		fields := fieldErrors(t, ValidateCreatePurchase(request.CreatePurchaseRequest{}))
		for _, f := range []string{"title", "quantity", "purchasedOn"} {
			if _, ok := fields[f]; !ok {
				t.Errorf("Expected error for %s, got %v", f, fields)
			}
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		req := validPurchase()
		req.Quantity = decimal.Zero
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["quantity"]; !ok {
			t.Errorf("Expected quantity error, got %v", fields)
		}
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		req := validPurchase()
		req.TotalAmountOriginal = dec("-1")
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["totalAmountOriginal"]; !ok {
			t.Errorf("Expected totalAmountOriginal error, got %v", fields)
		}
	})

	t.Run("foreign currency needs EUR amount", func(t *testing.T) {
		req := validPurchase()
		req.TotalCurrency = "USD"
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["totalAmountEur"]; !ok {
			t.Errorf("Expected totalAmountEur error, got %v", fields)
		}

		req.TotalAmountEUR = decPtr("92.50")
		if err := ValidateCreatePurchase(req); err != nil {
			t.Errorf("Expected no error with EUR amount, got %v", err)
		}
	})

	t.Run("invalid currency code", func(t *testing.T) {
		req := validPurchase()
		req.TotalCurrency = "EURO"
		req.TotalAmountEUR = decPtr("100")
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["totalCurrency"]; !ok {
			t.Errorf("Expected totalCurrency error, got %v", fields)
		}
	})

	t.Run("title too long", func(t *testing.T) {
		req := validPurchase()
		req.Title = strings.Repeat("x", MaxTitleLength+1)
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["title"]; !ok {
			t.Errorf("Expected title error, got %v", fields)
		}
	})

	t.Run("nested errors are keyed by index", func(t *testing.T) {
		req := validPurchase()
		req.Contributions = []request.CreateContributionRequest{
			{PayerID: testUUID, ContributionType: "ABSOLUTE", Value: dec("10")},
			{PayerID: "bad", ContributionType: "PERCENTAGE", Value: dec("150")},
		}
		req.AdditionalCosts = []request.CreateAdditionalCostRequest{{Amount: dec("-5")}}

		fields := fieldErrors(t, ValidateCreatePurchase(req))
		for _, f := range []string{
			"contributions[1].payerId",
			"contributions[1].value",
			"additionalCosts[0].label",
			"additionalCosts[0].amount",
		} {
			if _, ok := fields[f]; !ok {
				t.Errorf("Expected error for %s, got %v", f, fields)
			}
		}
		if _, ok := fields["contributions[0].payerId"]; ok {
			t.Errorf("Did not expect error for valid first contribution")
		}
	})
}

func TestValidateContribution(t *testing.T) {
	tests := []struct {
		name    string
		req     request.CreateContributionRequest
		wantErr string
	}{
		{
			name: "absolute",
			req:  request.CreateContributionRequest{PayerID: testUUID, ContributionType: "ABSOLUTE", Value: dec("250")},
		},
		{
			name: "percentage upper bound",
			req:  request.CreateContributionRequest{PayerID: testUUID, ContributionType: "PERCENTAGE", Value: dec("100")},
		},
		{
			name:    "percentage above 100",
			req:     request.CreateContributionRequest{PayerID: testUUID, ContributionType: "PERCENTAGE", Value: dec("100.01")},
			wantErr: "value",
		},
		{
			name:    "unknown type",
			req:     request.CreateContributionRequest{PayerID: testUUID, ContributionType: "SHARES", Value: dec("1")},
			wantErr: "contributionType",
		},
		{
			name:    "missing payer",
			req:     request.CreateContributionRequest{ContributionType: "ABSOLUTE", Value: dec("1")},
			wantErr: "payerId",
		},
		{
			name:    "bad date",
			req:     request.CreateContributionRequest{PayerID: testUUID, ContributionType: "ABSOLUTE", Value: dec("1"), PaidOn: "yesterday"},
			wantErr: "paidOn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContribution(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			fields := fieldErrors(t, err)
			if _, ok := fields[tt.wantErr]; !ok {
				t.Errorf("Expected error for %s, got %v", tt.wantErr, fields)
			}
		})
	}
}

func TestValidateUpdatePurchase(t *testing.T) {
	if err := ValidateUpdatePurchase(request.UpdatePurchaseRequest{}); err != nil {
		t.Errorf("Expected empty update to be valid, got %v", err)
	}

	fields := fieldErrors(t, ValidateUpdatePurchase(request.UpdatePurchaseRequest{
		Title:        strPtr(" "),
		Quantity:     decPtr("0"),
		SignalPaidBy: strPtr("nope"),
	}))
	for _, f := range []string{"title", "quantity", "signalPaidBy"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("Expected error for %s, got %v", f, fields)
		}
	}

	if err := ValidateUpdatePurchase(request.UpdatePurchaseRequest{SignalPaidBy: strPtr("")}); err != nil {
		t.Errorf("Expected clearing signalPaidBy to be valid, got %v", err)
	}
}

func TestValidateCreateSale(t *testing.T) {
	valid := request.CreateSaleRequest{
		PurchaseID: testUUID,
		BuyerName:  "Carol",
		Quantity:   dec("5"),
		UnitPrice:  dec("30"),
		SoldOn:     "2024-04-01",
	}

	t.Run("valid", func(t *testing.T) {
		if err := ValidateCreateSale(valid); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("any status accepted", func(t *testing.T) {
		for _, s := range []string{"DRAFT", "CONFIRMED", "SETTLED"} {
			req := valid
			req.Status = s
			if err := ValidateCreateSale(req); err != nil {
				t.Errorf("status %s: expected no error, got %v", s, err)
			}
		}
	})

	t.Run("invalid fields", func(t *testing.T) {
		req := valid
		req.Quantity = dec("0")
		req.UnitPrice = dec("-1")
		req.Status = "SHIPPED"
		req.BuyerName = ""
		req.Payments = []request.CreatePaymentRequest{{ReceiverID: testUUID, Amount: dec("0"), Method: "BITCOIN"}}

		fields := fieldErrors(t, ValidateCreateSale(req))
		for _, f := range []string{"quantity", "unitPrice", "status", "buyerName", "payments[0].amount", "payments[0].method"} {
			if _, ok := fields[f]; !ok {
				t.Errorf("Expected error for %s, got %v", f, fields)
			}
		}
	})
}

func TestValidateUpdateSale(t *testing.T) {
	if err := ValidateUpdateSale(request.UpdateSaleRequest{Status: strPtr("SETTLED")}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	fields := fieldErrors(t, ValidateUpdateSale(request.UpdateSaleRequest{Status: strPtr("")}))
	if _, ok := fields["status"]; !ok {
		t.Errorf("Expected status error, got %v", fields)
	}
}

func TestValidatePayment(t *testing.T) {
	ok := request.CreatePaymentRequest{ReceiverID: testUUID, Amount: dec("75"), Method: "PIX"}
	if err := ValidatePayment(ok); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	fields := fieldErrors(t, ValidatePayment(request.CreatePaymentRequest{Amount: dec("-1")}))
	for _, f := range []string{"receiverId", "amount", "method"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("Expected error for %s, got %v", f, fields)
		}
	}
}

func TestValidateUsers(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		valid := request.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"}
		if err := ValidateCreateUser(valid); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}

		fields := fieldErrors(t, ValidateCreateUser(request.CreateUserRequest{
			Username: "a b",
			Email:    "not-an-email",
			Role:     "OWNER",
			Password: "short",
		}))
		for _, f := range []string{"username", "email", "role", "password"} {
			if _, ok := fields[f]; !ok {
				t.Errorf("Expected error for %s, got %v", f, fields)
			}
		}
	})

	t.Run("update", func(t *testing.T) {
		if err := ValidateUpdateUser(request.UpdateUserRequest{Role: strPtr("VIEWER")}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		fields := fieldErrors(t, ValidateUpdateUser(request.UpdateUserRequest{Role: strPtr("")}))
		if _, ok := fields["role"]; !ok {
			t.Errorf("Expected role error, got %v", fields)
		}
	})

	t.Run("password", func(t *testing.T) {
		fields := fieldErrors(t, ValidateSetPassword(request.SetPasswordRequest{Password: strings.Repeat("x", 73)}))
		if _, ok := fields["password"]; !ok {
			t.Errorf("Expected password error, got %v", fields)
		}
	})

	t.Run("login", func(t *testing.T) {
		fields := fieldErrors(t, ValidateLogin(request.LoginRequest{}))
		if len(fields) != 2 {
			t.Errorf("Expected 2 errors, got %v", fields)
		}
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"<b>Bob</b>", "Bob"},
		{"O'Brien & Sons", "O'Brien & Sons"},
		{"tab\tkept", "tab\tkept"},
		{"bell\a", "bell"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if SanitizePtr(nil) != nil {
		t.Error("Expected nil for nil input")
	}
	if got := SanitizePtr(strPtr("<i>x</i>")); *got != "x" {
		t.Errorf("SanitizePtr = %q, want x", *got)
	}
}

func TestErrorMessageIsSorted(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "second", "a": "first"}}
	if got := err.Error(); got != "a: first; b: second" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAmountPrecision(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "0", wantErr: false},
		{value: "12.50", wantErr: false},
		{value: "12.500", wantErr: false},
		{value: "9999999999.99", wantErr: false},
		{value: "1e2", wantErr: false},
		{value: "10000000000", wantErr: true},
		{value: "12.345", wantErr: true},
		{value: "1e3000000", wantErr: true},
		{value: "1e-3000000", wantErr: true},
		{value: "123456789e-9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := validPurchase()
			req.TotalAmountOriginal = dec(tt.value)

			err := ValidateCreatePurchase(req)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			fields := fieldErrors(t, err)
			if _, ok := fields["totalAmountOriginal"]; !ok {
				t.Errorf("Expected totalAmountOriginal error, got %v", fields)
			}
		})
	}

	t.Run("quantity and sale price are bounded", func(t *testing.T) {
		req := validPurchase()
		req.Quantity = dec("1e30")
		fields := fieldErrors(t, ValidateCreatePurchase(req))
		if _, ok := fields["quantity"]; !ok {
			t.Errorf("Expected quantity error, got %v", fields)
		}

		price := dec("0.001")
		fields = fieldErrors(t, ValidateUpdateSale(request.UpdateSaleRequest{UnitPrice: &price}))
		if _, ok := fields["unitPrice"]; !ok {
			t.Errorf("Expected unitPrice error, got %v", fields)
		}
	})

	t.Run("payment amount is bounded", func(t *testing.T) {
		fields := fieldErrors(t, ValidatePayment(request.CreatePaymentRequest{
			ReceiverID: testUUID, Amount: dec("5e12"), Method: "PIX",
		}))
		if _, ok := fields["amount"]; !ok {
			t.Errorf("Expected amount error, got %v", fields)
		}
	})
}
