package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sidesales/sidesales-backend/internal/encryption"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// DefaultPassword is the password of users created by UserBuilder.
const DefaultPassword = "correct-horse-battery"

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// defaultDate is the date used by builders unless overridden.
var defaultDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	// Simple creation with defaults (active MANAGER)
//	user := testutil.NewUser().Build(t, db)
//
//	// Customized user
//	admin := testutil.NewUser().
//	    WithUsername("alice").
//	    WithRole(model.RoleAdmin).
//	    Build(t, db)
type UserBuilder struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      model.Role
	IsActive  bool
	Password  string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		ID:       MakeID(),
		Username: MakeUsername("user"),
		Role:     model.RoleManager,
		IsActive: true,
		Password: DefaultPassword,
	}
}

// WithUsername sets a custom username.
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.Username = username
	return b
}

// WithName sets the first and last name.
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.FirstName = first
	b.LastName = last
	return b
}

// WithRole sets the role.
func (b *UserBuilder) WithRole(role model.Role) *UserBuilder {
	b.Role = role
	return b
}

// WithPassword sets the plaintext password that is hashed on Build.
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.Password = password
	return b
}

// Inactive marks the user as deactivated.
func (b *UserBuilder) Inactive() *UserBuilder {
	b.IsActive = false
	return b
}

// Build creates the user in the database and returns it.
// Passwords are hashed with bcrypt.MinCost to keep tests fast.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO users (id, username, email, first_name, last_name, role, is_active, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query, b.ID, b.Username, b.Email, b.FirstName, b.LastName, b.Role, b.IsActive,
		string(hash), now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return model.User{
		ID:           b.ID,
		Username:     b.Username,
		Email:        b.Email,
		FirstName:    b.FirstName,
		LastName:     b.LastName,
		Role:         b.Role,
		IsActive:     b.IsActive,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateUser is a shortcut for creating an active user with the given role.
func CreateUser(t *testing.T, db *sql.DB, role model.Role) model.User {
	t.Helper()
	return NewUser().WithRole(role).Build(t, db)
}

// PurchaseBuilder provides a fluent interface for creating test purchases.
// Defaults: quantity 10, total 100 EUR, no signal.
//
// Example usage:
//
//	purchase := testutil.NewPurchase().
//	    WithTotalEUR("250").
//	    WithSignal("20", alice.ID).
//	    Build(t, db)
type PurchaseBuilder struct {
	ID                   string
	Title                string
	Quantity             decimal.Decimal
	PurchasedOn          time.Time
	TotalAmountOriginal  decimal.Decimal
	TotalCurrency        string
	TotalAmountEUR       decimal.Decimal
	SignalAmountOriginal decimal.Decimal
	SignalAmountEUR      decimal.Decimal
	SignalPaidBy         *string
}

// NewPurchase creates a PurchaseBuilder with sensible defaults.
func NewPurchase() *PurchaseBuilder {
	return &PurchaseBuilder{
		ID:                   MakeID(),
		Title:                MakeTitle("Test Purchase"),
		Quantity:             dec("10"),
		PurchasedOn:          defaultDate,
		TotalAmountOriginal:  dec("100"),
		TotalCurrency:        "EUR",
		TotalAmountEUR:       dec("100"),
		SignalAmountOriginal: decimal.Zero,
		SignalAmountEUR:      decimal.Zero,
	}
}

// WithTitle sets a custom title.
func (b *PurchaseBuilder) WithTitle(title string) *PurchaseBuilder {
	b.Title = title
	return b
}

// WithQuantity sets the purchased quantity.
func (b *PurchaseBuilder) WithQuantity(quantity string) *PurchaseBuilder {
	b.Quantity = dec(quantity)
	return b
}

// WithTotalEUR sets both the original and EUR total in EUR.
func (b *PurchaseBuilder) WithTotalEUR(amount string) *PurchaseBuilder {
	b.TotalAmountOriginal = dec(amount)
	b.TotalCurrency = "EUR"
	b.TotalAmountEUR = dec(amount)
	return b
}

// WithTotal sets a total in a foreign currency with its EUR equivalent.
func (b *PurchaseBuilder) WithTotal(original, currency, eur string) *PurchaseBuilder {
	b.TotalAmountOriginal = dec(original)
	b.TotalCurrency = currency
	b.TotalAmountEUR = dec(eur)
	return b
}

// WithSignal sets a signal in EUR paid by the given user.
func (b *PurchaseBuilder) WithSignal(amount, paidBy string) *PurchaseBuilder {
	b.SignalAmountOriginal = dec(amount)
	b.SignalAmountEUR = dec(amount)
	b.SignalPaidBy = &paidBy
	return b
}

// WithPurchasedOn sets the purchase date.
func (b *PurchaseBuilder) WithPurchasedOn(date time.Time) *PurchaseBuilder {
	b.PurchasedOn = date
	return b
}

// Build creates the purchase in the database and returns it.
func (b *PurchaseBuilder) Build(t *testing.T, db *sql.DB) model.Purchase {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO purchases (id, title, description, quantity, purchased_on,
			total_amount_original, total_currency, total_amount_eur,
			signal_amount_original, signal_currency, signal_amount_eur,
			signal_paid_by, signal_paid_on, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?, ?, ?, 'EUR', ?, ?, NULL, ?, ?)
	`
	_, err := db.Exec(query, b.ID, b.Title, b.Quantity, b.PurchasedOn.Format(dateLayout),
		b.TotalAmountOriginal, b.TotalCurrency, b.TotalAmountEUR,
		b.SignalAmountOriginal, b.SignalAmountEUR, nullable(b.SignalPaidBy),
		now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test purchase: %v", err)
	}

	return model.Purchase{
		ID:                   b.ID,
		Title:                b.Title,
		Quantity:             b.Quantity,
		PurchasedOn:          b.PurchasedOn,
		TotalAmountOriginal:  b.TotalAmountOriginal,
		TotalCurrency:        b.TotalCurrency,
		TotalAmountEUR:       b.TotalAmountEUR,
		SignalAmountOriginal: b.SignalAmountOriginal,
		SignalCurrency:       "EUR",
		SignalAmountEUR:      b.SignalAmountEUR,
		SignalPaidBy:         b.SignalPaidBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// ContributionBuilder provides a fluent interface for creating test contributions.
// The resolved amount is stored as given; builders do not resolve percentages.
type ContributionBuilder struct {
	ID             string
	PurchaseID     string
	PayerID        string
	Type           model.ContributionType
	Value          decimal.Decimal
	ResolvedAmount decimal.Decimal
	PaidOn         time.Time
}

// NewContribution creates an absolute contribution of 50.
func NewContribution(purchaseID, payerID string) *ContributionBuilder {
	return &ContributionBuilder{
		ID:             MakeID(),
		PurchaseID:     purchaseID,
		PayerID:        payerID,
		Type:           model.ContributionAbsolute,
		Value:          dec("50"),
		ResolvedAmount: dec("50"),
		PaidOn:         defaultDate,
	}
}

// WithAbsolute sets an absolute contribution.
func (b *ContributionBuilder) WithAbsolute(amount string) *ContributionBuilder {
	b.Type = model.ContributionAbsolute
	b.Value = dec(amount)
	b.ResolvedAmount = dec(amount)
	return b
}

// WithPercentage sets a percentage contribution and the amount it resolved to.
func (b *ContributionBuilder) WithPercentage(percent, resolved string) *ContributionBuilder {
	b.Type = model.ContributionPercentage
	b.Value = dec(percent)
	b.ResolvedAmount = dec(resolved)
	return b
}

// Build creates the contribution in the database and returns it.
func (b *ContributionBuilder) Build(t *testing.T, db *sql.DB) model.Contribution {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO purchase_contributions
			(id, purchase_id, payer_id, contribution_type, value, resolved_amount, paid_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?)
	`
	_, err := db.Exec(query, b.ID, b.PurchaseID, b.PayerID, b.Type, b.Value, b.ResolvedAmount,
		b.PaidOn.Format(dateLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test contribution: %v", err)
	}

	return model.Contribution{
		ID:             b.ID,
		PurchaseID:     b.PurchaseID,
		PayerID:        b.PayerID,
		Type:           b.Type,
		Value:          b.Value,
		ResolvedAmount: b.ResolvedAmount,
		PaidOn:         b.PaidOn,
		CreatedAt:      now,
	}
}

// AdditionalCostBuilder provides a fluent interface for creating test costs.
type AdditionalCostBuilder struct {
	ID         string
	PurchaseID string
	Label      string
	Amount     decimal.Decimal
	paidBy     *string
	IncurredOn time.Time
}

// NewAdditionalCost creates an unattributed cost of 10.
func NewAdditionalCost(purchaseID string) *AdditionalCostBuilder {
	return &AdditionalCostBuilder{
		ID:         MakeID(),
		PurchaseID: purchaseID,
		Label:      "Shipping",
		Amount:     dec("10"),
		IncurredOn: defaultDate,
	}
}

// WithAmount sets the cost amount.
func (b *AdditionalCostBuilder) WithAmount(amount string) *AdditionalCostBuilder {
	b.Amount = dec(amount)
	return b
}

// PaidBy attributes the cost to a user.
func (b *AdditionalCostBuilder) PaidBy(userID string) *AdditionalCostBuilder {
	b.paidBy = &userID
	return b
}

// Build creates the cost in the database and returns it.
func (b *AdditionalCostBuilder) Build(t *testing.T, db *sql.DB) model.AdditionalCost {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO additional_costs (id, purchase_id, label, amount, paid_by, incurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, b.ID, b.PurchaseID, b.Label, b.Amount, nullable(b.paidBy),
		b.IncurredOn.Format(dateLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test additional cost: %v", err)
	}

	return model.AdditionalCost{
		ID:         b.ID,
		PurchaseID: b.PurchaseID,
		Label:      b.Label,
		Amount:     b.Amount,
		PaidBy:     b.paidBy,
		IncurredOn: b.IncurredOn,
		CreatedAt:  now,
	}
}

// SaleBuilder provides a fluent interface for creating test sales.
// Defaults: quantity 1 at 10, status DRAFT, no buyer description.
type SaleBuilder struct {
	ID               string
	PurchaseID       string
	BuyerName        string
	BuyerDescription string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	SoldOn           time.Time
	Status           model.SaleStatus
}

// NewSale creates a SaleBuilder with sensible defaults.
func NewSale(purchaseID string) *SaleBuilder {
	return &SaleBuilder{
		ID:         MakeID(),
		PurchaseID: purchaseID,
		BuyerName:  "Test Buyer",
		Quantity:   dec("1"),
		UnitPrice:  dec("10"),
		SoldOn:     defaultDate.AddDate(0, 1, 0),
		Status:     model.SaleDraft,
	}
}

// WithQuantity sets the sold quantity.
func (b *SaleBuilder) WithQuantity(quantity string) *SaleBuilder {
	b.Quantity = dec(quantity)
	return b
}

// WithUnitPrice sets the unit price.
func (b *SaleBuilder) WithUnitPrice(price string) *SaleBuilder {
	b.UnitPrice = dec(price)
	return b
}

// WithStatus sets the status.
func (b *SaleBuilder) WithStatus(status model.SaleStatus) *SaleBuilder {
	b.Status = status
	return b
}

// WithBuyerDescription stores the description encrypted with cipher, as the service would.
func (b *SaleBuilder) WithBuyerDescription(t *testing.T, cipher *encryption.Cipher, description string) *SaleBuilder {
	t.Helper()
	token, err := cipher.Encrypt(description)
	if err != nil {
		t.Fatalf("Failed to encrypt buyer description: %v", err)
	}
	b.BuyerDescription = token
	return b
}

// Build creates the sale in the database and returns it. The returned
// BuyerDescription is the stored (encrypted) value.
func (b *SaleBuilder) Build(t *testing.T, db *sql.DB) model.Sale {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO sales
			(id, purchase_id, buyer_name, buyer_description, quantity, unit_price, sold_on, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)
	`
	_, err := db.Exec(query, b.ID, b.PurchaseID, b.BuyerName, b.BuyerDescription, b.Quantity, b.UnitPrice,
		b.SoldOn.Format(dateLayout), b.Status, now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test sale: %v", err)
	}

	return model.Sale{
		ID:               b.ID,
		PurchaseID:       b.PurchaseID,
		BuyerName:        b.BuyerName,
		BuyerDescription: b.BuyerDescription,
		Quantity:         b.Quantity,
		UnitPrice:        b.UnitPrice,
		SoldOn:           b.SoldOn,
		Status:           b.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// PaymentBuilder provides a fluent interface for creating test sale payments.
type PaymentBuilder struct {
	ID         string
	SaleID     string
	ReceiverID string
	Amount     decimal.Decimal
	Method     model.PaymentMethod
	PaidOn     time.Time
}

// NewPayment creates a PIX payment of 10.
func NewPayment(saleID, receiverID string) *PaymentBuilder {
	return &PaymentBuilder{
		ID:         MakeID(),
		SaleID:     saleID,
		ReceiverID: receiverID,
		Amount:     dec("10"),
		Method:     model.PaymentPix,
		PaidOn:     defaultDate.AddDate(0, 1, 0),
	}
}

// WithAmount sets the payment amount.
func (b *PaymentBuilder) WithAmount(amount string) *PaymentBuilder {
	b.Amount = dec(amount)
	return b
}

// WithMethod sets the payment method.
func (b *PaymentBuilder) WithMethod(method model.PaymentMethod) *PaymentBuilder {
	b.Method = method
	return b
}

// Build creates the payment in the database and returns it.
func (b *PaymentBuilder) Build(t *testing.T, db *sql.DB) model.SalePayment {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO sale_payments (id, sale_id, receiver_id, amount, method, paid_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, '', ?)
	`
	_, err := db.Exec(query, b.ID, b.SaleID, b.ReceiverID, b.Amount, b.Method,
		b.PaidOn.Format(dateLayout), now.Format(timestampLayout))
	if err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return model.SalePayment{
		ID:         b.ID,
		SaleID:     b.SaleID,
		ReceiverID: b.ReceiverID,
		Amount:     b.Amount,
		Method:     b.Method,
		PaidOn:     b.PaidOn,
		CreatedAt:  now,
	}
}
