package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/encryption"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
	"github.com/sidesales/sidesales-backend/internal/service"
)

// TestJWTSecret signs tokens issued by NewTestTokenManager.
const TestJWTSecret = "test-secret-do-not-use-in-production"

// NewTestCipher returns a cipher with a freshly generated key.
func NewTestCipher(t *testing.T) *encryption.Cipher {
	t.Helper()

	key, err := encryption.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate encryption key: %v", err)
	}
	cipher, err := encryption.New(key)
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	return cipher
}

func NewTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(TestJWTSecret, time.Hour)
}

// Actor returns an actor with the given role and a random user ID.
// Services only use the ID for logging, so it need not exist in the database.
func Actor(role model.Role) auth.Actor {
	return auth.Actor{UserID: MakeID(), Role: role}
}

func NewTestUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()

	return service.NewUserService(
		db,
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
	)
}

func NewTestAuthService(t *testing.T, db *sql.DB) *service.AuthService {
	t.Helper()

	return service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		NewTestTokenManager(),
	)
}

// NewTestPurchaseService creates a PurchaseService. Pass the cipher used for
// any sale fixtures with buyer descriptions.
func NewTestPurchaseService(t *testing.T, db *sql.DB, cipher *encryption.Cipher) *service.PurchaseService {
	t.Helper()

	return service.NewPurchaseService(
		db,
		repository.NewPurchaseRepository(db),
		repository.NewContributionRepository(db),
		repository.NewAdditionalCostRepository(db),
		repository.NewSaleRepository(db),
		cipher,
	)
}

func NewTestSaleService(t *testing.T, db *sql.DB, cipher *encryption.Cipher) *service.SaleService {
	t.Helper()

	return service.NewSaleService(
		db,
		repository.NewSaleRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewPurchaseRepository(db),
		cipher,
	)
}

func NewTestDashboardService(t *testing.T, db *sql.DB) *service.DashboardService {
	t.Helper()

	return service.NewDashboardService(
		db,
		repository.NewUserRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewContributionRepository(db),
		repository.NewAdditionalCostRepository(db),
		repository.NewSaleRepository(db),
		repository.NewPaymentRepository(db),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeUsername generates a unique, valid username for testing.
//
// Example usage:
//
//	name := testutil.MakeUsername("alice")
//	// Returns: "alice_ab12cd"
func MakeUsername(base string) string {
	if base == "" {
		base = "user"
	}
	return base + "_" + randomAlphanumeric(6)
}

// MakeTitle generates a unique purchase title for testing.
//
// Example usage:
//
//	title := testutil.MakeTitle("Bikes")
//	// Returns: "Bikes ABC123"
func MakeTitle(base string) string {
	if base == "" {
		base = "Purchase"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
