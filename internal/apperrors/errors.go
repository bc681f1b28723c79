package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID or username does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPurchaseNotFound indicates that a purchase with the given ID does not exist.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrContributionNotFound indicates that a contribution does not exist on the given purchase.
	ErrContributionNotFound = errors.New("contribution not found")

	// ErrAdditionalCostNotFound indicates that an additional cost does not exist on the given purchase.
	ErrAdditionalCostNotFound = errors.New("additional cost not found")

	// ErrSaleNotFound indicates that a sale with the given ID does not exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrPaymentNotFound indicates that a payment does not exist on the given sale.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrSessionNotFound indicates that the session referenced by a token was revoked or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// Access errors represent authentication and authorization failures.
var (
	// ErrPermissionDenied indicates that the caller's role does not allow the requested action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthenticated indicates that no valid caller identity was supplied.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials indicates a wrong username/password combination.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken indicates that a bearer token failed validation.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUserInactive indicates that the user exists but was deactivated.
	ErrUserInactive = errors.New("user is inactive")

	// ErrRateLimited indicates that the client exceeded the allowed request rate.
	ErrRateLimited = errors.New("too many requests")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrLastAdmin indicates that an update would leave no active administrator.
	ErrLastAdmin = errors.New("at least one active admin is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveUsers     = errors.New("failed to retrieve users")
	ErrFailedToRetrieveUser      = errors.New("failed to retrieve user")
	ErrFailedToRetrievePurchases = errors.New("failed to retrieve purchases")
	ErrFailedToRetrievePurchase  = errors.New("failed to retrieve purchase")
	ErrFailedToRetrieveSales     = errors.New("failed to retrieve sales")
	ErrFailedToRetrieveSale      = errors.New("failed to retrieve sale")
	ErrFailedToGetDashboard      = errors.New("failed to get dashboard")
	ErrFailedToGetVersionInfo    = errors.New("failed to get version information")
)
