package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
	ErrInvalidDate = fmt.Errorf("invalid date, expected YYYY-MM-DD")
)

// Length limits for free-text fields, counted after trimming.
const (
	MaxNameLength  = 100
	MaxTitleLength = 200
	MaxTextLength  = 2000
)

// Amounts and quantities are stored with at most 12 digits, 2 of them decimal.
const (
	maxIntegerDigits = 10
	maxDecimalPlaces = 2
)

// DefaultCurrency is assumed when a currency is omitted.
const DefaultCurrency = "EUR"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseDate parses a calendar date in YYYY-MM-DD format.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, value)
	}
	return t, nil
}

// NormalizeCurrency upper-cases a currency code and falls back to EUR when empty.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

func checkRequired(errs map[string]string, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		errs[field] = field + " is required"
		return false
	}
	return true
}

func checkLength(errs map[string]string, field, value string, limit int) {
	if len([]rune(strings.TrimSpace(value))) > limit {
		errs[field] = fmt.Sprintf("%s must be at most %d characters", field, limit)
	}
}

func checkRequiredUUID(errs map[string]string, field, value string) {
	if !checkRequired(errs, field, value) {
		return
	}
	if ValidateUUID(value) != nil {
		errs[field] = field + " must be a valid UUID"
	}
}

// checkOptionalUUID accepts an empty value.
func checkOptionalUUID(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if ValidateUUID(value) != nil {
		errs[field] = field + " must be a valid UUID"
	}
}

func checkRequiredDate(errs map[string]string, field, value string) {
	if !checkRequired(errs, field, value) {
		return
	}
	checkOptionalDate(errs, field, value)
}

func checkOptionalDate(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := ParseDate(value); err != nil {
		errs[field] = field + " must be a date in YYYY-MM-DD format"
	}
}

func checkCurrency(errs map[string]string, field, value string) {
	if !currencyPattern.MatchString(NormalizeCurrency(value)) {
		errs[field] = field + " must be a 3-letter currency code"
	}
}

func checkPositive(errs map[string]string, field string, value decimal.Decimal) {
	if !value.IsPositive() {
		errs[field] = field + " must be greater than zero"
		return
	}
	checkPrecision(errs, field, value)
}

func checkNonNegative(errs map[string]string, field string, value decimal.Decimal) {
	if value.IsNegative() {
		errs[field] = field + " must not be negative"
		return
	}
	checkPrecision(errs, field, value)
}

// checkPrecision rejects values outside 12 digits with 2 decimal places.
// It decides from the coefficient length and exponent first: rescaling an
// input such as 1e3000000 would expand it to millions of digits.
func checkPrecision(errs map[string]string, field string, value decimal.Decimal) {
	if value.IsZero() {
		return
	}
	digits := value.NumDigits()
	exp := int(value.Exponent())

	if digits+exp > maxIntegerDigits {
		errs[field] = fmt.Sprintf("%s must have at most %d integer digits", field, maxIntegerDigits)
		return
	}
	if exp >= -maxDecimalPlaces {
		return
	}
	// The most significant digit sits below the last allowed place.
	if digits+exp-1 < -maxDecimalPlaces || !value.Equal(value.Truncate(maxDecimalPlaces)) {
		errs[field] = fmt.Sprintf("%s must have at most %d decimal places", field, maxDecimalPlaces)
	}
}

func result(errs map[string]string) error {
	if len(errs) > 0 {
		return &Error{Fields: errs}
	}
	return nil
}
