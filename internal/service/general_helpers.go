package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/ledger"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// withTx runs fn inside a single transaction and commits when fn succeeds.
// Repositories used by fn must be scoped with WithTx(tx).
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// money rounds an amount to the precision stored in the database.
//
// Example:
//
//	money(decimal.RequireFromString("33.335"))  // 33.34
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(ledger.MoneyPlaces)
}

// eurAmount returns the EUR value of an amount. When no EUR value is given the
// original is used, which validation only allows for EUR or zero amounts.
func eurAmount(original decimal.Decimal, eur *decimal.Decimal) decimal.Decimal {
	if eur != nil {
		return money(*eur)
	}
	return money(original)
}

// dateOr parses value as YYYY-MM-DD, or returns fallback when value is empty.
func dateOr(value string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return validation.ParseDate(value)
}

// optionalDate parses an optional date; empty means unset.
func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalID returns nil for an empty reference.
func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

