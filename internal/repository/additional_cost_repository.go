package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// AdditionalCostRepository provides data access methods for the additional_costs table.
type AdditionalCostRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAdditionalCostRepository creates a new AdditionalCostRepository with the provided database connection.
func NewAdditionalCostRepository(db *sql.DB) *AdditionalCostRepository {
	return &AdditionalCostRepository{db: db}
}

// WithTx returns a new AdditionalCostRepository scoped to the provided transaction.
func (r *AdditionalCostRepository) WithTx(tx *sql.Tx) *AdditionalCostRepository {
	return &AdditionalCostRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AdditionalCostRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListAdditionalCosts returns costs grouped by purchase ID.
// When no purchase IDs are given every cost is returned.
func (r *AdditionalCostRepository) ListAdditionalCosts(ctx context.Context, purchaseIDs ...string) (map[string][]model.AdditionalCost, error) {
	query := `
		SELECT id, purchase_id, label, amount, paid_by, incurred_on, created_at
		FROM additional_costs
	`
	args := make([]any, len(purchaseIDs))
	for i, id := range purchaseIDs {
		args[i] = id
	}
	if len(purchaseIDs) > 0 {
		//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
		query += ` WHERE purchase_id IN (` + placeholders(len(purchaseIDs)) + `)`
	}
	query += ` ORDER BY incurred_on ASC, created_at ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query additional_costs table: %w", err)
	}
	defer rows.Close()

	byPurchase := make(map[string][]model.AdditionalCost)
	for rows.Next() {
		var c model.AdditionalCost
		var paidBy sql.NullString
		var incurredOn, createdAt string

		err := rows.Scan(
			&c.ID,
			&c.PurchaseID,
			&c.Label,
			&c.Amount,
			&paidBy,
			&incurredOn,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan additional_costs table results: %w", err)
		}
		if c.IncurredOn, err = ParseTime(incurredOn); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}
		if paidBy.Valid {
			c.PaidBy = &paidBy.String
		}

		byPurchase[c.PurchaseID] = append(byPurchase[c.PurchaseID], c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating additional_costs table: %w", err)
	}

	return byPurchase, nil
}

// InsertAdditionalCost stores a cost on a purchase.
// Returns ErrUserNotFound when paid_by references a missing user.
func (r *AdditionalCostRepository) InsertAdditionalCost(ctx context.Context, c *model.AdditionalCost) error {
	query := `
		INSERT INTO additional_costs (id, purchase_id, label, amount, paid_by, incurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		c.ID,
		c.PurchaseID,
		c.Label,
		c.Amount,
		nullableString(c.PaidBy),
		formatDate(c.IncurredOn),
		formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert additional cost: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return nil
}

// DeleteAdditionalCost removes a cost from a purchase.
// Returns ErrAdditionalCostNotFound if it does not exist on that purchase.
func (r *AdditionalCostRepository) DeleteAdditionalCost(ctx context.Context, purchaseID, costID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM additional_costs WHERE id = ? AND purchase_id = ?`, costID, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete additional cost: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrAdditionalCostNotFound)
}
