package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// ContributionRepository provides data access methods for the purchase_contributions table.
type ContributionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewContributionRepository creates a new ContributionRepository with the provided database connection.
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// WithTx returns a new ContributionRepository scoped to the provided transaction.
func (r *ContributionRepository) WithTx(tx *sql.Tx) *ContributionRepository {
	return &ContributionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ContributionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListContributions returns contributions grouped by purchase ID.
// When no purchase IDs are given every contribution is returned.
func (r *ContributionRepository) ListContributions(ctx context.Context, purchaseIDs ...string) (map[string][]model.Contribution, error) {
	query := `
		SELECT id, purchase_id, payer_id, contribution_type, value, resolved_amount, paid_on, notes, created_at
		FROM purchase_contributions
	`
	args := make([]any, len(purchaseIDs))
	for i, id := range purchaseIDs {
		args[i] = id
	}
	if len(purchaseIDs) > 0 {
		//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
		query += ` WHERE purchase_id IN (` + placeholders(len(purchaseIDs)) + `)`
	}
	query += ` ORDER BY paid_on ASC, created_at ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase_contributions table: %w", err)
	}
	defer rows.Close()

	byPurchase := make(map[string][]model.Contribution)
	for rows.Next() {
		var c model.Contribution
		var paidOn, createdAt string

		err := rows.Scan(
			&c.ID,
			&c.PurchaseID,
			&c.PayerID,
			&c.Type,
			&c.Value,
			&c.ResolvedAmount,
			&paidOn,
			&c.Notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase_contributions table results: %w", err)
		}
		if c.PaidOn, err = ParseTime(paidOn); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}

		byPurchase[c.PurchaseID] = append(byPurchase[c.PurchaseID], c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase_contributions table: %w", err)
	}

	return byPurchase, nil
}

// InsertContribution stores a contribution with its already resolved amount.
// Returns ErrPurchaseNotFound or ErrUserNotFound when a reference is missing.
func (r *ContributionRepository) InsertContribution(ctx context.Context, c *model.Contribution) error {
	query := `
		INSERT INTO purchase_contributions
			(id, purchase_id, payer_id, contribution_type, value, resolved_amount, paid_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		c.ID,
		c.PurchaseID,
		c.PayerID,
		c.Type,
		c.Value,
		c.ResolvedAmount,
		formatDate(c.PaidOn),
		c.Notes,
		formatTimestamp(c.CreatedAt),
	)
	if err != nil {
		// The purchase is checked by the caller, so a failing reference is the payer.
		return fmt.Errorf("failed to insert contribution: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return nil
}

// DeleteContribution removes a contribution from a purchase.
// Returns ErrContributionNotFound if it does not exist on that purchase.
func (r *ContributionRepository) DeleteContribution(ctx context.Context, purchaseID, contributionID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM purchase_contributions WHERE id = ? AND purchase_id = ?`, contributionID, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrContributionNotFound)
}
