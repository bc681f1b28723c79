package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// PurchaseRepository provides data access methods for the purchases table.
type PurchaseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPurchaseRepository creates a new PurchaseRepository with the provided database connection.
func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// WithTx returns a new PurchaseRepository scoped to the provided transaction.
func (r *PurchaseRepository) WithTx(tx *sql.Tx) *PurchaseRepository {
	return &PurchaseRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PurchaseRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const purchaseColumns = `
	id, title, description, quantity, purchased_on,
	total_amount_original, total_currency, total_amount_eur,
	signal_amount_original, signal_currency, signal_amount_eur,
	signal_paid_by, signal_paid_on, created_at, updated_at`

func scanPurchase(row rowScanner) (model.Purchase, error) {
	var p model.Purchase
	var purchasedOn, createdAt, updatedAt string
	var signalPaidBy, signalPaidOn sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Quantity,
		&purchasedOn,
		&p.TotalAmountOriginal,
		&p.TotalCurrency,
		&p.TotalAmountEUR,
		&p.SignalAmountOriginal,
		&p.SignalCurrency,
		&p.SignalAmountEUR,
		&signalPaidBy,
		&signalPaidOn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Purchase{}, err
	}

	if p.PurchasedOn, err = ParseTime(purchasedOn); err != nil {
		return model.Purchase{}, err
	}
	if p.SignalPaidOn, err = parseNullTime(signalPaidOn); err != nil {
		return model.Purchase{}, err
	}
	if p.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Purchase{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Purchase{}, err
	}
	if signalPaidBy.Valid {
		p.SignalPaidBy = &signalPaidBy.String
	}
	return p, nil
}

// ListPurchases returns every purchase, most recent first.
func (r *PurchaseRepository) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases ORDER BY purchased_on DESC, created_at DESC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases table: %w", err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchases table results: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases table: %w", err)
	}

	return purchases, nil
}

// GetPurchase retrieves a purchase by ID.
// Returns ErrPurchaseNotFound if no purchase with the given ID exists.
func (r *PurchaseRepository) GetPurchase(ctx context.Context, purchaseID string) (model.Purchase, error) {
	row := r.getQuerier().QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, purchaseID)

	p, err := scanPurchase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Purchase{}, apperrors.ErrPurchaseNotFound
	}
	if err != nil {
		return model.Purchase{}, fmt.Errorf("failed to query purchase: %w", err)
	}
	return p, nil
}

// InsertPurchase creates a new purchase.
// Returns ErrUserNotFound when signal_paid_by references a missing user.
func (r *PurchaseRepository) InsertPurchase(ctx context.Context, p *model.Purchase) error {
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Quantity,
		formatDate(p.PurchasedOn),
		p.TotalAmountOriginal,
		p.TotalCurrency,
		p.TotalAmountEUR,
		p.SignalAmountOriginal,
		p.SignalCurrency,
		p.SignalAmountEUR,
		nullableString(p.SignalPaidBy),
		nullableDate(p.SignalPaidOn),
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return nil
}

// UpdatePurchase overwrites every editable column of a purchase.
// Returns ErrPurchaseNotFound if no purchase with the given ID exists.
func (r *PurchaseRepository) UpdatePurchase(ctx context.Context, p *model.Purchase) error {
	query := `
		UPDATE purchases
		SET title = ?, description = ?, quantity = ?, purchased_on = ?,
			total_amount_original = ?, total_currency = ?, total_amount_eur = ?,
			signal_amount_original = ?, signal_currency = ?, signal_amount_eur = ?,
			signal_paid_by = ?, signal_paid_on = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Title,
		p.Description,
		p.Quantity,
		formatDate(p.PurchasedOn),
		p.TotalAmountOriginal,
		p.TotalCurrency,
		p.TotalAmountEUR,
		p.SignalAmountOriginal,
		p.SignalCurrency,
		p.SignalAmountEUR,
		nullableString(p.SignalPaidBy),
		nullableDate(p.SignalPaidOn),
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return checkRowsAffected(result, apperrors.ErrPurchaseNotFound)
}

// DeletePurchase removes a purchase. Contributions, costs, sales and their
// payments are removed by ON DELETE CASCADE.
// Returns ErrPurchaseNotFound if no purchase with the given ID exists.
func (r *PurchaseRepository) DeletePurchase(ctx context.Context, purchaseID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrPurchaseNotFound)
}
