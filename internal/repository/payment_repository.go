package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// PaymentRepository provides data access methods for the sale_payments table.
type PaymentRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPaymentRepository creates a new PaymentRepository with the provided database connection.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a new PaymentRepository scoped to the provided transaction.
func (r *PaymentRepository) WithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PaymentRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListPayments returns payments grouped by sale ID.
// When no sale IDs are given every payment is returned.
func (r *PaymentRepository) ListPayments(ctx context.Context, saleIDs ...string) (map[string][]model.SalePayment, error) {
	query := `
		SELECT id, sale_id, receiver_id, amount, method, paid_on, notes, created_at
		FROM sale_payments
	`
	args := make([]any, len(saleIDs))
	for i, id := range saleIDs {
		args[i] = id
	}
	if len(saleIDs) > 0 {
		//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
		query += ` WHERE sale_id IN (` + placeholders(len(saleIDs)) + `)`
	}
	query += ` ORDER BY paid_on ASC, created_at ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale_payments table: %w", err)
	}
	defer rows.Close()

	bySale := make(map[string][]model.SalePayment)
	for rows.Next() {
		var p model.SalePayment
		var paidOn, createdAt string

		err := rows.Scan(
			&p.ID,
			&p.SaleID,
			&p.ReceiverID,
			&p.Amount,
			&p.Method,
			&paidOn,
			&p.Notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale_payments table results: %w", err)
		}
		if p.PaidOn, err = ParseTime(paidOn); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}

		bySale[p.SaleID] = append(bySale[p.SaleID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale_payments table: %w", err)
	}

	return bySale, nil
}

// InsertPayment stores a payment on a sale.
// Returns ErrUserNotFound when the receiver does not exist.
func (r *PaymentRepository) InsertPayment(ctx context.Context, p *model.SalePayment) error {
	query := `
		INSERT INTO sale_payments (id, sale_id, receiver_id, amount, method, paid_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.SaleID,
		p.ReceiverID,
		p.Amount,
		p.Method,
		formatDate(p.PaidOn),
		p.Notes,
		formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		// The sale is checked by the caller, so a failing reference is the receiver.
		return fmt.Errorf("failed to insert payment: %w", mapConstraintError(err, apperrors.ErrUserNotFound))
	}
	return nil
}

// DeletePayment removes a payment from a sale.
// Returns ErrPaymentNotFound if it does not exist on that sale.
func (r *PaymentRepository) DeletePayment(ctx context.Context, saleID, paymentID string) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM sale_payments WHERE id = ? AND sale_id = ?`, paymentID, saleID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrPaymentNotFound)
}
