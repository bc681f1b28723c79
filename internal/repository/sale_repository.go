package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
)

// SaleRepository provides data access methods for the sales table.
// buyer_description is stored as given; encryption happens in the service layer.
type SaleRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSaleRepository creates a new SaleRepository with the provided database connection.
func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// WithTx returns a new SaleRepository scoped to the provided transaction.
func (r *SaleRepository) WithTx(tx *sql.Tx) *SaleRepository {
	return &SaleRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SaleRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const saleSelect = `
	SELECT s.id, s.purchase_id, s.buyer_name, s.buyer_description, s.quantity, s.unit_price,
		s.sold_on, s.status, s.notes, s.created_at, s.updated_at, p.title
	FROM sales s
	JOIN purchases p ON p.id = s.purchase_id
`

// scanSale returns the sale and the title of its purchase.
func scanSale(row rowScanner) (model.Sale, string, error) {
	var s model.Sale
	var soldOn, createdAt, updatedAt, purchaseTitle string

	err := row.Scan(
		&s.ID,
		&s.PurchaseID,
		&s.BuyerName,
		&s.BuyerDescription,
		&s.Quantity,
		&s.UnitPrice,
		&soldOn,
		&s.Status,
		&s.Notes,
		&createdAt,
		&updatedAt,
		&purchaseTitle,
	)
	if err != nil {
		return model.Sale{}, "", err
	}

	if s.SoldOn, err = ParseTime(soldOn); err != nil {
		return model.Sale{}, "", err
	}
	if s.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Sale{}, "", err
	}
	if s.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Sale{}, "", err
	}
	return s, purchaseTitle, nil
}

// ListSales returns sales matching the filter, most recent first, each with
// its purchase title filled in. Empty filter fields match everything.
func (r *SaleRepository) ListSales(ctx context.Context, filter model.SaleFilter) ([]model.SaleResponse, error) {
	query := saleSelect + ` WHERE 1=1`
	var args []any

	if filter.PurchaseID != "" {
		query += " AND s.purchase_id = ?"
		args = append(args, filter.PurchaseID)
	}
	if filter.Status != "" {
		query += " AND s.status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY s.sold_on DESC, s.created_at DESC"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales table: %w", err)
	}
	defer rows.Close()

	sales := []model.SaleResponse{}
	for rows.Next() {
		s, title, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales table results: %w", err)
		}
		sales = append(sales, model.SaleResponse{Sale: s, PurchaseTitle: title})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales table: %w", err)
	}

	return sales, nil
}

// GetSale retrieves a sale by ID together with its purchase title.
// Returns ErrSaleNotFound if no sale with the given ID exists.
func (r *SaleRepository) GetSale(ctx context.Context, saleID string) (model.SaleResponse, error) {
	row := r.getQuerier().QueryRowContext(ctx, saleSelect+` WHERE s.id = ?`, saleID)

	s, title, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SaleResponse{}, apperrors.ErrSaleNotFound
	}
	if err != nil {
		return model.SaleResponse{}, fmt.Errorf("failed to query sale: %w", err)
	}
	return model.SaleResponse{Sale: s, PurchaseTitle: title}, nil
}

// InsertSale creates a new sale.
// Returns ErrPurchaseNotFound when the purchase does not exist.
func (r *SaleRepository) InsertSale(ctx context.Context, s *model.Sale) error {
	query := `
		INSERT INTO sales
			(id, purchase_id, buyer_name, buyer_description, quantity, unit_price, sold_on, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.PurchaseID,
		s.BuyerName,
		s.BuyerDescription,
		s.Quantity,
		s.UnitPrice,
		formatDate(s.SoldOn),
		s.Status,
		s.Notes,
		formatTimestamp(s.CreatedAt),
		formatTimestamp(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", mapConstraintError(err, apperrors.ErrPurchaseNotFound))
	}
	return nil
}

// UpdateSale overwrites every editable column of a sale.
// Returns ErrSaleNotFound if no sale with the given ID exists.
func (r *SaleRepository) UpdateSale(ctx context.Context, s *model.Sale) error {
	query := `
		UPDATE sales
		SET purchase_id = ?, buyer_name = ?, buyer_description = ?, quantity = ?, unit_price = ?,
			sold_on = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		s.PurchaseID,
		s.BuyerName,
		s.BuyerDescription,
		s.Quantity,
		s.UnitPrice,
		formatDate(s.SoldOn),
		s.Status,
		s.Notes,
		formatTimestamp(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", mapConstraintError(err, apperrors.ErrPurchaseNotFound))
	}
	return checkRowsAffected(result, apperrors.ErrSaleNotFound)
}

// DeleteSale removes a sale; its payments are removed by ON DELETE CASCADE.
// Returns ErrSaleNotFound if no sale with the given ID exists.
func (r *SaleRepository) DeleteSale(ctx context.Context, saleID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, saleID)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return checkRowsAffected(result, apperrors.ErrSaleNotFound)
}
