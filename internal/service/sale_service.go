package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/encryption"
	"github.com/sidesales/sidesales-backend/internal/ledger"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// SaleService handles sales and the payments received against them.
// Buyer descriptions are encrypted before they reach the repository.
type SaleService struct {
	db           *sql.DB
	saleRepo     *repository.SaleRepository
	paymentRepo  *repository.PaymentRepository
	purchaseRepo *repository.PurchaseRepository
	cipher       *encryption.Cipher
}

// NewSaleService creates a new SaleService with the provided repository dependencies.
func NewSaleService(
	db *sql.DB,
	saleRepo *repository.SaleRepository,
	paymentRepo *repository.PaymentRepository,
	purchaseRepo *repository.PurchaseRepository,
	cipher *encryption.Cipher,
) *SaleService {
	return &SaleService{
		db:           db,
		saleRepo:     saleRepo,
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		cipher:       cipher,
	}
}

// ListSales returns sales matching the filter with payments and derived totals.
func (s *SaleService) ListSales(ctx context.Context, actor auth.Actor, filter model.SaleFilter) ([]model.SaleResponse, error) {
	if err := auth.Require(actor, auth.ActionRead); err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListSales(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}
	payments, err := s.paymentRepo.ListPayments(ctx, ids...)
	if err != nil {
		return nil, err
	}

	for i := range sales {
		if err := s.completeSale(&sales[i], payments[sales[i].ID]); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

// GetSale returns a sale with its payments and derived totals.
// Returns ErrSaleNotFound if no sale with the given ID exists.
func (s *SaleService) GetSale(ctx context.Context, actor auth.Actor, saleID string) (*model.SaleResponse, error) {
	if err := auth.Require(actor, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.loadSale(ctx, saleID)
}

func (s *SaleService) loadSale(ctx context.Context, saleID string) (*model.SaleResponse, error) {
	sale, err := s.saleRepo.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListPayments(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := s.completeSale(&sale, payments[saleID]); err != nil {
		return nil, err
	}
	return &sale, nil
}

// completeSale decrypts the buyer description and fills in payments and totals.
func (s *SaleService) completeSale(sale *model.SaleResponse, payments []model.SalePayment) error {
	if payments == nil {
		payments = []model.SalePayment{}
	}
	if err := decryptSale(s.cipher, &sale.Sale); err != nil {
		return err
	}
	sale.Payments = payments
	sale.SaleTotals = ledger.SaleTotals(sale.Sale, payments)
	return nil
}

// CreateSale records a sale and its initial payments in one transaction.
// Returns ErrPurchaseNotFound when the purchase does not exist.
func (s *SaleService) CreateSale(ctx context.Context, actor auth.Actor, req request.CreateSaleRequest) (*model.SaleResponse, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	soldOn, err := validation.ParseDate(req.SoldOn)
	if err != nil {
		return nil, err
	}
	description, err := s.cipher.Encrypt(validation.Sanitize(req.BuyerDescription))
	if err != nil {
		return nil, err
	}

	status := model.SaleDraft
	if req.Status != "" {
		status = model.SaleStatus(req.Status)
	}

	now := time.Now().UTC()
	sale := &model.Sale{
		ID:               uuid.New().String(),
		PurchaseID:       req.PurchaseID,
		BuyerName:        validation.Sanitize(req.BuyerName),
		BuyerDescription: description,
		Quantity:         req.Quantity,
		UnitPrice:        money(req.UnitPrice),
		SoldOn:           soldOn,
		Status:           status,
		Notes:            validation.Sanitize(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.purchaseRepo.WithTx(tx).GetPurchase(ctx, sale.PurchaseID); err != nil {
			return err
		}
		if err := s.saleRepo.WithTx(tx).InsertSale(ctx, sale); err != nil {
			return err
		}

		paymentRepo := s.paymentRepo.WithTx(tx)
		for _, pr := range req.Payments {
			p, err := newPayment(*sale, pr, now)
			if err != nil {
				return err
			}
			if err := paymentRepo.InsertPayment(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	logger.L.Info("sale created",
		"saleId", sale.ID,
		"purchaseId", sale.PurchaseID,
		"payments", len(req.Payments),
		"actorId", actor.UserID)

	return s.loadSale(ctx, sale.ID)
}

// UpdateSale applies the provided fields to a sale. Any status may be set at
// any time.
func (s *SaleService) UpdateSale(ctx context.Context, actor auth.Actor, saleID string, req request.UpdateSaleRequest) (*model.SaleResponse, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		saleRepo := s.saleRepo.WithTx(tx)

		current, err := saleRepo.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		sale := current.Sale

		if req.PurchaseID != nil && *req.PurchaseID != sale.PurchaseID {
			if _, err := s.purchaseRepo.WithTx(tx).GetPurchase(ctx, *req.PurchaseID); err != nil {
				return err
			}
			sale.PurchaseID = *req.PurchaseID
		}
		if req.BuyerName != nil {
			sale.BuyerName = validation.Sanitize(*req.BuyerName)
		}
		if req.BuyerDescription != nil {
			sale.BuyerDescription, err = s.cipher.Encrypt(validation.Sanitize(*req.BuyerDescription))
			if err != nil {
				return err
			}
		}
		if req.Quantity != nil {
			sale.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			sale.UnitPrice = money(*req.UnitPrice)
		}
		if req.SoldOn != nil {
			if sale.SoldOn, err = validation.ParseDate(*req.SoldOn); err != nil {
				return err
			}
		}
		if req.Status != nil {
			sale.Status = model.SaleStatus(*req.Status)
		}
		if req.Notes != nil {
			sale.Notes = validation.Sanitize(*req.Notes)
		}
		sale.UpdatedAt = time.Now().UTC()

		return saleRepo.UpdateSale(ctx, &sale)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	logger.L.Info("sale updated", "saleId", saleID, "actorId", actor.UserID)
	return s.loadSale(ctx, saleID)
}

// DeleteSale removes a sale and its payments.
func (s *SaleService) DeleteSale(ctx context.Context, actor auth.Actor, saleID string) error {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return err
	}
	if err := s.saleRepo.DeleteSale(ctx, saleID); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	logger.L.Info("sale deleted", "saleId", saleID, "actorId", actor.UserID)
	return nil
}

// AddPayment records a payment against an existing sale. Payments may exceed
// the sale price; the outstanding amount then goes negative.
func (s *SaleService) AddPayment(ctx context.Context, actor auth.Actor, saleID string, req request.CreatePaymentRequest) (*model.SalePayment, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	var payment *model.SalePayment
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		sale, err := s.saleRepo.WithTx(tx).GetSale(ctx, saleID)
		if err != nil {
			return err
		}

		payment, err = newPayment(sale.Sale, req, time.Now().UTC())
		if err != nil {
			return err
		}
		return s.paymentRepo.WithTx(tx).InsertPayment(ctx, payment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add payment: %w", err)
	}

	logger.L.Info("payment added", "saleId", saleID, "paymentId", payment.ID, "actorId", actor.UserID)
	return payment, nil
}

// DeletePayment removes a payment from a sale.
func (s *SaleService) DeletePayment(ctx context.Context, actor auth.Actor, saleID, paymentID string) error {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return err
	}
	if err := s.paymentRepo.DeletePayment(ctx, saleID, paymentID); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	logger.L.Info("payment deleted", "saleId", saleID, "paymentId", paymentID, "actorId", actor.UserID)
	return nil
}

func newPayment(sale model.Sale, req request.CreatePaymentRequest, now time.Time) (*model.SalePayment, error) {
	paidOn, err := dateOr(req.PaidOn, sale.SoldOn)
	if err != nil {
		return nil, err
	}

	return &model.SalePayment{
		ID:         uuid.New().String(),
		SaleID:     sale.ID,
		ReceiverID: req.ReceiverID,
		Amount:     money(req.Amount),
		Method:     model.PaymentMethod(req.Method),
		PaidOn:     paidOn,
		Notes:      validation.Sanitize(req.Notes),
		CreatedAt:  now,
	}, nil
}

// decryptSale replaces the stored buyer description token with its plaintext.
func decryptSale(cipher *encryption.Cipher, sale *model.Sale) error {
	plain, err := cipher.Decrypt(sale.BuyerDescription)
	if err != nil {
		return fmt.Errorf("sale %s: %w", sale.ID, err)
	}
	sale.BuyerDescription = plain
	return nil
}
