package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/ledger"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
)

// DashboardService builds the aggregate dashboard from the current rows.
// Nothing is cached; every call reads through to the database.
type DashboardService struct {
	db               *sql.DB
	userRepo         *repository.UserRepository
	purchaseRepo     *repository.PurchaseRepository
	contributionRepo *repository.ContributionRepository
	costRepo         *repository.AdditionalCostRepository
	saleRepo         *repository.SaleRepository
	paymentRepo      *repository.PaymentRepository
}

// NewDashboardService creates a new DashboardService with the provided repository dependencies.
func NewDashboardService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	purchaseRepo *repository.PurchaseRepository,
	contributionRepo *repository.ContributionRepository,
	costRepo *repository.AdditionalCostRepository,
	saleRepo *repository.SaleRepository,
	paymentRepo *repository.PaymentRepository,
) *DashboardService {
	return &DashboardService{
		db:               db,
		userRepo:         userRepo,
		purchaseRepo:     purchaseRepo,
		contributionRepo: contributionRepo,
		costRepo:         costRepo,
		saleRepo:         saleRepo,
		paymentRepo:      paymentRepo,
	}
}

// GetDashboard returns overall totals, the per-user ledger, per-purchase
// results and the reconciliation between them.
func (s *DashboardService) GetDashboard(ctx context.Context, actor auth.Actor) (*model.Dashboard, error) {
	if err := auth.Require(actor, auth.ActionRead); err != nil {
		return nil, err
	}

	book, err := s.loadBook(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger data: %w", err)
	}

	dashboard := ledger.Summarize(book)
	return &dashboard, nil
}

// loadBook reads every table the roll-ups need inside one transaction, so a
// write committed halfway through cannot split the book.
func (s *DashboardService) loadBook(ctx context.Context) (ledger.Book, error) {
	var book ledger.Book

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		users, err := s.userRepo.WithTx(tx).ListUsers(ctx, true)
		if err != nil {
			return err
		}
		book.Users = users

		purchases, err := s.purchaseRepo.WithTx(tx).ListPurchases(ctx)
		if err != nil {
			return err
		}
		book.Purchases = purchases

		contributions, err := s.contributionRepo.WithTx(tx).ListContributions(ctx)
		if err != nil {
			return err
		}
		for _, cs := range contributions {
			book.Contributions = append(book.Contributions, cs...)
		}

		costs, err := s.costRepo.WithTx(tx).ListAdditionalCosts(ctx)
		if err != nil {
			return err
		}
		for _, cs := range costs {
			book.Costs = append(book.Costs, cs...)
		}

		sales, err := s.saleRepo.WithTx(tx).ListSales(ctx, model.SaleFilter{})
		if err != nil {
			return err
		}
		for _, sr := range sales {
			book.Sales = append(book.Sales, sr.Sale)
		}

		payments, err := s.paymentRepo.WithTx(tx).ListPayments(ctx)
		if err != nil {
			return err
		}
		for _, ps := range payments {
			book.Payments = append(book.Payments, ps...)
		}
		return nil
	})
	if err != nil {
		return ledger.Book{}, err
	}
	return book, nil
}
