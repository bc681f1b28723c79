package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/encryption"
	"github.com/sidesales/sidesales-backend/internal/ledger"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// PurchaseService handles purchases and their contributions and additional costs.
// Every write runs in a single transaction.
type PurchaseService struct {
	db               *sql.DB
	purchaseRepo     *repository.PurchaseRepository
	contributionRepo *repository.ContributionRepository
	costRepo         *repository.AdditionalCostRepository
	saleRepo         *repository.SaleRepository
	cipher           *encryption.Cipher
}

// NewPurchaseService creates a new PurchaseService with the provided repository dependencies.
// The cipher decrypts buyer details of the sales embedded in a purchase.
func NewPurchaseService(
	db *sql.DB,
	purchaseRepo *repository.PurchaseRepository,
	contributionRepo *repository.ContributionRepository,
	costRepo *repository.AdditionalCostRepository,
	saleRepo *repository.SaleRepository,
	cipher *encryption.Cipher,
) *PurchaseService {
	return &PurchaseService{
		db:               db,
		purchaseRepo:     purchaseRepo,
		contributionRepo: contributionRepo,
		costRepo:         costRepo,
		saleRepo:         saleRepo,
		cipher:           cipher,
	}
}

// ListPurchases returns every purchase with its children and derived totals.
// Sales are only counted towards revenue; fetch a single purchase to get them.
func (s *PurchaseService) ListPurchases(ctx context.Context, actor auth.Actor) ([]model.PurchaseResponse, error) {
	if err := auth.Require(actor, auth.ActionRead); err != nil {
		return nil, err
	}

	purchases, err := s.purchaseRepo.ListPurchases(ctx)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []model.PurchaseResponse{}, nil
	}

	contributions, err := s.contributionRepo.ListContributions(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := s.costRepo.ListAdditionalCosts(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.ListSales(ctx, model.SaleFilter{})
	if err != nil {
		return nil, err
	}
	salesByPurchase := make(map[string][]model.Sale)
	for _, sr := range sales {
		salesByPurchase[sr.PurchaseID] = append(salesByPurchase[sr.PurchaseID], sr.Sale)
	}

	responses := make([]model.PurchaseResponse, len(purchases))
	for i, p := range purchases {
		responses[i] = buildPurchaseResponse(p, contributions[p.ID], costs[p.ID], salesByPurchase[p.ID])
	}
	return responses, nil
}

// GetPurchase returns a purchase with contributions, costs, sales and derived totals.
// Returns ErrPurchaseNotFound if no purchase with the given ID exists.
func (s *PurchaseService) GetPurchase(ctx context.Context, actor auth.Actor, purchaseID string) (*model.PurchaseResponse, error) {
	if err := auth.Require(actor, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.loadPurchase(ctx, purchaseID)
}

func (s *PurchaseService) loadPurchase(ctx context.Context, purchaseID string) (*model.PurchaseResponse, error) {
	p, err := s.purchaseRepo.GetPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	contributions, err := s.contributionRepo.ListContributions(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	costs, err := s.costRepo.ListAdditionalCosts(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	saleRows, err := s.saleRepo.ListSales(ctx, model.SaleFilter{PurchaseID: purchaseID})
	if err != nil {
		return nil, err
	}

	sales := make([]model.Sale, len(saleRows))
	for i, sr := range saleRows {
		sale := sr.Sale
		if err := decryptSale(s.cipher, &sale); err != nil {
			return nil, err
		}
		sales[i] = sale
	}

	resp := buildPurchaseResponse(p, contributions[purchaseID], costs[purchaseID], sales)
	resp.Sales = sales
	return &resp, nil
}

// CreatePurchase creates a purchase together with its nested contributions and
// costs. Percentage contributions are resolved against the EUR total here and
// never recomputed.
func (s *PurchaseService) CreatePurchase(ctx context.Context, actor auth.Actor, req request.CreatePurchaseRequest) (*model.PurchaseResponse, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	purchasedOn, err := validation.ParseDate(req.PurchasedOn)
	if err != nil {
		return nil, err
	}
	signalPaidOn, err := optionalDate(req.SignalPaidOn)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	purchase := &model.Purchase{
		ID:                   uuid.New().String(),
		Title:                validation.Sanitize(req.Title),
		Description:          validation.Sanitize(req.Description),
		Quantity:             req.Quantity,
		PurchasedOn:          purchasedOn,
		TotalAmountOriginal:  money(req.TotalAmountOriginal),
		TotalCurrency:        validation.NormalizeCurrency(req.TotalCurrency),
		TotalAmountEUR:       eurAmount(req.TotalAmountOriginal, req.TotalAmountEUR),
		SignalAmountOriginal: money(req.SignalAmountOriginal),
		SignalCurrency:       validation.NormalizeCurrency(req.SignalCurrency),
		SignalAmountEUR:      eurAmount(req.SignalAmountOriginal, req.SignalAmountEUR),
		SignalPaidBy:         optionalID(req.SignalPaidBy),
		SignalPaidOn:         signalPaidOn,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.purchaseRepo.WithTx(tx).InsertPurchase(ctx, purchase); err != nil {
			return err
		}

		contributionRepo := s.contributionRepo.WithTx(tx)
		for _, cr := range req.Contributions {
			c, err := newContribution(*purchase, cr, now)
			if err != nil {
				return err
			}
			if err := contributionRepo.InsertContribution(ctx, c); err != nil {
				return err
			}
		}

		costRepo := s.costRepo.WithTx(tx)
		for _, cr := range req.AdditionalCosts {
			c, err := newAdditionalCost(*purchase, cr, now)
			if err != nil {
				return err
			}
			if err := costRepo.InsertAdditionalCost(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	logger.L.Info("purchase created",
		"purchaseId", purchase.ID,
		"contributions", len(req.Contributions),
		"additionalCosts", len(req.AdditionalCosts),
		"actorId", actor.UserID)

	return s.loadPurchase(ctx, purchase.ID)
}

// UpdatePurchase applies the provided fields to a purchase. Contributions keep
// the amount they were resolved to at creation.
// Returns ErrPurchaseNotFound if no purchase with the given ID exists.
func (s *PurchaseService) UpdatePurchase(ctx context.Context, actor auth.Actor, purchaseID string, req request.UpdatePurchaseRequest) (*model.PurchaseResponse, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		purchaseRepo := s.purchaseRepo.WithTx(tx)

		p, err := purchaseRepo.GetPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := applyPurchaseUpdate(&p, req); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()

		return purchaseRepo.UpdatePurchase(ctx, &p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	logger.L.Info("purchase updated", "purchaseId", purchaseID, "actorId", actor.UserID)
	return s.loadPurchase(ctx, purchaseID)
}

// DeletePurchase removes a purchase with its contributions, costs, sales and payments.
func (s *PurchaseService) DeletePurchase(ctx context.Context, actor auth.Actor, purchaseID string) error {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return err
	}

	if err := s.purchaseRepo.DeletePurchase(ctx, purchaseID); err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}

	logger.L.Info("purchase deleted", "purchaseId", purchaseID, "actorId", actor.UserID)
	return nil
}

// AddContribution adds a contribution to an existing purchase, resolving a
// percentage against the purchase's current EUR total.
func (s *PurchaseService) AddContribution(ctx context.Context, actor auth.Actor, purchaseID string, req request.CreateContributionRequest) (*model.Contribution, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	var contribution *model.Contribution
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.purchaseRepo.WithTx(tx).GetPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}

		contribution, err = newContribution(p, req, time.Now().UTC())
		if err != nil {
			return err
		}
		return s.contributionRepo.WithTx(tx).InsertContribution(ctx, contribution)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add contribution: %w", err)
	}

	logger.L.Info("contribution added",
		"purchaseId", purchaseID,
		"contributionId", contribution.ID,
		"actorId", actor.UserID)
	return contribution, nil
}

// DeleteContribution removes a contribution from a purchase.
func (s *PurchaseService) DeleteContribution(ctx context.Context, actor auth.Actor, purchaseID, contributionID string) error {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return err
	}
	if err := s.contributionRepo.DeleteContribution(ctx, purchaseID, contributionID); err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	logger.L.Info("contribution deleted", "purchaseId", purchaseID, "contributionId", contributionID, "actorId", actor.UserID)
	return nil
}

// AddAdditionalCost adds a cost to an existing purchase.
func (s *PurchaseService) AddAdditionalCost(ctx context.Context, actor auth.Actor, purchaseID string, req request.CreateAdditionalCostRequest) (*model.AdditionalCost, error) {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return nil, err
	}

	var cost *model.AdditionalCost
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.purchaseRepo.WithTx(tx).GetPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}

		cost, err = newAdditionalCost(p, req, time.Now().UTC())
		if err != nil {
			return err
		}
		return s.costRepo.WithTx(tx).InsertAdditionalCost(ctx, cost)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add additional cost: %w", err)
	}

	logger.L.Info("additional cost added", "purchaseId", purchaseID, "costId", cost.ID, "actorId", actor.UserID)
	return cost, nil
}

// DeleteAdditionalCost removes a cost from a purchase.
func (s *PurchaseService) DeleteAdditionalCost(ctx context.Context, actor auth.Actor, purchaseID, costID string) error {
	if err := auth.Require(actor, auth.ActionWrite); err != nil {
		return err
	}
	if err := s.costRepo.DeleteAdditionalCost(ctx, purchaseID, costID); err != nil {
		return fmt.Errorf("failed to delete additional cost: %w", err)
	}
	logger.L.Info("additional cost deleted", "purchaseId", purchaseID, "costId", costID, "actorId", actor.UserID)
	return nil
}

func buildPurchaseResponse(p model.Purchase, contributions []model.Contribution, costs []model.AdditionalCost, sales []model.Sale) model.PurchaseResponse {
	if contributions == nil {
		contributions = []model.Contribution{}
	}
	if costs == nil {
		costs = []model.AdditionalCost{}
	}

	totals := ledger.PurchaseTotals(p, costs)
	revenue := ledger.Revenue(sales)

	return model.PurchaseResponse{
		Purchase:        p,
		PurchaseTotals:  totals,
		TotalRevenue:    revenue,
		TotalProfit:     revenue.Sub(totals.TotalCost),
		Contributions:   contributions,
		AdditionalCosts: costs,
	}
}

func newContribution(p model.Purchase, req request.CreateContributionRequest, now time.Time) (*model.Contribution, error) {
	paidOn, err := dateOr(req.PaidOn, p.PurchasedOn)
	if err != nil {
		return nil, err
	}

	kind := model.ContributionType(req.ContributionType)
	return &model.Contribution{
		ID:             uuid.New().String(),
		PurchaseID:     p.ID,
		PayerID:        req.PayerID,
		Type:           kind,
		Value:          req.Value,
		ResolvedAmount: ledger.ResolveContribution(kind, req.Value, p.TotalAmountEUR),
		PaidOn:         paidOn,
		Notes:          validation.Sanitize(req.Notes),
		CreatedAt:      now,
	}, nil
}

func newAdditionalCost(p model.Purchase, req request.CreateAdditionalCostRequest, now time.Time) (*model.AdditionalCost, error) {
	incurredOn, err := dateOr(req.IncurredOn, p.PurchasedOn)
	if err != nil {
		return nil, err
	}

	return &model.AdditionalCost{
		ID:         uuid.New().String(),
		PurchaseID: p.ID,
		Label:      validation.Sanitize(req.Label),
		Amount:     money(req.Amount),
		PaidBy:     optionalID(req.PaidBy),
		IncurredOn: incurredOn,
		CreatedAt:  now,
	}, nil
}

// applyPurchaseUpdate merges req into p. When an original amount or currency
// changes without a new EUR amount, the EUR amount follows the original for EUR
// and must be supplied otherwise.
func applyPurchaseUpdate(p *model.Purchase, req request.UpdatePurchaseRequest) error {
	if req.Title != nil {
		p.Title = validation.Sanitize(*req.Title)
	}
	if req.Description != nil {
		p.Description = validation.Sanitize(*req.Description)
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.PurchasedOn != nil {
		d, err := validation.ParseDate(*req.PurchasedOn)
		if err != nil {
			return err
		}
		p.PurchasedOn = d
	}
	if req.SignalPaidBy != nil {
		p.SignalPaidBy = optionalID(*req.SignalPaidBy)
	}
	if req.SignalPaidOn != nil {
		d, err := optionalDate(*req.SignalPaidOn)
		if err != nil {
			return err
		}
		p.SignalPaidOn = d
	}

	errs := make(map[string]string)
	mergeAmount(errs, "total", &p.TotalAmountOriginal, &p.TotalCurrency, &p.TotalAmountEUR,
		req.TotalAmountOriginal, req.TotalCurrency, req.TotalAmountEUR)
	mergeAmount(errs, "signal", &p.SignalAmountOriginal, &p.SignalCurrency, &p.SignalAmountEUR,
		req.SignalAmountOriginal, req.SignalCurrency, req.SignalAmountEUR)
	if len(errs) > 0 {
		return &validation.Error{Fields: errs}
	}
	return nil
}

func mergeAmount(
	errs map[string]string,
	prefix string,
	original *decimal.Decimal, currency *string, eur *decimal.Decimal,
	newOriginal *decimal.Decimal, newCurrency *string, newEUR *decimal.Decimal,
) {
	if newOriginal == nil && newCurrency == nil && newEUR == nil {
		return
	}
	if newOriginal != nil {
		*original = money(*newOriginal)
	}
	if newCurrency != nil {
		*currency = validation.NormalizeCurrency(*newCurrency)
	}

	switch {
	case newEUR != nil:
		*eur = money(*newEUR)
	case !validation.RequireEURAmount(*original, *currency):
		*eur = *original
	case newOriginal != nil || newCurrency != nil:
		errs[prefix+"AmountEur"] = prefix + "AmountEur is required when the currency is not EUR"
	}
}
