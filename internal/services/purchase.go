package services

import (
	"context"
	"errors"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/metrics"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PurchaseRepository defines the ledger operations backed by the store.
type PurchaseRepository interface {
	Buy(ctx context.Context, userID, packageID int, amount decimal.Decimal) (types.PurchaseReceipt, error)
	ListActiveByUser(ctx context.Context, userID int) ([]types.ActivePurchase, error)
	ListAll(ctx context.Context) ([]types.Purchase, error)
	SalesByPackage(ctx context.Context) ([]types.PackageSale, error)
	Accrue(ctx context.Context) ([]types.AccrualCredit, error)
}

type PurchaseService struct {
	repo      PurchaseRepository
	publisher EventPublisher
	logger    logrus.FieldLogger
}

func NewPurchaseService(repo PurchaseRepository, publisher EventPublisher, logger logrus.FieldLogger) *PurchaseService {
	return &PurchaseService{
		repo:      repo,
		publisher: publisherOrNop(publisher),
		logger:    logger,
	}
}

// Buy debits amount from the caller's wallet, records an active purchase and
// immediately credits one day of the package's earnings.
func (s *PurchaseService) Buy(ctx context.Context, userID, packageID int, amount decimal.Decimal) (types.PurchaseReceipt, error) {
	if packageID < 1 {
		return types.PurchaseReceipt{}, apperr.Validation("package_id is required")
	}
	if !amount.IsPositive() {
		return types.PurchaseReceipt{}, apperr.Validation("investment_amount must be greater than zero")
	}
	if err := checkMoney("investment_amount", amount); err != nil {
		return types.PurchaseReceipt{}, err
	}

	receipt, err := s.repo.Buy(ctx, userID, packageID, amount)
	if err != nil {
		appErr := s.translateBuyError(err)
		metrics.RecordPurchase(string(appErr.Kind()))
		return types.PurchaseReceipt{}, appErr
	}
	metrics.RecordPurchase("success")

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"package_id":  packageID,
		"purchase_id": receipt.Purchase.ID,
		"amount":      amount.String(),
	}).Info("package purchased")
	s.publisher.Publish(ctx, EventPurchaseCreated, receipt)

	return receipt, nil
}

func (s *PurchaseService) translateBuyError(err error) *apperr.Error {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return apperr.InsufficientFunds()
	case errors.Is(err, store.ErrPackageUnavailable):
		return apperr.PackageUnavailable()
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("User not found")
	default:
		return apperr.Internal("Failed to purchase package", err)
	}
}

func (s *PurchaseService) ListActiveForUser(ctx context.Context, userID int) ([]types.ActivePurchase, error) {
	items, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch active packages", err)
	}
	return items, nil
}

func (s *PurchaseService) ListAll(ctx context.Context) ([]types.Purchase, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch purchases", err)
	}
	return items, nil
}

func (s *PurchaseService) SalesByPackage(ctx context.Context) ([]types.PackageSale, error) {
	sales, err := s.repo.SalesByPackage(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch package sales", err)
	}
	return sales, nil
}
