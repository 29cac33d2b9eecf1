package services

import (
	"context"
	"strings"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
)

// PackageRepository defines persistence operations for the catalog.
type PackageRepository interface {
	Create(ctx context.Context, pkg types.Package) (types.Package, error)
	GetByID(ctx context.Context, id int) (types.Package, error)
	ListActive(ctx context.Context) ([]types.Package, error)
	ListAll(ctx context.Context) ([]types.Package, error)
}

// CreatePackageInput uses pointers so that absent fields can be told apart from zero.
type CreatePackageInput struct {
	Name             string
	Description      string
	InvestmentAmount *decimal.Decimal
	EarningsPerDay   *decimal.Decimal
	TotalEarnings    *decimal.Decimal
	EarningsDays     *int
	MaximumPurchase  *int
	IsActive         *bool
}

type PackageService struct {
	repo PackageRepository
}

func NewPackageService(repo PackageRepository) *PackageService {
	return &PackageService{repo: repo}
}

func (s *PackageService) ListActive(ctx context.Context) ([]types.Package, error) {
	pkgs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch packages", err)
	}
	return pkgs, nil
}

func (s *PackageService) ListAll(ctx context.Context) ([]types.Package, error) {
	pkgs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch packages", err)
	}
	return pkgs, nil
}

// Create adds a package to the catalog. maximum_purchase defaults to 0
// (unlimited) and is_active to true.
func (s *PackageService) Create(ctx context.Context, in CreatePackageInput) (types.Package, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.InvestmentAmount == nil || in.EarningsPerDay == nil ||
		in.TotalEarnings == nil || in.EarningsDays == nil {
		return types.Package{}, apperr.Validation("Missing required package fields")
	}
	if in.InvestmentAmount.IsNegative() || in.EarningsPerDay.IsNegative() ||
		in.TotalEarnings.IsNegative() || *in.EarningsDays < 0 {
		return types.Package{}, apperr.Validation("Package amounts must not be negative")
	}
	for _, amount := range []struct {
		field string
		value decimal.Decimal
	}{
		{"investment_amount", *in.InvestmentAmount},
		{"earnings_per_day", *in.EarningsPerDay},
		{"total_earnings", *in.TotalEarnings},
	} {
		if err := checkMoney(amount.field, amount.value); err != nil {
			return types.Package{}, err
		}
	}

	pkg := types.Package{
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		InvestmentAmount: *in.InvestmentAmount,
		EarningsPerDay:   *in.EarningsPerDay,
		TotalEarnings:    *in.TotalEarnings,
		EarningsDays:     *in.EarningsDays,
		IsActive:         true,
	}
	if in.MaximumPurchase != nil {
		if *in.MaximumPurchase < 0 {
			return types.Package{}, apperr.Validation("maximum_purchase must not be negative")
		}
		pkg.MaximumPurchase = *in.MaximumPurchase
	}
	if in.IsActive != nil {
		pkg.IsActive = *in.IsActive
	}

	created, err := s.repo.Create(ctx, pkg)
	if err != nil {
		return types.Package{}, apperr.Internal("Failed to add package", err)
	}
	return created, nil
}
