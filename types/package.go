package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is an investment product users can buy.
type Package struct {
	// PackageID is the unique identifier of the package.
	PackageID int `json:"package_id" db:"package_id"`

	// Name is the title shown in the catalog.
	Name string `json:"name" db:"name"`

	// Description is optional marketing text.
	Description string `json:"description" db:"description"`

	// InvestmentAmount is the listed price. Buyers may pay a different amount.
	InvestmentAmount decimal.Decimal `json:"investment_amount" db:"investment_amount"`

	// EarningsPerDay is credited once per accrual cycle for every active purchase.
	EarningsPerDay decimal.Decimal `json:"earnings_per_day" db:"earnings_per_day"`

	// TotalEarnings is informational and is not enforced as a cap.
	TotalEarnings decimal.Decimal `json:"total_earnings" db:"total_earnings"`

	// EarningsDays is the advertised duration of the package.
	EarningsDays int `json:"earnings_days" db:"earnings_days"`

	// MaximumPurchase is the advertised per-user limit; 0 means unlimited.
	MaximumPurchase int `json:"maximum_purchase" db:"maximum_purchase"`

	// IsActive gates whether the package can be listed and bought.
	IsActive bool `json:"is_active" db:"is_active"`

	// CreatedAt orders the catalog, newest first.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PackageSale aggregates purchases of a single package.
type PackageSale struct {
	PackageID       int             `json:"package_id" db:"package_id"`
	Name            string          `json:"name" db:"name"`
	TotalSales      int             `json:"total_sales" db:"total_sales"`
	TotalInvestment decimal.Decimal `json:"total_investment" db:"total_investment"`
}
