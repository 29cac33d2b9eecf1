package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records a user's acquisition of a package.
type Purchase struct {
	// ID is the unique identifier of the purchase.
	ID int `json:"id" db:"id"`

	// UserID references users.id of the buyer.
	UserID int `json:"user_id" db:"user_id"`

	// PackageID references the purchased package.
	PackageID int `json:"package_id" db:"package_id"`

	// InvestmentAmount is what the buyer actually paid.
	InvestmentAmount decimal.Decimal `json:"investment_amount" db:"investment_amount"`

	// PurchaseDate is set when the row is inserted.
	PurchaseDate time.Time `json:"purchase_date" db:"purchase_date"`

	// IsActive makes the purchase eligible for every accrual cycle.
	IsActive bool `json:"is_active" db:"is_active"`
}

// ActivePurchase is a purchase joined with the details of its package.
type ActivePurchase struct {
	Purchase
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	EarningsPerDay decimal.Decimal `json:"earnings_per_day" db:"earnings_per_day"`
	EarningsDays   int             `json:"earnings_days" db:"earnings_days"`
	TotalEarnings  decimal.Decimal `json:"total_earnings" db:"total_earnings"`
}

// PurchaseReceipt is returned after a successful buy.
type PurchaseReceipt struct {
	Purchase Purchase        `json:"purchase"`
	Wallet   decimal.Decimal `json:"wallet"`
	Credited decimal.Decimal `json:"credited"`
}

// AccrualCredit is the amount one user received in an accrual pass.
type AccrualCredit struct {
	UserID int             `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// WalletBalance is a user's balance after an admin override.
type WalletBalance struct {
	UserID int             `json:"user_id"`
	Wallet decimal.Decimal `json:"wallet"`
}

// AccrualSummary describes a completed accrual pass.
type AccrualSummary struct {
	Trigger       string          `json:"trigger"`
	UsersCredited int             `json:"users_credited"`
	TotalCredited decimal.Decimal `json:"total_credited"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}
