package handlers

import (
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/shopspring/decimal"
)

// Whether email and referral_code are mandatory depends on signup config, so
// the service checks them.
type SignupRequest struct {
	Username     string `json:"username" validate:"required,max=255"`
	Email        string `json:"email" validate:"max=255"`
	Password     string `json:"password" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required,max=20"`
	ReferralCode string `json:"referral_code"`
}

func (r SignupRequest) input() services.SignupInput {
	return services.SignupInput{
		Username:     r.Username,
		Email:        r.Email,
		Password:     r.Password,
		MobileNumber: r.MobileNumber,
		ReferralCode: r.ReferralCode,
	}
}

type LoginRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required_without=Email"`
	Email        string `json:"email" validate:"required_without=MobileNumber"`
	Password     string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,max=255"`
}

type BuyPackageRequest struct {
	PackageID        int              `json:"package_id" validate:"required,gte=1"`
	InvestmentAmount *decimal.Decimal `json:"investment_amount" validate:"required"`
}

// UpdateWalletRequest accepts the wallet as a JSON number or numeric string.
type UpdateWalletRequest struct {
	Wallet *decimal.Decimal `json:"wallet" validate:"required"`
}

type AddPackageRequest struct {
	Name             string           `json:"name" validate:"required,max=255"`
	Description      string           `json:"description"`
	InvestmentAmount *decimal.Decimal `json:"investment_amount" validate:"required"`
	EarningsPerDay   *decimal.Decimal `json:"earnings_per_day" validate:"required"`
	EarningsDays     *int             `json:"earnings_days" validate:"required,gte=0"`
	TotalEarnings    *decimal.Decimal `json:"total_earnings" validate:"required"`
	MaximumPurchase  *int             `json:"maximum_purchase" validate:"omitempty,gte=0"`
	IsActive         *bool            `json:"is_active"`
}

func (r AddPackageRequest) input() services.CreatePackageInput {
	return services.CreatePackageInput{
		Name:             r.Name,
		Description:      r.Description,
		InvestmentAmount: r.InvestmentAmount,
		EarningsPerDay:   r.EarningsPerDay,
		TotalEarnings:    r.TotalEarnings,
		EarningsDays:     r.EarningsDays,
		MaximumPurchase:  r.MaximumPurchase,
		IsActive:         r.IsActive,
	}
}
