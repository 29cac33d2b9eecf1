package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account in the system.
// It contains credentials, wallet balance, and referral linkage.
type User struct {
	// ID is the internal numeric identifier of the user. Tokens carry this value.
	ID int `json:"id" db:"id"`

	// Username is the mutable display name of the user.
	Username string `json:"username" db:"username"`

	// Email is the user's address, stored trimmed and lowercase.
	// It may be empty when the deployment does not require it.
	Email string `json:"email" db:"email"`

	// MobileNumber is the user's phone number and a login identifier.
	MobileNumber string `json:"mobile_number" db:"mobile_number"`

	// Wallet is the user's balance. It never drops below zero.
	Wallet decimal.Decimal `json:"wallet" db:"wallet"`

	// UserID is the public 6-digit identifier shown to users.
	UserID string `json:"user_id" db:"user_id"`

	// ReferralCode is the 6-character code other users sign up with.
	ReferralCode string `json:"referral_code" db:"referral_code"`

	// ReferredBy holds the referral code used at signup, if any.
	ReferredBy *string `json:"referred_by,omitempty" db:"referred_by"`

	// IsAdmin grants access to the administrative endpoints.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Referral is the public view of a user who signed up with someone's code.
type Referral struct {
	Username  string    `json:"username" db:"username"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
