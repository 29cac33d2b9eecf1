package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds is returned when a debit would overdraw a wallet.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPackageUnavailable is returned when a package is missing or inactive at purchase time.
	ErrPackageUnavailable = errors.New("package unavailable")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateMobile    = errors.New("mobile number already registered")
	// ErrDuplicateCode is returned when a generated user_id or referral_code collides.
	ErrDuplicateCode = errors.New("generated code already taken")
)

const (
	uniqueViolation = pq.ErrorCode("23505")

	constraintEmail        = "users_email_key"
	constraintMobile       = "users_mobile_number_key"
	constraintUserID       = "users_user_id_key"
	constraintReferralCode = "users_referral_code_key"
)

// translateError maps unique violations on the users table to sentinel errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case constraintEmail:
		return ErrDuplicateEmail
	case constraintMobile:
		return ErrDuplicateMobile
	case constraintUserID, constraintReferralCode:
		return ErrDuplicateCode
	default:
		return err
	}
}
