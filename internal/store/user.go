package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
)

const userColumns = `id, username, email, mobile_number, wallet, user_id, referral_code,
		referred_by, is_admin, password_hash, created_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		user       types.User
		email      sql.NullString
		referredBy sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.MobileNumber,
		&user.Wallet,
		&user.UserID,
		&user.ReferralCode,
		&referredBy,
		&user.IsAdmin,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.Email = email.String
	if referredBy.Valid {
		code := strings.TrimSpace(referredBy.String)
		user.ReferredBy = &code
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile_number = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, mobile))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// ExistsByEmailOrMobile reports whether either identifier is already registered.
// An empty email only matches on mobile.
func (r *UserRepository) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE (email = NULLIF($1, '')) OR mobile_number = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, mobile).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE referral_code = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UserIDExists(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a user. Unique violations are reported as ErrDuplicateEmail,
// ErrDuplicateMobile or ErrDuplicateCode.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, mobile_number, user_id, referral_code, referred_by, is_admin)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING id, wallet, created_at`

	var referredBy sql.NullString
	if user.ReferredBy != nil {
		referredBy = sql.NullString{String: *user.ReferredBy, Valid: true}
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.MobileNumber,
		user.UserID,
		user.ReferralCode,
		referredBy,
		user.IsAdmin,
	).Scan(&user.ID, &user.Wallet, &user.CreatedAt)
	if err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) UpdateUsername(ctx context.Context, id int, username string) (types.User, error) {
	query := `UPDATE users SET username = $1 WHERE id = $2 RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, username, id))
}

// SetWallet overwrites the wallet with an absolute value.
func (r *UserRepository) SetWallet(ctx context.Context, id int, wallet decimal.Decimal) (types.User, error) {
	query := `UPDATE users SET wallet = $1 WHERE id = $2 RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, wallet, id))
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// ListReferrals returns users who signed up with the given referral code, newest first.
func (r *UserRepository) ListReferrals(ctx context.Context, code string) ([]types.Referral, error) {
	const query = `
		SELECT username, user_id, created_at
		FROM users
		WHERE referred_by = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referrals := []types.Referral{}
	for rows.Next() {
		var ref types.Referral
		if err := rows.Scan(&ref.Username, &ref.UserID, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return referrals, nil
}
