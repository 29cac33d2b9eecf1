package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	CodeRepository
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByMobile(ctx context.Context, mobile string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateUsername(ctx context.Context, id int, username string) (types.User, error)
	SetWallet(ctx context.Context, id int, wallet decimal.Decimal) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListReferrals(ctx context.Context, code string) ([]types.Referral, error)
}

type SignupInput struct {
	Username     string
	Email        string
	Password     string
	MobileNumber string
	ReferralCode string
}

type LoginInput struct {
	MobileNumber string
	Email        string
	Password     string
}

type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// UserService encapsulates identity use-cases: signup, login and profile access.
type UserService struct {
	repo     UserRepository
	codes    *CodeGenerator
	tokens   *TokenIssuer
	signup   config.SignupConfig
	hashCost int
	logger   logrus.FieldLogger
}

func NewUserService(
	repo UserRepository,
	tokens *TokenIssuer,
	signup config.SignupConfig,
	logger logrus.FieldLogger,
) *UserService {
	return &UserService{
		repo:     repo,
		codes:    NewCodeGenerator(repo),
		tokens:   tokens,
		signup:   signup,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
}

// Signup registers a user and returns a session token.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.ReferralCode = strings.ToUpper(strings.TrimSpace(in.ReferralCode))

	if in.Username == "" || in.Password == "" || in.MobileNumber == "" {
		return AuthResult{}, apperr.Validation("All fields are required")
	}
	if s.signup.RequireEmail && in.Email == "" {
		return AuthResult{}, apperr.Validation("All fields are required")
	}
	if s.signup.RequireReferral && in.ReferralCode == "" {
		return AuthResult{}, apperr.Validation("All fields are required")
	}

	var referredBy *string
	if in.ReferralCode != "" {
		exists, err := s.repo.ReferralCodeExists(ctx, in.ReferralCode)
		if err != nil {
			return AuthResult{}, apperr.Internal("Failed to register user", err)
		}
		if !exists {
			return AuthResult{}, apperr.InvalidReferral()
		}
		code := in.ReferralCode
		referredBy = &code
	}

	user, err := s.register(ctx, in, referredBy, false)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, apperr.Internal("Failed to create token", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user signed up")
	return AuthResult{Token: token, User: user}, nil
}

// CreateAdmin bootstraps an administrator without a referral code.
func (s *UserService) CreateAdmin(ctx context.Context, in SignupInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if in.Username == "" || in.Password == "" || in.MobileNumber == "" {
		return types.User{}, apperr.Validation("username, password and mobile number are required")
	}

	user, err := s.register(ctx, in, nil, true)
	if err != nil {
		return types.User{}, err
	}
	s.logger.WithField("user_id", user.ID).Info("admin created")
	return user, nil
}

func (s *UserService) register(ctx context.Context, in SignupInput, referredBy *string, isAdmin bool) (types.User, error) {
	taken, err := s.repo.ExistsByEmailOrMobile(ctx, in.Email, in.MobileNumber)
	if err != nil {
		return types.User{}, apperr.Internal("Failed to register user", err)
	}
	if taken {
		return types.User{}, apperr.Conflict("User with this email or mobile number already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return types.User{}, apperr.Internal("Failed to register user", err)
	}

	// Codes are checked before insert, but a concurrent signup can still take
	// them; the unique constraints catch that and we draw again.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		userID, err := s.codes.GenerateUserID(ctx)
		if err != nil {
			return types.User{}, apperr.Internal("Failed to register user", err)
		}
		referralCode, err := s.codes.GenerateReferralCode(ctx)
		if err != nil {
			return types.User{}, apperr.Internal("Failed to register user", err)
		}

		user, err := s.repo.Create(ctx, types.User{
			Username:     in.Username,
			Email:        in.Email,
			MobileNumber: in.MobileNumber,
			PasswordHash: string(hashed),
			UserID:       userID,
			ReferralCode: referralCode,
			ReferredBy:   referredBy,
			IsAdmin:      isAdmin,
		})
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, store.ErrDuplicateCode):
			s.logger.WithField("attempt", attempt+1).Warn("generated code collided on insert")
			continue
		case errors.Is(err, store.ErrDuplicateEmail), errors.Is(err, store.ErrDuplicateMobile):
			return types.User{}, apperr.Conflict("User with this email or mobile number already exists")
		default:
			return types.User{}, apperr.Internal("Failed to register user", err)
		}
	}
	return types.User{}, apperr.Internal("Failed to register user", ErrCodeSpaceExhausted)
}

// Login authenticates by mobile number, or by email when no mobile number is given.
func (s *UserService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	mobile := strings.TrimSpace(in.MobileNumber)
	email := normalizeEmail(in.Email)
	if in.Password == "" || (mobile == "" && email == "") {
		return AuthResult{}, apperr.Validation("Mobile number or email and password are required")
	}

	var (
		user types.User
		err  error
	)
	if mobile != "" {
		user, err = s.repo.GetByMobile(ctx, mobile)
	} else {
		user, err = s.repo.GetByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, apperr.NotFound("User not found")
		}
		return AuthResult{}, apperr.Internal("Failed to authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResult{}, apperr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, apperr.Internal("Failed to create token", err)
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("User not found")
		}
		return types.User{}, apperr.Internal("Failed to load user", err)
	}
	return user, nil
}

// Authorize resolves the caller of an admin route. A token for a user that no
// longer exists is treated as unauthorized.
func (s *UserService) Authorize(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Unauthorized()
		}
		return types.User{}, apperr.Internal("Failed to load user", err)
	}
	if !user.IsAdmin {
		return types.User{}, apperr.Forbidden()
	}
	return user, nil
}

// UpdateUsername changes the caller's display name. Nothing else is mutable.
func (s *UserService) UpdateUsername(ctx context.Context, id int, username string) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.User{}, apperr.Validation("Username is required")
	}
	user, err := s.repo.UpdateUsername(ctx, id, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("User not found")
		}
		return types.User{}, apperr.Internal("Failed to update user information", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	return users, nil
}

// ListReferrals returns the users who signed up with the caller's referral code.
func (s *UserService) ListReferrals(ctx context.Context, id int) ([]types.Referral, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	referrals, err := s.repo.ListReferrals(ctx, user.ReferralCode)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch referrals", err)
	}
	return referrals, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
