package services

import (
	"context"
	"testing"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/dailyyield/apiserver/internal/store/memstore"
	"github.com/dailyyield/apiserver/types"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T, signup config.SignupConfig) (*UserService, *memstore.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := memstore.New()
	svc := NewUserService(repo, NewTokenIssuer("test-secret", time.Hour), signup, logger)
	svc.hashCost = bcrypt.MinCost
	return svc, repo
}

// seedReferrer creates a user without a referral so that others can sign up with its code.
func seedReferrer(t *testing.T, svc *UserService) types.User {
	t.Helper()
	user, err := svc.CreateAdmin(context.Background(), SignupInput{
		Username:     "root",
		Email:        "root@example.com",
		Password:     "rootpass",
		MobileNumber: "0700000000",
	})
	require.NoError(t, err)
	return user
}

func TestSignupNormalizesEmail(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{RequireReferral: true, RequireEmail: true})
	referrer := seedReferrer(t, svc)

	result, err := svc.Signup(context.Background(), SignupInput{
		Username:     "  Alice ",
		Email:        "  Alice@Example.COM ",
		Password:     "secret",
		MobileNumber: " 0711111111 ",
		ReferralCode: referrer.ReferralCode,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, "Alice", result.User.Username)
	assert.Equal(t, "0711111111", result.User.MobileNumber)
	require.NotNil(t, result.User.ReferredBy)
	assert.Equal(t, referrer.ReferralCode, *result.User.ReferredBy)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, result.User.UserID)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, result.User.ReferralCode)
	assert.False(t, result.User.IsAdmin)

	id, err := svc.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, id)
}

func TestSignupInvalidReferral(t *testing.T) {
	svc, repo := newTestUserService(t, config.SignupConfig{RequireReferral: true})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username:     "bob",
		Password:     "secret",
		MobileNumber: "0722",
		ReferralCode: "NOPE00",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidReferral))

	users, _ := repo.List(context.Background())
	assert.Empty(t, users)
}

func TestSignupConflict(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{RequireReferral: true, RequireEmail: true})
	referrer := seedReferrer(t, svc)

	cases := map[string]SignupInput{
		"same email": {
			Username: "x", Email: "ROOT@example.com", Password: "p", MobileNumber: "0799", ReferralCode: referrer.ReferralCode,
		},
		"same mobile": {
			Username: "y", Email: "other@example.com", Password: "p", MobileNumber: "0700000000", ReferralCode: referrer.ReferralCode,
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), in)
			assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
		})
	}
}

func TestSignupRequiredFields(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{RequireReferral: true, RequireEmail: true})

	_, err := svc.Signup(context.Background(), SignupInput{Username: "a", Password: "p", MobileNumber: "1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Signup(context.Background(), SignupInput{Username: " ", Email: "a@b.c", Password: "p", MobileNumber: "1", ReferralCode: "ABCDEF"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSignupWithoutReferralWhenOptional(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{})

	result, err := svc.Signup(context.Background(), SignupInput{
		Username:     "solo",
		Password:     "secret",
		MobileNumber: "0733",
	})
	require.NoError(t, err)
	assert.Nil(t, result.User.ReferredBy)
	assert.Empty(t, result.User.Email)
}

type collidingRepo struct {
	*memstore.Store
	collisions int
}

func (r *collidingRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if r.collisions > 0 {
		r.collisions--
		return types.User{}, store.ErrDuplicateCode
	}
	return r.Store.Create(ctx, user)
}

func TestSignupRetriesCodeCollisionOnInsert(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := &collidingRepo{Store: memstore.New(), collisions: 2}
	svc := NewUserService(repo, NewTokenIssuer("s", time.Hour), config.SignupConfig{}, logger)
	svc.hashCost = bcrypt.MinCost

	result, err := svc.Signup(context.Background(), SignupInput{Username: "u", Password: "p", MobileNumber: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.User.ID)
	assert.Zero(t, repo.collisions)
}

func TestSignupCodeCollisionExhausted(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := &collidingRepo{Store: memstore.New(), collisions: maxCodeAttempts}
	svc := NewUserService(repo, NewTokenIssuer("s", time.Hour), config.SignupConfig{}, logger)
	svc.hashCost = bcrypt.MinCost

	_, err := svc.Signup(context.Background(), SignupInput{Username: "u", Password: "p", MobileNumber: "1"})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{})
	signed, err := svc.Signup(context.Background(), SignupInput{
		Username:     "carol",
		Email:        "carol@example.com",
		Password:     "right",
		MobileNumber: "0744",
	})
	require.NoError(t, err)

	t.Run("by mobile", func(t *testing.T) {
		result, err := svc.Login(context.Background(), LoginInput{MobileNumber: " 0744 ", Password: "right"})
		require.NoError(t, err)
		id, err := svc.tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, id)
	})

	t.Run("by email", func(t *testing.T) {
		result, err := svc.Login(context.Background(), LoginInput{Email: "CAROL@example.com", Password: "right"})
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, result.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{MobileNumber: "0744", Password: "wrong"})
		assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{MobileNumber: "0000", Password: "right"})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("missing identifier", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Password: "right"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestAuthorize(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{})
	admin := seedReferrer(t, svc)
	member, err := svc.Signup(context.Background(), SignupInput{Username: "m", Password: "p", MobileNumber: "0755"})
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), admin.ID)
	assert.NoError(t, err)

	_, err = svc.Authorize(context.Background(), member.User.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Authorize(context.Background(), 999)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestUpdateUsernameAndReferrals(t *testing.T) {
	svc, _ := newTestUserService(t, config.SignupConfig{RequireReferral: true})
	referrer := seedReferrer(t, svc)
	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "first", Password: "p", MobileNumber: "0766", ReferralCode: referrer.ReferralCode,
	})
	require.NoError(t, err)
	_, err = svc.Signup(context.Background(), SignupInput{
		Username: "second", Password: "p", MobileNumber: "0777", ReferralCode: referrer.ReferralCode,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUsername(context.Background(), referrer.ID, "  boss ")
	require.NoError(t, err)
	assert.Equal(t, "boss", updated.Username)
	assert.Equal(t, referrer.Email, updated.Email)

	_, err = svc.UpdateUsername(context.Background(), referrer.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	refs, err := svc.ListReferrals(context.Background(), referrer.ID)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "second", refs[0].Username)
}
