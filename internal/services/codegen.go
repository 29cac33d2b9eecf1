package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	maxCodeAttempts   = 10
	codeLength        = 6
	referralAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	userIDFirstDigits = "123456789"
	userIDOtherDigits = "0123456789"
)

// ErrCodeSpaceExhausted is returned when no free code was found within maxCodeAttempts.
var ErrCodeSpaceExhausted = errors.New("unique code space exhausted")

// CodeRepository reports whether a generated code is already taken.
type CodeRepository interface {
	UserIDExists(ctx context.Context, userID string) (bool, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator draws random public user ids and referral codes until it finds
// one that is not in use.
type CodeGenerator struct {
	repo        CodeRepository
	intn        func(n int) int
	maxAttempts int
}

func NewCodeGenerator(repo CodeRepository) *CodeGenerator {
	return &CodeGenerator{
		repo:        repo,
		intn:        rand.Intn,
		maxAttempts: maxCodeAttempts,
	}
}

// GenerateUserID returns an unused 6-digit id in the range 100000-999999.
func (g *CodeGenerator) GenerateUserID(ctx context.Context) (string, error) {
	return g.generate(ctx, "user id", g.randomUserID, g.repo.UserIDExists)
}

// GenerateReferralCode returns an unused 6-character uppercase alphanumeric code.
func (g *CodeGenerator) GenerateReferralCode(ctx context.Context) (string, error) {
	return g.generate(ctx, "referral code", g.randomReferralCode, g.repo.ReferralCodeExists)
}

func (g *CodeGenerator) generate(
	ctx context.Context,
	kind string,
	draw func() string,
	exists func(context.Context, string) (bool, error),
) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate := draw()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", kind, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s after %d attempts: %w", kind, g.maxAttempts, ErrCodeSpaceExhausted)
}

func (g *CodeGenerator) randomUserID() string {
	var b strings.Builder
	b.Grow(codeLength)
	b.WriteByte(userIDFirstDigits[g.intn(len(userIDFirstDigits))])
	for i := 1; i < codeLength; i++ {
		b.WriteByte(userIDOtherDigits[g.intn(len(userIDOtherDigits))])
	}
	return b.String()
}

func (g *CodeGenerator) randomReferralCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(referralAlphabet[g.intn(len(referralAlphabet))])
	}
	return b.String()
}
