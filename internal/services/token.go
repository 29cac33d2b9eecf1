package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

// TokenIssuer signs and verifies bearer tokens that carry only the user's numeric id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns an HS256 token for userID that expires after the configured TTL.
func (t *TokenIssuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the user id in the subject.
func (t *TokenIssuer) Verify(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}
	id, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || id < 1 {
		return 0, errors.New("invalid subject")
	}
	return id, nil
}
