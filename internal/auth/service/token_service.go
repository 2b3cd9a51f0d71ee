package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is fixed; there is no refresh, expiry forces a new login.
const SessionTokenTTL = time.Hour

type TokenGenerator interface {
	Generate(user *domain.User) (string, time.Time, error)
	Verify(tokenString string) (*SessionClaims, error)
}

type TokenService struct {
	Secret string
	TTL    time.Duration
	now    func() time.Time
}

type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		Secret: secret,
		TTL:    SessionTokenTTL,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *ts
	clone.now = now
	return &clone
}

func (ts *TokenService) Generate(user *domain.User) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.TTL)

	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses the token, checks the HMAC signature and requires now < exp.
func (ts *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.Secret), nil
	}, jwt.WithTimeFunc(ts.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
