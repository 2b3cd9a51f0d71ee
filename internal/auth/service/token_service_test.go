package service

import (
	"strings"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenService(t *testing.T) {
	ts := NewTokenService("secret-key")

	assert.NotNil(t, ts)
	assert.Equal(t, "secret-key", ts.Secret)
	assert.Equal(t, time.Hour, ts.TTL)
}

func TestTokenService_Generate(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		user   *domain.User
	}{
		{
			name:   "successful token generation",
			secret: "test-secret-key-123",
			user:   &domain.User{ID: "user-123", Email: "test@example.com", Name: "Test"},
		},
		{
			name:   "user without a name",
			secret: "test-secret-key-123",
			user:   &domain.User{ID: "user-456", Email: "noname@example.com"},
		},
		{
			name:   "empty user data",
			secret: "test-secret-key-123",
			user:   &domain.User{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			ts := NewTokenService(tt.secret).WithClock(fixedClock(issuedAt))

			token, expiresAt, err := ts.Generate(tt.user)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, issuedAt.Add(time.Hour), expiresAt)

			claims := &SessionClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(tt.secret), nil
			}, jwt.WithTimeFunc(fixedClock(issuedAt)))
			require.NoError(t, err)
			assert.True(t, parsed.Valid)
			assert.Equal(t, tt.user.ID, claims.UserID)
			assert.Equal(t, tt.user.Email, claims.Email)
			assert.Equal(t, tt.user.Name, claims.Name)
			assert.Equal(t, issuedAt, claims.IssuedAt.Time.UTC())
			assert.Equal(t, expiresAt, claims.ExpiresAt.Time.UTC())
		})
	}
}

func TestTokenService_Verify_Window(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &domain.User{ID: "user-1", Email: "a@x.com", Name: "Alice"}

	token, _, err := NewTokenService("secret").WithClock(fixedClock(issuedAt)).Generate(user)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "at issuance", at: issuedAt},
		{name: "half way", at: issuedAt.Add(30 * time.Minute)},
		{name: "last second", at: issuedAt.Add(time.Hour - time.Second)},
		{name: "at expiry", at: issuedAt.Add(time.Hour), wantErr: true},
		{name: "after expiry", at: issuedAt.Add(2 * time.Hour), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := NewTokenService("secret").WithClock(fixedClock(tt.at)).Verify(token)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
			assert.Equal(t, user.Name, claims.Name)
		})
	}
}

func TestTokenService_Verify_Rejects(t *testing.T) {
	ts := NewTokenService("test-secret")
	token, _, err := ts.Generate(&domain.User{ID: "u", Email: "u@example.com"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenService("wrong-secret").Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.Verify("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		other, _, err := ts.Generate(&domain.User{ID: "admin", Email: "admin@example.com"})
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		otherParts := strings.Split(other, ".")
		_, err = ts.Verify(parts[0] + "." + otherParts[1] + "." + parts[2])
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := SessionClaims{
			UserID: "u",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ts.Verify(unsigned)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := SessionClaims{UserID: "u"}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = ts.Verify(signed)
		assert.Error(t, err)
	})
}
