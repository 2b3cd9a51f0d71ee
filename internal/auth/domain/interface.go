package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_otp_store.go -package=mocks github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain OTPStore
//go:generate mockgen -destination=../../mocks/mock_notifier.go -package=mocks github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain Notifier
//go:generate mockgen -destination=../../mocks/mock_identity_verifier.go -package=mocks github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain IdentityVerifier

import (
	"context"
	"time"
)

// UserRepository is the credential store. GetByEmail returns (nil, nil) when
// no user matches; Create returns errors.ErrEmailAlreadyInUse on a unique
// violation.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	LinkFederatedIdentity(ctx context.Context, userID, federatedID, avatarURL string) error
	RecordLoginAttempt(ctx context.Context, email, ip string, outcome LoginOutcome) error
}

// OTPStore holds at most one pending reset code per email.
type OTPStore interface {
	Put(email string, entry OTPEntry)
	Get(email string) (OTPEntry, bool)
	Delete(email string)
}

type Notifier interface {
	SendPasswordReset(ctx context.Context, email, code string, ttl time.Duration) error
}

type IdentityVerifier interface {
	Verify(ctx context.Context, identityToken string) (*FederatedIdentity, error)
}
