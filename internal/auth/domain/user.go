package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	FederatedID  string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LoginOutcome string

const (
	LoginSuccess LoginOutcome = "success"
	LoginFailed  LoginOutcome = "failed"
)

type LoginAttempt struct {
	ID          string
	Email       string
	IPAddress   string
	AttemptTime time.Time
	Outcome     LoginOutcome
}

// OTPEntry is the single pending password-reset code for an email.
type OTPEntry struct {
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether now is past the entry's expiry instant.
func (e OTPEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// FederatedIdentity is what the identity provider vouches for after
// verifying an ID token.
type FederatedIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}
