package errors

import (
	"errors"
)

var (
	ErrValidation                    = errors.New("missing required fields")
	ErrPasswordTooLong               = errors.New("password exceeds 72 bytes")
	ErrInvalidCredentials            = errors.New("invalid credentials")
	ErrEmailAlreadyInUse             = errors.New("email already in use")
	ErrEmailNotFound                 = errors.New("email not found")
	ErrInvalidIdentityToken          = errors.New("invalid identity token")
	ErrIdentityProviderNotConfigured = errors.New("identity provider client id not configured")
	ErrOTPNotFound                   = errors.New("otp not found")
	ErrOTPMismatch                   = errors.New("otp mismatch")
	ErrOTPExpired                    = errors.New("otp expired")
	ErrInvalidToken                  = errors.New("invalid session token")
)
