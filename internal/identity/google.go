package identity

import (
	"context"
	"errors"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/dashboard-auth/internal/errors"
	"google.golang.org/api/idtoken"
)

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against the configured client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, identityToken string) (*domain.FederatedIdentity, error) {
	if v.clientID == "" {
		return nil, autherror.ErrIdentityProviderNotConfigured
	}

	payload, err := v.validate(ctx, identityToken, v.clientID)
	if err != nil {
		return nil, err
	}

	identity := &domain.FederatedIdentity{
		Subject: payload.Subject,
		Email:   claim(payload, "email"),
		Name:    claim(payload, "name"),
		Picture: claim(payload, "picture"),
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, errors.New("identity token carries no subject or email")
	}
	return identity, nil
}

func claim(payload *idtoken.Payload, key string) string {
	s, _ := payload.Claims[key].(string)
	return s
}
