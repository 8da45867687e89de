package rest

import (
	"context"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/dataclient"
)

// Identity implements usecase.IdentityProvider by asking the auth service.
type Identity struct {
	auth *dataclient.AuthClient
}

// NewIdentity creates a new Identity.
func NewIdentity(client *dataclient.Client) *Identity {
	return &Identity{auth: client.Auth()}
}

// CurrentUser returns the caller, or nil when the request has no session.
func (i *Identity) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := i.auth.GetUser(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	return &domain.User{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// CurrentSession describes the caller's session, or nil.
func (i *Identity) CurrentSession(ctx context.Context) (*domain.Session, error) {
	return i.auth.GetSession(ctx)
}
