package auth

import (
	"context"
	"errors"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// LocalIdentity resolves the caller by verifying the access token in the
// request context against the project secret. It serves deployments that talk
// to the database directly and cannot ask the auth service.
type LocalIdentity struct {
	manager *JWTManager
}

// NewLocalIdentity creates a LocalIdentity.
func NewLocalIdentity(manager *JWTManager) *LocalIdentity {
	return &LocalIdentity{manager: manager}
}

// CurrentUser returns the token's user, nil when the request has no token.
func (i *LocalIdentity) CurrentUser(ctx context.Context) (*domain.User, error) {
	claims, err := i.claims(ctx)
	if err != nil || claims == nil {
		return nil, err
	}
	return &domain.User{ID: claims.UserID(), Email: claims.Email, Role: claims.Role}, nil
}

// CurrentSession returns the session described by the token.
func (i *LocalIdentity) CurrentSession(ctx context.Context) (*domain.Session, error) {
	claims, err := i.claims(ctx)
	if err != nil || claims == nil {
		return nil, err
	}
	token, _ := AccessToken(ctx)
	return claims.Session(token), nil
}

func (i *LocalIdentity) claims(ctx context.Context) (*Claims, error) {
	token, ok := AccessToken(ctx)
	if !ok {
		return nil, nil
	}

	claims, err := i.manager.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrExpiredToken) {
			return nil, err
		}
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
