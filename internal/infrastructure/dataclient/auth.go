package dataclient

import (
	"context"
	"net/http"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
)

// User is the auth service's view of a user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Aud   string `json:"aud"`
}

// AuthClient is the identity half of the data service.
type AuthClient struct {
	client *Client
}

// GetUser asks the auth service who owns the access token in ctx. It returns
// nil without error when ctx carries no token.
func (a *AuthClient) GetUser(ctx context.Context) (*User, error) {
	if _, ok := auth.AccessToken(ctx); !ok {
		return nil, nil
	}

	req, err := a.client.newRequest(ctx, http.MethodGet, authPath+"/user", nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := a.client.do(req, "auth/user", &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetSession describes the session carried by ctx, or nil without one. The
// token is not verified here; the data service checks it on every request.
func (a *AuthClient) GetSession(ctx context.Context) (*domain.Session, error) {
	token, ok := auth.AccessToken(ctx)
	if !ok {
		return nil, nil
	}

	claims, err := auth.Decode(token)
	if err != nil {
		return nil, err
	}

	return claims.Session(token), nil
}
