package auth

import "context"

type contextKey string

const accessTokenKey contextKey = "access_token"

// WithAccessToken returns a copy of ctx carrying the caller's access token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessToken returns the access token carried by ctx, if any.
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	return token, ok && token != ""
}
