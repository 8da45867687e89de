package domain

import "context"

type scopeKey struct{}

// WithScope returns a copy of ctx carrying the resolved scope.
func WithScope(ctx context.Context, scope UserScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope resolved for ctx, if any.
func ScopeFrom(ctx context.Context) (UserScope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(UserScope)
	return scope, ok
}
