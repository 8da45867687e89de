package middleware

import (
	"net/http"
	"strings"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
)

// BearerToken moves the caller's access token from the Authorization header
// into the request context. Requests without the header continue as guests;
// the token is checked later by whichever identity provider the backend uses.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		ctx := auth.WithAccessToken(r.Context(), strings.TrimSpace(parts[1]))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
