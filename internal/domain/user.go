package domain

import (
	"errors"
	"time"
)

// DefaultGuestUserID owns every row written or read without an authenticated
// session. All anonymous callers share it.
const DefaultGuestUserID = "de8b95c7-3193-4f80-86d3-9212a60fe79b"

// User is the identity reported by the hosted auth service.
type User struct {
	ID    string
	Email string
	Role  string
}

// Session describes the access token a request carries.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	Role        string
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// UserScope is the owner every entity operation is scoped to: either an
// authenticated user or the shared guest account.
type UserScope struct {
	userID        string
	authenticated bool
}

// AuthenticatedScope scopes operations to userID.
func AuthenticatedScope(userID string) UserScope {
	return UserScope{userID: userID, authenticated: true}
}

// GuestScope scopes operations to the shared guest account.
func GuestScope(guestUserID string) UserScope {
	if guestUserID == "" {
		guestUserID = DefaultGuestUserID
	}
	return UserScope{userID: guestUserID}
}

// UserID returns the identifier rows are filtered and stamped with.
func (s UserScope) UserID() string {
	return s.userID
}

// IsGuest reports whether the scope is the shared guest account.
func (s UserScope) IsGuest() bool {
	return !s.authenticated
}

func (s UserScope) String() string {
	if s.authenticated {
		return "authenticated"
	}
	return "guest"
}

// Authentication errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
