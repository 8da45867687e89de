package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// ScopeResolver turns the caller's session into the UserScope every entity
// operation is filtered and stamped with.
type ScopeResolver struct {
	identity    IdentityProvider
	guestUserID string
	recorder    Recorder
	logger      zerolog.Logger
}

// NewScopeResolver creates a ScopeResolver. An empty guestUserID selects
// domain.DefaultGuestUserID.
func NewScopeResolver(identity IdentityProvider, guestUserID string, logger zerolog.Logger) *ScopeResolver {
	if guestUserID == "" {
		guestUserID = domain.DefaultGuestUserID
	}
	return &ScopeResolver{
		identity:    identity,
		guestUserID: guestUserID,
		recorder:    nopRecorder{},
		logger:      logger,
	}
}

// WithRecorder attaches a Recorder and returns the resolver.
func (r *ScopeResolver) WithRecorder(rec Recorder) *ScopeResolver {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// CurrentUserID returns the authenticated user's id. It never fails: lookup
// errors are logged and reported as no user.
func (r *ScopeResolver) CurrentUserID(ctx context.Context) (string, bool) {
	user, err := r.identity.CurrentUser(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("error getting current user")
		return "", false
	}

	if user == nil || user.ID == "" {
		return "", false
	}

	return user.ID, true
}

// Resolve returns the scope for the current call: the authenticated user when
// there is one, otherwise the shared guest account.
func (r *ScopeResolver) Resolve(ctx context.Context) domain.UserScope {
	scope := domain.GuestScope(r.guestUserID)
	if userID, ok := r.CurrentUserID(ctx); ok {
		scope = domain.AuthenticatedScope(userID)
	}

	r.recorder.ObserveScope(scope)

	if scope.IsGuest() {
		r.logger.Debug().Str("user_id", scope.UserID()).Msg("no user session, using guest account")
	}

	return scope
}

// Bind resolves the scope and returns a context carrying it. Storage calls
// made with the returned context act as the guest when the scope is a guest,
// even if the request carried a token the identity service rejected.
func (r *ScopeResolver) Bind(ctx context.Context) (context.Context, domain.UserScope) {
	scope := r.Resolve(ctx)
	return domain.WithScope(ctx, scope), scope
}

// Session returns the resolved scope together with session details, if any.
func (r *ScopeResolver) Session(ctx context.Context) (domain.UserScope, *domain.Session) {
	scope := r.Resolve(ctx)

	session, err := r.identity.CurrentSession(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("error reading session")
		return scope, nil
	}

	return scope, session
}
