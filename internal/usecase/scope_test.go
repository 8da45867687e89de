package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
	"github.com/martin5169/financial-dashboard/internal/usecase/mocks"
)

func TestScopeResolver_CurrentUserID(t *testing.T) {
	tests := []struct {
		name     string
		identity *mocks.StaticIdentity
		wantID   string
		wantOK   bool
	}{
		{
			name:     "authenticated user",
			identity: &mocks.StaticIdentity{User: &domain.User{ID: testUserID}},
			wantID:   testUserID,
			wantOK:   true,
		},
		{
			name:     "no session",
			identity: &mocks.StaticIdentity{},
		},
		{
			name:     "identity lookup fails",
			identity: &mocks.StaticIdentity{Err: errNetwork},
		},
		{
			name:     "user without id",
			identity: &mocks.StaticIdentity{User: &domain.User{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := usecase.NewScopeResolver(tt.identity, "", zerolog.Nop())
			id, ok := r.CurrentUserID(context.Background())
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("CurrentUserID() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestScopeResolver_Resolve(t *testing.T) {
	t.Run("guest fallback uses default id", func(t *testing.T) {
		scope := guestResolver().Resolve(context.Background())
		if !scope.IsGuest() {
			t.Fatal("expected guest scope")
		}
		if scope.UserID() != domain.DefaultGuestUserID {
			t.Errorf("expected %s, got %s", domain.DefaultGuestUserID, scope.UserID())
		}
	})

	t.Run("configured guest id", func(t *testing.T) {
		r := usecase.NewScopeResolver(&mocks.StaticIdentity{Err: errNetwork}, "11111111-1111-1111-1111-111111111111", zerolog.Nop())
		scope := r.Resolve(context.Background())
		if scope.UserID() != "11111111-1111-1111-1111-111111111111" {
			t.Errorf("unexpected guest id %s", scope.UserID())
		}
	})

	t.Run("authenticated scope is recorded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := mocks.NewMockIdentityProvider(ctrl)
		identity.EXPECT().CurrentUser(gomock.Any()).Return(&domain.User{ID: testUserID}, nil)

		rec := mocks.NewMockRecorder(ctrl)
		rec.EXPECT().ObserveScope(domain.AuthenticatedScope(testUserID))

		r := usecase.NewScopeResolver(identity, "", zerolog.Nop()).WithRecorder(rec)
		scope := r.Resolve(context.Background())
		if scope.IsGuest() || scope.UserID() != testUserID {
			t.Errorf("unexpected scope %v %s", scope, scope.UserID())
		}
	})
}

func TestScopeResolver_Bind(t *testing.T) {
	t.Run("rejected session binds the guest scope", func(t *testing.T) {
		r := usecase.NewScopeResolver(&mocks.StaticIdentity{Err: domain.ErrInvalidToken}, "", zerolog.Nop())
		ctx, scope := r.Bind(context.Background())

		bound, ok := domain.ScopeFrom(ctx)
		if !ok {
			t.Fatal("expected scope in context")
		}
		if !bound.IsGuest() || bound != scope {
			t.Errorf("expected bound guest scope, got %v", bound)
		}
	})

	t.Run("authenticated scope", func(t *testing.T) {
		r := usecase.NewScopeResolver(&mocks.StaticIdentity{User: &domain.User{ID: testUserID}}, "", zerolog.Nop())
		ctx, _ := r.Bind(context.Background())

		bound, _ := domain.ScopeFrom(ctx)
		if bound.IsGuest() || bound.UserID() != testUserID {
			t.Errorf("unexpected bound scope %v", bound)
		}
	})

	t.Run("updates run with the bound scope", func(t *testing.T) {
		repo := mocks.NewMockTransactionRepository()
		uc := usecase.NewTransactionUseCase(repo, guestResolver(), nil, fixedClock, zerolog.Nop())

		var bound domain.UserScope
		repo.UpdateFunc = func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
			bound, _ = domain.ScopeFrom(ctx)
			return nil, errNetwork
		}

		title := "Rent"
		uc.UpdateTransaction(context.Background(), "tx-1", domain.TransactionPatch{Title: &title})
		if !bound.IsGuest() {
			t.Errorf("expected guest scope on update, got %v", bound)
		}
	})
}

func TestScopeResolver_Session(t *testing.T) {
	session := &domain.Session{AccessToken: "token", UserID: testUserID, Email: "ana@example.com"}
	r := usecase.NewScopeResolver(&mocks.StaticIdentity{
		User:    &domain.User{ID: testUserID},
		Session: session,
	}, "", zerolog.Nop())

	scope, got := r.Session(context.Background())
	if scope.IsGuest() {
		t.Error("expected authenticated scope")
	}
	if got != session {
		t.Errorf("expected session %+v, got %+v", session, got)
	}
}
