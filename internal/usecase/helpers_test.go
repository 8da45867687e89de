package usecase_test

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
	"github.com/martin5169/financial-dashboard/internal/usecase/mocks"
)

const testUserID = "6f1c9a52-2b7e-4d0c-9a43-1f0e8b7c5d21"

var errNetwork = errors.New("network unreachable")

func guestResolver() *usecase.ScopeResolver {
	return usecase.NewScopeResolver(&mocks.StaticIdentity{}, "", zerolog.Nop())
}

func userResolver(id string) *usecase.ScopeResolver {
	return usecase.NewScopeResolver(&mocks.StaticIdentity{User: &domain.User{ID: id}}, "", zerolog.Nop())
}
