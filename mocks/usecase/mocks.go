// Package mocks holds testify mocks for the usecase dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/globetrotter/internal/entity"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type Gateway struct {
	mock.Mock
}

// NewGateway - a gateway mock that asserts its expectations when the test ends.
func NewGateway(t testingT) *Gateway {
	m := &Gateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Gateway) FetchRandomDestination(ctx context.Context) (*entity.DestinationRound, error) {
	args := m.Called(ctx)

	round, _ := args.Get(0).(*entity.DestinationRound)
	return round, args.Error(1)
}

func (m *Gateway) SubmitGuess(ctx context.Context, correctCity, guess, username string) (*entity.GuessResult, error) {
	args := m.Called(ctx, correctCity, guess, username)

	result, _ := args.Get(0).(*entity.GuessResult)
	return result, args.Error(1)
}

func (m *Gateway) FetchUserProfile(ctx context.Context, username string) (*entity.Profile, error) {
	args := m.Called(ctx, username)

	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func (m *Gateway) LoginOrCreateUser(ctx context.Context, username string) (*entity.Profile, bool, error) {
	args := m.Called(ctx, username)

	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Bool(1), args.Error(2)
}

type IdentityRepo struct {
	mock.Mock
}

func NewIdentityRepo(t testingT) *IdentityRepo {
	m := &IdentityRepo{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *IdentityRepo) Get(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *IdentityRepo) Save(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *IdentityRepo) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type ImageRenderer struct {
	mock.Mock
}

func NewImageRenderer(t testingT) *ImageRenderer {
	m := &ImageRenderer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ImageRenderer) Save(name, link string, lines []string) (string, error) {
	args := m.Called(name, link, lines)
	return args.String(0), args.Error(1)
}

type LinkCopier struct {
	mock.Mock
}

func NewLinkCopier(t testingT) *LinkCopier {
	m := &LinkCopier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *LinkCopier) Copy(text string) error {
	return m.Called(text).Error(0)
}
