package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/buinguyet/kobizo-code-challenge/internal/services"
	"github.com/buinguyet/kobizo-code-challenge/internal/supabase"
)

type mockAuthGateway struct {
	signUpErr    error
	signUpCalls  int
	signUpEmail  string
	signUpMeta   map[string]interface{}
	signInResult *supabase.Session
	signInErr    error
	refreshBody  *supabase.Session
	refreshErr   error
	lookupFound  bool
	lookupErr    error
	lookupQuery  supabase.Query
}

func (m *mockAuthGateway) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) error {
	m.signUpCalls++
	m.signUpEmail = email
	m.signUpMeta = metadata
	return m.signUpErr
}

func (m *mockAuthGateway) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.signInResult, nil
}

func (m *mockAuthGateway) RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.refreshBody, nil
}

func (m *mockAuthGateway) SelectSingle(ctx context.Context, table string, q supabase.Query, dest interface{}) (bool, error) {
	m.lookupQuery = q
	return m.lookupFound, m.lookupErr
}

type AuthServiceTestSuite struct {
	suite.Suite
	gateway *mockAuthGateway
	service services.AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.gateway = &mockAuthGateway{}
	suite.service = services.NewAuthService(suite.gateway)
}

func (suite *AuthServiceTestSuite) TestRegisterSuccess() {
	err := suite.service.Register(context.Background(), "Alice@Example.com", "Secret1!")
	suite.NoError(err)
	suite.Equal(1, suite.gateway.signUpCalls)
	suite.Equal("alice@example.com", suite.gateway.signUpEmail, "email must be lowercased before sign-up")
	suite.Equal("user", suite.gateway.signUpMeta["role"])
	suite.Equal("alice@example.com", suite.gateway.lookupQuery.Filters["email"])
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	suite.gateway.lookupFound = true

	err := suite.service.Register(context.Background(), "alice@example.com", "Secret1!")
	suite.ErrorIs(err, services.ErrEmailInUse)
	suite.Equal(0, suite.gateway.signUpCalls, "sign-up must not run for a duplicate email")
}

func (suite *AuthServiceTestSuite) TestRegisterLookupFailureIsNotConflict() {
	suite.gateway.lookupErr = errors.New("connection refused")

	err := suite.service.Register(context.Background(), "alice@example.com", "Secret1!")
	suite.Error(err)
	suite.NotErrorIs(err, services.ErrEmailInUse, "a transport fault must not look like a duplicate")
	suite.Equal(0, suite.gateway.signUpCalls)
}

func (suite *AuthServiceTestSuite) TestRegisterSignUpFailure() {
	suite.gateway.signUpErr = errors.New("upstream exploded")

	err := suite.service.Register(context.Background(), "alice@example.com", "Secret1!")
	suite.Error(err)
	suite.NotErrorIs(err, services.ErrEmailInUse)
}

func (suite *AuthServiceTestSuite) TestLoginSuccess() {
	suite.gateway.signInResult = &supabase.Session{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		User: &supabase.User{
			ID:           "u-1",
			Email:        "alice@example.com",
			UserMetadata: map[string]interface{}{"role": "admin"},
		},
	}

	result, err := suite.service.Login(context.Background(), "alice@example.com", "Secret1!")
	suite.NoError(err)
	suite.Equal("access-123", result.AccessToken)
	suite.Equal("refresh-456", result.RefreshToken)
	suite.Equal("u-1", result.ID)
	suite.Equal("admin", result.Role)
}

func (suite *AuthServiceTestSuite) TestLoginRoleDefaultsToUser() {
	suite.gateway.signInResult = &supabase.Session{
		AccessToken: "access-123",
		User:        &supabase.User{ID: "u-1", Email: "alice@example.com"},
	}

	result, err := suite.service.Login(context.Background(), "alice@example.com", "Secret1!")
	suite.NoError(err)
	suite.Equal("user", result.Role)
}

func (suite *AuthServiceTestSuite) TestLoginFailureIsUniform() {
	suite.gateway.signInErr = &supabase.APIError{Status: 400, Message: "Invalid login credentials"}

	_, err := suite.service.Login(context.Background(), "nobody@example.com", "wrong")
	suite.ErrorIs(err, services.ErrInvalidCredentials)

	suite.gateway.signInErr = errors.New("connection refused")
	_, err = suite.service.Login(context.Background(), "alice@example.com", "Secret1!")
	suite.ErrorIs(err, services.ErrInvalidCredentials, "all delegate failures map to the same error")
}

func (suite *AuthServiceTestSuite) TestExchangeToken() {
	suite.gateway.refreshBody = &supabase.Session{AccessToken: "new-access", RefreshToken: "new-refresh"}

	pair, err := suite.service.ExchangeToken(context.Background(), "old-refresh")
	suite.NoError(err)
	suite.Equal("new-access", pair.AccessToken)
	suite.Equal("new-refresh", pair.RefreshToken)
}

func (suite *AuthServiceTestSuite) TestExchangeTokenRejected() {
	suite.gateway.refreshErr = &supabase.APIError{Status: 400, Message: "refresh token not found"}

	_, err := suite.service.ExchangeToken(context.Background(), "stale")
	suite.ErrorIs(err, services.ErrInvalidRefreshToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
