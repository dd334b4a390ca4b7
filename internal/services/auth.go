package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/buinguyet/kobizo-code-challenge/internal/models"
	"github.com/buinguyet/kobizo-code-challenge/internal/supabase"
)

const profilesTable = "profiles"

type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ExchangeToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type AuthServiceImpl struct {
	gateway AuthGateway
}

func NewAuthService(gateway AuthGateway) *AuthServiceImpl {
	return &AuthServiceImpl{gateway: gateway}
}

// Register pre-checks email uniqueness against the profiles table, then
// delegates sign-up with the default user role attached as metadata. A
// lookup transport failure is surfaced as an internal error rather than a
// conflict, so a flaky delegate cannot masquerade as a duplicate email.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	found, err := s.gateway.SelectSingle(ctx, profilesTable, supabase.Query{
		Columns: "id,email",
		Filters: map[string]string{"email": email},
	}, &existing)
	if err != nil {
		log.Printf("register: profile lookup failed: %v", err)
		return fmt.Errorf("checking existing profile: %w", err)
	}
	if found {
		return ErrEmailInUse
	}

	metadata := map[string]interface{}{"role": models.RoleUser}
	if err := s.gateway.SignUp(ctx, email, password, metadata); err != nil {
		log.Printf("register: sign-up failed for %s: %v", email, err)
		return fmt.Errorf("signing up user: %w", err)
	}
	return nil
}

// Login surfaces every delegate failure as the same invalid-credentials
// error; callers cannot tell an unknown email from a wrong password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	session, err := s.gateway.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Printf("login: sign-in rejected: %v", err)
		return nil, ErrInvalidCredentials
	}

	result := &LoginResult{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Role:         models.RoleUser,
	}
	if session.User != nil {
		result.ID = session.User.ID
		result.Email = session.User.Email
		if role := session.User.Role(); role != "" {
			result.Role = role
		}
	}
	return result, nil
}

func (s *AuthServiceImpl) ExchangeToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.gateway.RefreshSession(ctx, refreshToken)
	if err != nil {
		log.Printf("exchange-token: refresh rejected: %v", err)
		return nil, ErrInvalidRefreshToken
	}
	return &TokenPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}
