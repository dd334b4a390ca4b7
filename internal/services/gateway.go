package services

import (
	"context"

	"github.com/buinguyet/kobizo-code-challenge/internal/supabase"
)

// AuthGateway is the slice of the hosted service the auth flows call:
// delegated sign-up/sign-in/refresh plus the profile lookup used by the
// registration duplicate pre-check.
type AuthGateway interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) error
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	SelectSingle(ctx context.Context, table string, q supabase.Query, dest interface{}) (bool, error)
}

// TaskStore is the generic table access the task flows need.
type TaskStore interface {
	Select(ctx context.Context, table string, q supabase.Query, dest interface{}) error
	SelectSingle(ctx context.Context, table string, q supabase.Query, dest interface{}) (bool, error)
	Insert(ctx context.Context, table string, record, dest interface{}) error
	Update(ctx context.Context, table string, q supabase.Query, patch interface{}) error
	Delete(ctx context.Context, table string, q supabase.Query) error
}
