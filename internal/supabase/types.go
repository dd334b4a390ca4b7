package supabase

import "fmt"

// Session mirrors the token payload returned by the hosted auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// Role returns the role carried in the user metadata, or "" when absent.
func (u *User) Role() string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	role, _ := u.UserMetadata["role"].(string)
	return role
}

// APIError is a non-2xx response from the hosted service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %d %s", e.Status, e.Message)
}
