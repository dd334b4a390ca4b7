package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller's identity, resolved per request
// from a bearer token by the external auth service. It is never persisted.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
