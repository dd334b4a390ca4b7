package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buinguyet/kobizo-code-challenge/internal/models"
	"github.com/buinguyet/kobizo-code-challenge/internal/supabase"
)

const principalKey = "principal"

// TokenVerifier resolves an opaque bearer token through the hosted auth
// service. Tokens are never decoded locally.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (*supabase.User, error)
}

func Authentication(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		user, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		SetPrincipal(c, &models.Principal{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role(),
		})

		c.Next()
	}
}

// RequireRoles gates a route to the given roles. Declaring no roles makes
// it a no-op; it assumes Authentication already ran.
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(requiredRoles) == 0 {
			c.Next()
			return
		}

		principal := PrincipalFromContext(c)
		if principal == nil || principal.Role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "missing_role",
				"message": "User role not found",
			})
			return
		}

		hasRole := false
		for _, requiredRole := range requiredRoles {
			if principal.Role == requiredRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "insufficient_role",
				"message": "User role does not have access to this resource",
			})
			return
		}

		c.Next()
	}
}

// SetPrincipal attaches the authenticated caller to the request context.
func SetPrincipal(c *gin.Context, principal *models.Principal) {
	c.Set(principalKey, principal)
	c.Set("user_id", principal.ID)
	c.Set("user_role", principal.Role)
}

// PrincipalFromContext returns the authenticated caller, or nil when the
// request never passed Authentication.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
