package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teampulse/backend/internal/auth"
	"github.com/teampulse/backend/pkg/response"
)

const (
	// ContextUserEmail is the key for the verified email in gin context.
	ContextUserEmail = "user_email"
	// ContextUserName is the key for the verified display name in gin context.
	ContextUserName = "user_name"
	// ContextIsAdmin marks requests authorized with the super-admin key.
	ContextIsAdmin = "is_admin"
)

// JWT returns a middleware that validates the session JWT and sets the
// verified identity in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserName, claims.Name)
		c.Next()
	}
}

// UserEmail returns the verified email set by the JWT middleware.
func UserEmail(c *gin.Context) string {
	v, _ := c.Get(ContextUserEmail)
	email, _ := v.(string)
	return email
}

// UserName returns the verified display name set by the JWT middleware.
func UserName(c *gin.Context) string {
	v, _ := c.Get(ContextUserName)
	name, _ := v.(string)
	return name
}
