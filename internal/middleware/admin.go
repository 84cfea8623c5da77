package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/teampulse/backend/pkg/response"
	"github.com/teampulse/backend/pkg/utils"
)

// AdminKeyHeader carries the super-admin API key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKey returns a middleware that admits only requests carrying the
// super-admin key matching the configured bcrypt hash. An empty hash
// disables the admin surface entirely.
func AdminKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if keyHash == "" || key == "" || !utils.CheckSecret(key, keyHash) {
			response.Forbidden(c, "admin key required")
			c.Abort()
			return
		}
		c.Set(ContextIsAdmin, true)
		c.Next()
	}
}

// IsAdmin reports whether the request was authorized with the admin key,
// either by the AdminKey middleware or the optional check below.
func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(ContextIsAdmin)
	ok, _ := v.(bool)
	return ok
}

// OptionalAdminKey marks the request as admin when a valid key is present
// but never rejects. Used on routes where the admin key widens access
// (e.g. listing all workspaces) without being required.
func OptionalAdminKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if keyHash != "" && key != "" && utils.CheckSecret(key, keyHash) {
			c.Set(ContextIsAdmin, true)
		}
		c.Next()
	}
}
