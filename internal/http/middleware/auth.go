package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	OrgIDHeader  = "X-Organization-Id"
	OrgIDKey     = "organization_id"
	UserIDHeader = "X-User-Id"
	UserIDKey    = "user_id"
)

// OrgScope requires the tenant identity headers set by the auth gateway
// in front of this service. Every /api route is scoped to one
// organization; the user id attributes analysis runs.
func OrgScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(OrgIDHeader)
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing organization scope",
				},
			})
			return
		}
		c.Set(OrgIDKey, orgID)
		c.Set(UserIDKey, c.GetHeader(UserIDHeader))
		c.Next()
	}
}

func AdminKey(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required == "" {
			c.Next()
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid admin key",
				},
			})
			return
		}
		c.Next()
	}
}
