package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"blogapi/common"
	"blogapi/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userId"
	ContextUserRole = "userRole"
)

// Authenticator resolves a bearer token to the current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func JWTAuth(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight carries no credentials
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		user, err := auth.Authenticate(ctx, parts[1])
		if err != nil {
			code := common.HTTPStatusFromError(err)
			if code == http.StatusInternalServerError {
				log.Printf("[JWTAuth] request %s: %v", c.GetString(ContextRequestID), err)
				c.AbortWithStatusJSON(code, gin.H{"message": "Server Error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		c.Set(ContextUserID, user.ID.Hex())
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsAdmin(c.GetString(ContextUserRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Admin access required",
			})
			return
		}
		c.Next()
	}
}
