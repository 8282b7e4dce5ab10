package middleware

import (
	"strings"

	"github.com/crowdfund-api/internal/models"
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the key for the authenticated user in gin context
	ContextKeyUser = "user"
)

// AuthMiddleware creates a JWT authentication middleware. Failures are left
// on the context for ErrorHandler to render.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperror.Authentication("Authentication credentials were not provided."))
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			abortWith(c, apperror.Authentication("Authorization header must contain a bearer token"))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			abortWith(c, err)
			return
		}

		// Set user info in context
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)

		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// GetUserID gets the user ID from the gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	return userID.(uint)
}

// CurrentUser gets the authenticated user from the gin context
func CurrentUser(c *gin.Context) *models.User {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	return user.(*models.User)
}
