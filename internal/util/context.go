package util

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by the request ID and auth middleware
const (
	ContextRequestID = "request_id"
	ContextUserID    = "user_id"
	ContextUsername  = "username"
)

// GetUserIDFromContext extracts the user ID from the Gin context.
// Returns the user ID and true if found, or empty string and false if not authenticated.
// If the user is not authenticated, it automatically responds with 401 Unauthorized.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		RespondUnauthorized(c)
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		RespondInternalError(c, "invalid user ID in context")
		return "", false
	}
	return userIDStr, true
}

// GetUsernameFromContext returns the caller's display name, falling back to the user ID
func GetUsernameFromContext(c *gin.Context) string {
	if name := c.GetString(ContextUsername); name != "" {
		return name
	}
	return c.GetString(ContextUserID)
}
