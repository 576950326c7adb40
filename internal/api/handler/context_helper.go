package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/pkg/response"
)

// MustGetUserID extracts user_id from the Gin context.
// If the JWT middleware did not inject it, writes a 401 response and
// returns false; callers should return immediately on ok=false.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetRole extracts role from the Gin context.
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// callerIdentity resolves the caller's id and admin flag in one go.
func callerIdentity(c *gin.Context) (userID string, isAdmin bool, ok bool) {
	userID, ok = MustGetUserID(c)
	if !ok {
		return "", false, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", false, false
	}
	return userID, role == model.RoleAdmin, true
}
