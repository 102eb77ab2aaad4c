package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/models"
)

// IdentityMiddleware resolves the caller's identity from the gateway headers.
// The API gateway terminates authentication upstream and forwards the verified
// identity as X-User-ID and X-User-Role.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idHeader := c.GetHeader("X-User-ID")
		if idHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing identity header",
			})
			return
		}

		userID, err := strconv.ParseUint(idHeader, 10, 32)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid identity header",
			})
			return
		}

		role := models.UserRole(c.GetHeader("X-User-Role"))
		if role == "" {
			role = models.RoleStudent
		}

		c.Set("user_id", uint(userID))
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireRole rejects requests whose resolved role is not in the allowed set.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		role := value.(models.UserRole)
		for _, allowed := range roles {
			if role == allowed || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden - insufficient permissions",
		})
	}
}
