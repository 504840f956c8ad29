package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/models"
)

// RequireRole checks the stored profile role of the authenticated user.
// Roles live in the database, written whenever offers are created or
// linked, so the token itself never carries them.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_USER_ID",
					"message": "Could not identify the authenticated user",
				},
			})
			c.Abort()
			return
		}

		var profile models.Profile
		if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&profile).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_NOT_FOUND",
					"message": "No profile exists for this user",
				},
			})
			c.Abort()
			return
		}

		if !allowed[profile.Role] {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_ROLE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			c.Abort()
			return
		}

		c.Set("profile_id", profile.ID)
		c.Set("profile_role", profile.Role)
		c.Next()
	}
}

// GetProfileID returns the database ID of the authenticated profile,
// populated by RequireRole
func GetProfileID(c *gin.Context) (uint, error) {
	id, exists := c.Get("profile_id")
	if !exists {
		return 0, &AuthError{Code: "MISSING_PROFILE", Message: "Profile ID not found in context"}
	}

	profileID, ok := id.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_PROFILE", Message: "Profile ID is not a uint"}
	}

	return profileID, nil
}
