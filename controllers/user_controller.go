package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
	"github.com/manivpc/manivpc-api/middleware"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/services"
	"github.com/manivpc/manivpc-api/utils"
)

// computeRole decides the stored role for a profile. Admins keep their
// role; everyone else is a customer exactly when offers exist for their
// email.
func computeRole(db *gorm.DB, currentRole, email string) string {
	if currentRole == models.RoleAdmin {
		return models.RoleAdmin
	}

	var count int64
	db.Model(&models.Offer{}).Where("email = ?", utils.NormalizeEmail(email)).Count(&count)
	if count > 0 {
		return models.RoleCustomer
	}
	return models.RoleNotRelated
}

// linkOrders attaches unowned orders whose originating offer carries the
// profile's email
func linkOrders(db *gorm.DB, profile *models.Profile) error {
	return db.Model(&models.Order{}).
		Where("user_id IS NULL AND offer_id IN (?)",
			db.Model(&models.Offer{}).Select("id").Where("email = ?", profile.Email)).
		Update("user_id", profile.ID).Error
}

// BootstrapProfile handles POST /api/v1/portal/profile - create or refresh
// the profile of the authenticated user from the identity provider
func BootstrapProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Could not extract user information"},
		})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Could not extract access token"},
		})
		return
	}

	userInfo, err := services.GetAuth0Service().GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		logger.L().Sugar().Errorw("userinfo fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   gin.H{"code": "AUTH_UPSTREAM_ERROR", "message": "Could not fetch user information"},
		})
		return
	}

	db := config.GetDB()

	var profile models.Profile
	err = db.Where("auth0_id = ?", auth0ID).First(&profile).Error
	switch {
	case err == nil:
		profile.FullName = userInfo.Name
		profile.Email = utils.NormalizeEmail(userInfo.Email)
	case err == gorm.ErrRecordNotFound:
		profile = models.Profile{
			Auth0ID:  auth0ID,
			FullName: userInfo.Name,
			Email:    utils.NormalizeEmail(userInfo.Email),
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load profile"},
		})
		return
	}

	profile.Role = computeRole(db, profile.Role, profile.Email)

	if err := db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save profile"},
		})
		return
	}

	if err := linkOrders(db, &profile); err != nil {
		logger.L().Sugar().Errorw("order linking failed", "profile_id", profile.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// GetProfile handles GET /api/v1/portal/profile
func GetProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Could not extract user information"},
		})
		return
	}

	var profile models.Profile
	if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "PROFILE_NOT_FOUND", "message": "Profile not found. Call POST /portal/profile first."},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// UpdatePreferencesRequest represents the request body for saving global preferences
type UpdatePreferencesRequest struct {
	Preferences       *models.PreferencesData `json:"preferences" binding:"required"`
	PeripheralsBudget *float64                `json:"peripherals_budget,omitempty"`
	Phone             *string                 `json:"phone,omitempty"`
}

// UpdatePreferences handles PUT /api/v1/portal/profile/preferences
func UpdatePreferences(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Could not extract user information"},
		})
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Phone != nil && !utils.IsValidPhone(*req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Invalid phone number"},
		})
		return
	}

	db := config.GetDB()
	var profile models.Profile
	if err := db.Where("auth0_id = ?", auth0ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "PROFILE_NOT_FOUND", "message": "Profile not found"},
		})
		return
	}

	profile.Preferences = req.Preferences
	if req.PeripheralsBudget != nil {
		profile.PeripheralsBudget = *req.PeripheralsBudget
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}

	if err := db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save preferences"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}
