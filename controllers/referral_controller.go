package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/utils"
)

// MaxReferralsPerCustomer caps how many codes one customer can hand out
const MaxReferralsPerCustomer = 2

// referralEligible reports whether the profile has an order far enough
// along to vouch for someone: a build in progress or done, or a finished
// consultation-only engagement.
func referralEligible(profile *models.Profile) bool {
	db := config.GetDB()

	var count int64
	db.Model(&models.Order{}).
		Joins("JOIN offers ON offers.id = authenticated_orders.offer_id").
		Where("(authenticated_orders.user_id = ? OR offers.email = ?)", profile.ID, profile.Email).
		Where("authenticated_orders.status IN ?", []models.OrderStatus{
			models.StatusBuilding, models.StatusReady, models.StatusDelivered,
		}).
		Count(&count)
	return count > 0
}

// ListMyReferrals handles GET /api/v1/portal/referrals
func ListMyReferrals(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var referrals []models.Referral
	if err := config.GetDB().Where("referrer_id = ?", profile.ID).
		Order("created_at DESC").Find(&referrals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load referrals"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": referrals})
}

// CreateReferralRequest represents the request body for issuing a referral code
type CreateReferralRequest struct {
	NewCustomerName  string `json:"new_customer_name" binding:"required"`
	NewCustomerEmail string `json:"new_customer_email" binding:"required"`
}

// CreateReferral handles POST /api/v1/portal/referrals
func CreateReferral(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req CreateReferralRequest
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

	if !utils.IsValidEmail(req.NewCustomerEmail) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Invalid email address"},
		})
		return
	}

	email := utils.NormalizeEmail(req.NewCustomerEmail)
	if email == profile.Email {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "SELF_REFERRAL", "message": "You cannot refer yourself"},
		})
		return
	}

	if !referralEligible(profile) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_ELIGIBLE", "message": "Referrals unlock once your build is underway"},
		})
		return
	}

	db := config.GetDB()

	var count int64
	db.Model(&models.Referral{}).Where("referrer_id = ?", profile.ID).Count(&count)
	if count >= MaxReferralsPerCustomer {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "REFERRAL_LIMIT", "message": "Referral limit reached"},
		})
		return
	}

	referral := models.Referral{
		ReferrerID:         profile.ID,
		Code:               utils.GenerateReferralCode(),
		NewCustomerName:    strings.TrimSpace(req.NewCustomerName),
		NewCustomerEmail:   email,
		DiscountPercentage: 20,
	}
	if err := db.Create(&referral).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to create referral"},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": referral})
}
