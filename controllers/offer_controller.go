package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/pricing"
	"github.com/manivpc/manivpc-api/services"
	"github.com/manivpc/manivpc-api/utils"
)

// CreateOfferRequest represents the request body for submitting a quote request
type CreateOfferRequest struct {
	FullName          string                  `json:"full_name" binding:"required"`
	Email             string                  `json:"email" binding:"required"`
	Phone             string                  `json:"phone" binding:"required"`
	Budget            float64                 `json:"budget" binding:"required"`
	ServiceType       models.ServiceType      `json:"service_type" binding:"required"`
	OperatingSystem   string                  `json:"operating_system"`
	UseTypes          []string                `json:"use_types"`
	GameResolution    *string                 `json:"game_resolution,omitempty"`
	VideoSoftware     *string                 `json:"video_software,omitempty"`
	DeliveryType      models.DeliveryType     `json:"delivery_type"`
	Address           *string                 `json:"address,omitempty"`
	City              *string                 `json:"city,omitempty"`
	PeripheralsBudget float64                 `json:"peripherals_budget"`
	Preferences       *models.PreferencesData `json:"preferences,omitempty"`
	ReferralCode      *string                 `json:"referral_code,omitempty"`
	IdempotencyKey    *string                 `json:"idempotency_key,omitempty"`
}

func (r *CreateOfferRequest) validate() (code, message string, ok bool) {
	if !utils.IsValidEmail(r.Email) {
		return "VALIDATION_ERROR", "Invalid email address", false
	}
	if !utils.IsValidPhone(r.Phone) {
		return "VALIDATION_ERROR", "Invalid phone number", false
	}
	if r.Budget <= 0 {
		return "VALIDATION_ERROR", "Budget must be positive", false
	}
	switch r.ServiceType {
	case models.ServiceConsultationOnly, models.ServiceBuildOnly, models.ServiceConsultationAndBuild:
	default:
		return "VALIDATION_ERROR", "Unknown service type", false
	}
	switch r.DeliveryType {
	case "", models.DeliveryPickup, models.DeliveryBuildAtHome, models.DeliveryShipping:
	default:
		return "VALIDATION_ERROR", "Unknown delivery type", false
	}
	return "", "", true
}

// effectiveDelivery forces pickup for consultation-only offers, which never
// involve moving hardware
func (r *CreateOfferRequest) effectiveDelivery() models.DeliveryType {
	if r.ServiceType == models.ServiceConsultationOnly || r.DeliveryType == "" {
		return models.DeliveryPickup
	}
	return r.DeliveryType
}

// resolveCoordinates geocodes a home-build address. Failures are logged and
// leave the coordinates empty so pricing falls back to the minimum fee.
func resolveCoordinates(c *gin.Context, req *CreateOfferRequest) (lat, lon *float64) {
	if req.effectiveDelivery() != models.DeliveryBuildAtHome || req.Address == nil || req.City == nil {
		return nil, nil
	}

	coords, err := services.GetLocationService().Geocode(c.Request.Context(), *req.Address, *req.City)
	if err != nil {
		logger.L().Sugar().Warnw("geocoding failed, charging minimum travel fee", "error", err)
		return nil, nil
	}
	return &coords.Latitude, &coords.Longitude
}

// findReferral returns the unused referral matching the exact triple of
// code, customer email and trimmed customer name
func findReferral(db *gorm.DB, code, email, name string) (*models.Referral, error) {
	var referral models.Referral
	err := db.Where("code = ? AND used = ?", utils.NormalizeReferralCode(code), false).First(&referral).Error
	if err != nil {
		return nil, err
	}

	if utils.NormalizeEmail(referral.NewCustomerEmail) != utils.NormalizeEmail(email) {
		return nil, gorm.ErrRecordNotFound
	}
	if strings.TrimSpace(referral.NewCustomerName) != strings.TrimSpace(name) {
		return nil, gorm.ErrRecordNotFound
	}
	return &referral, nil
}

// consumeReferral flips the referral to used with a conditional update, so
// two offers racing on the same code cannot both take the discount
func consumeReferral(tx *gorm.DB, referral *models.Referral) error {
	now := time.Now()
	res := tx.Model(&models.Referral{}).
		Where("id = ? AND used = ?", referral.ID, false).
		Updates(map[string]interface{}{"used": true, "used_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("referral code %s already used", referral.Code)
	}
	return nil
}

// CreateOffer handles POST /api/v1/offers - public quote submission
func CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
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

	if code, message, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": code, "message": message},
		})
		return
	}

	db := config.GetDB()

	// A replayed submission returns the stored offer instead of a duplicate
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		var existing models.Offer
		if err := db.Where("idempotency_key = ?", *req.IdempotencyKey).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": existing})
			return
		}
	}

	var referral *models.Referral
	discount := 0
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		found, err := findReferral(db, *req.ReferralCode, req.Email, req.FullName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REFERRAL",
					"message": "Referral code is invalid, used, or issued to someone else",
				},
			})
			return
		}
		referral = found
		discount = found.DiscountPercentage
	}

	lat, lon := resolveCoordinates(c, &req)
	delivery := req.effectiveDelivery()
	cost := pricing.ServiceCost(req.Budget, req.ServiceType, delivery, lat, lon, discount)

	offer := models.Offer{
		FullName:          strings.TrimSpace(req.FullName),
		Email:             utils.NormalizeEmail(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		Budget:            req.Budget,
		ServiceCost:       cost,
		ServiceType:       req.ServiceType,
		OperatingSystem:   req.OperatingSystem,
		UseTypes:          req.UseTypes,
		GameResolution:    req.GameResolution,
		VideoSoftware:     req.VideoSoftware,
		DeliveryType:      delivery,
		Address:           req.Address,
		City:              req.City,
		Latitude:          lat,
		Longitude:         lon,
		Status:            models.OfferStatusPending,
		Preferences:       req.Preferences,
		PeripheralsBudget: req.PeripheralsBudget,
		IdempotencyKey:    req.IdempotencyKey,
	}
	if referral != nil {
		code := referral.Code
		offer.ReferralCode = &code
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if referral != nil {
			if err := consumeReferral(tx, referral); err != nil {
				return err
			}
		}
		if err := tx.Create(&offer).Error; err != nil {
			return err
		}

		// Anyone with an offer on file is a customer from now on
		return tx.Model(&models.Profile{}).
			Where("email = ? AND role <> ?", offer.Email, models.RoleAdmin).
			Update("role", models.RoleCustomer).Error
	})
	if err != nil {
		// A racing replay may have inserted the same idempotency key first
		if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
			var existing models.Offer
			if lookupErr := db.Where("idempotency_key = ?", *req.IdempotencyKey).First(&existing).Error; lookupErr == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "data": existing})
				return
			}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   gin.H{"code": "DUPLICATE_OFFER", "message": "This offer was already submitted"},
			})
			return
		}

		logger.L().Sugar().Errorw("offer creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to create offer"},
		})
		return
	}

	sendOfferEmail(c, &offer)

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": offer})
}

// sendOfferEmail notifies the customer of the quoted price. Mail failure
// never fails the submission.
func sendOfferEmail(c *gin.Context, offer *models.Offer) {
	cfg := config.GetConfig()
	err := services.GetEmailService().Send(c.Request.Context(), cfg.EmailOfferTemplateID, map[string]string{
		"to_email":     offer.Email,
		"to_name":      offer.FullName,
		"service_type": string(offer.ServiceType),
		"cost":         fmt.Sprintf("%d", offer.ServiceCost),
		"portal_url":   cfg.SiteBaseURL + "/portal",
	})
	if err != nil {
		logger.L().Sugar().Errorw("offer confirmation email failed", "offer_id", offer.ID, "error", err)
	}
}

// PreviewOffer handles POST /api/v1/offers/preview - cost preview without persisting
func PreviewOffer(c *gin.Context) {
	var req CreateOfferRequest
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

	switch req.ServiceType {
	case models.ServiceConsultationOnly, models.ServiceBuildOnly, models.ServiceConsultationAndBuild:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Unknown service type"},
		})
		return
	}

	discount := 0
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		if found, err := findReferral(config.GetDB(), *req.ReferralCode, req.Email, req.FullName); err == nil {
			discount = found.DiscountPercentage
		}
	}

	lat, lon := resolveCoordinates(c, &req)
	delivery := req.effectiveDelivery()

	base := pricing.ServiceCost(req.Budget, req.ServiceType, models.DeliveryPickup, nil, nil, 0)
	total := pricing.ServiceCost(req.Budget, req.ServiceType, delivery, lat, lon, discount)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"base_cost":           base,
			"location_cost":       pricing.ServiceCost(req.Budget, req.ServiceType, delivery, lat, lon, 0) - base,
			"discount_percentage": discount,
			"total":               total,
		},
	})
}

// ValidateReferralRequest represents the request body for checking a referral code
type ValidateReferralRequest struct {
	Code     string `json:"code" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// ValidateReferral handles POST /api/v1/referrals/validate
func ValidateReferral(c *gin.Context) {
	var req ValidateReferralRequest
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

	referral, err := findReferral(config.GetDB(), req.Code, req.Email, req.FullName)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"valid": false, "discount_percentage": 0},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"valid": true, "discount_percentage": referral.DiscountPercentage},
	})
}
