package controllers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
	"github.com/manivpc/manivpc-api/middleware"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/pricing"
	"github.com/manivpc/manivpc-api/statemachine"
)

// BuildSlots are the daily time slots a customer can book
var BuildSlots = []string{"08:00", "12:00", "16:00", "20:00"}

const (
	minScheduleDaysAhead = 1
	maxScheduleDaysAhead = 30
)

// currentProfile loads the authenticated user's profile, writing the error
// envelope on failure
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Could not extract user information"},
		})
		return nil, false
	}

	var profile models.Profile
	if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "PROFILE_NOT_FOUND", "message": "Profile not found. Call POST /portal/profile first."},
		})
		return nil, false
	}
	return &profile, true
}

// ownedOrder loads an order and verifies it belongs to the profile, either
// directly or through the originating offer's email
func ownedOrder(c *gin.Context, profile *models.Profile) (*models.Order, bool) {
	var order models.Order
	if err := config.GetDB().Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return nil, false
	}

	owned := (order.UserID != nil && *order.UserID == profile.ID) || order.Offer.Email == profile.Email
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "This order belongs to someone else"},
		})
		return nil, false
	}
	return &order, true
}

// effectivePreferences resolves offer-level preferences over the profile's
// global ones
func effectivePreferences(offer *models.Offer, profile *models.Profile) *models.PreferencesData {
	if offer.Preferences != nil {
		return offer.Preferences
	}
	return profile.Preferences
}

// ListMyOrders handles GET /api/v1/portal/orders - pending offers plus
// authenticated orders with resolved preferences
func ListMyOrders(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var offers []models.Offer
	if err := db.Where("email = ? AND status = ?", profile.Email, models.OfferStatusPending).
		Order("created_at DESC").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load offers"},
		})
		return
	}

	var orders []models.Order
	if err := db.Preload("Offer").
		Joins("JOIN offers ON offers.id = authenticated_orders.offer_id").
		Where("authenticated_orders.user_id = ? OR offers.email = ?", profile.ID, profile.Email).
		Order("authenticated_orders.created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load orders"},
		})
		return
	}

	type offerView struct {
		models.Offer
		EffectivePreferences *models.PreferencesData `json:"effective_preferences,omitempty"`
	}
	type orderView struct {
		models.Order
		EffectivePreferences *models.PreferencesData `json:"effective_preferences,omitempty"`
	}

	offerViews := make([]offerView, len(offers))
	for i, o := range offers {
		offerViews[i] = offerView{Offer: o, EffectivePreferences: effectivePreferences(&o, profile)}
	}
	orderViews := make([]orderView, len(orders))
	for i, o := range orders {
		offer := o.Offer
		orderViews[i] = orderView{Order: o, EffectivePreferences: effectivePreferences(&offer, profile)}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"pending_offers": offerViews,
			"orders":         orderViews,
		},
	})
}

// approveOfferTx turns a pending offer into an authenticated order. The
// peripherals sourcing fee lands on the service cost here, and the order
// starts at the first working status for its service type.
func approveOfferTx(tx *gorm.DB, offer *models.Offer, userID *uint) (*models.Order, error) {
	if offer.Status != models.OfferStatusPending {
		return nil, fmt.Errorf("offer %d is %s, only pending offers can be approved", offer.ID, offer.Status)
	}

	offer.ServiceCost += pricing.PeripheralsFee(offer.PeripheralsBudget)
	offer.Status = models.OfferStatusConfirmed
	if err := tx.Save(offer).Error; err != nil {
		return nil, err
	}

	order := models.Order{
		OfferID: offer.ID,
		UserID:  userID,
		Status:  statemachine.NextWorkStatus(offer.ServiceType),
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	order.Offer = *offer

	// Having an approved order makes the email's owner a customer
	if err := tx.Model(&models.Profile{}).
		Where("email = ? AND role <> ?", offer.Email, models.RoleAdmin).
		Update("role", models.RoleCustomer).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

// ApproveOffer handles POST /api/v1/portal/offers/:id/approve
func ApproveOffer(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var offer models.Offer
	if err := db.First(&offer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "OFFER_NOT_FOUND", "message": "Offer not found"},
		})
		return
	}
	if offer.Email != profile.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "This offer belongs to someone else"},
		})
		return
	}

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = approveOfferTx(tx, &offer, &profile.ID)
		return txErr
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
}

// RequestCancellation handles POST /api/v1/portal/orders/:id/cancel.
// Active orders enter cancellation_pending for admin review. Pending offers
// are cancelled through their own route, CancelPendingOffer.
func RequestCancellation(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var order models.Order
	err := db.Preload("Offer").First(&order, c.Param("id")).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load order"},
		})
		return
	}

	owned := (order.UserID != nil && *order.UserID == profile.ID) || order.Offer.Email == profile.Email
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "This order belongs to someone else"},
		})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusCancellationPending, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
		return
	}

	previous := order.Status
	order.PreviousStatus = &previous
	order.Status = models.StatusCancellationPending
	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to update order"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// CancelPendingOffer handles POST /api/v1/portal/offers/:id/cancel. A pending
// offer has no order behind it yet, so it is cancelled outright without the
// admin review step.
func CancelPendingOffer(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var offer models.Offer
	if err := db.First(&offer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "OFFER_NOT_FOUND", "message": "Offer not found"},
		})
		return
	}
	if offer.Email != profile.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "This offer belongs to someone else"},
		})
		return
	}
	if offer.Status != models.OfferStatusPending {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": "Only pending offers can be cancelled directly"},
		})
		return
	}

	now := time.Now()
	offer.Status = models.OfferStatusCancelled
	offer.CancelledAt = &now
	if err := db.Save(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to cancel offer"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": offer})
}

// ScheduleRequest represents the request body for proposing a build slot
type ScheduleRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Slot string `json:"slot" binding:"required"` // HH:MM
}

func (r *ScheduleRequest) buildTime() (time.Time, error) {
	return r.buildTimeAt(time.Now().In(time.Local))
}

func (r *ScheduleRequest) buildTimeAt(now time.Time) (time.Time, error) {
	validSlot := false
	for _, s := range BuildSlots {
		if s == r.Slot {
			validSlot = true
			break
		}
	}
	if !validSlot {
		return time.Time{}, fmt.Errorf("slot must be one of %v", BuildSlots)
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Slot, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", r.Date)
	}

	// Day boundaries are the customer's local midnights, not UTC ones
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	buildDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	daysAhead := int(math.Round(buildDay.Sub(today).Hours() / 24))
	if daysAhead < minScheduleDaysAhead || daysAhead > maxScheduleDaysAhead {
		return time.Time{}, fmt.Errorf("build date must be %d to %d days ahead", minScheduleDaysAhead, maxScheduleDaysAhead)
	}
	return t, nil
}

// ProposeSchedule handles POST /api/v1/portal/orders/:id/schedule
func ProposeSchedule(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	order, ok := ownedOrder(c, profile)
	if !ok {
		return
	}

	var req ScheduleRequest
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

	buildTime, err := req.buildTime()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": err.Error()},
		})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusSchedulePendingApproval, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
		return
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if pricing.IsWeekendSlot(buildTime) && !order.WeekendFeeApplied {
			order.Offer.ServiceCost += pricing.WeekendFee
			order.WeekendFeeApplied = true
			if err := tx.Save(&order.Offer).Error; err != nil {
				return err
			}
		}

		order.BuildDate = &buildTime
		order.Status = models.StatusSchedulePendingApproval
		order.ProposedBy = "customer"
		return tx.Save(order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save schedule"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// PaymentMethodRequest represents the request body for choosing a payment method
type PaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// SetPaymentMethod handles PUT /api/v1/portal/orders/:id/payment-method
func SetPaymentMethod(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	order, ok := ownedOrder(c, profile)
	if !ok {
		return
	}

	var req PaymentMethodRequest
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

	switch req.Method {
	case models.PaymentMethodBit, models.PaymentMethodPaybox, models.PaymentMethodCash:
	case models.PaymentMethodLater:
		if order.Offer.DeliveryType != models.DeliveryBuildAtHome {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Paying on site is only available for home builds"},
			})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Unknown payment method"},
		})
		return
	}

	order.PaymentMethod = &req.Method
	if err := config.GetDB().Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save payment method"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// TermsRequest represents the request body for accepting the service terms
type TermsRequest struct {
	Agreed bool `json:"agreed"`
}

// AcceptTerms handles PUT /api/v1/portal/orders/:id/terms
func AcceptTerms(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	order, ok := ownedOrder(c, profile)
	if !ok {
		return
	}

	var req TermsRequest
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
	if !req.Agreed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Terms must be accepted to continue"},
		})
		return
	}

	order.AgreeToTerms = true
	if err := config.GetDB().Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save terms"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// ConfirmPaymentRequest represents the request body for reporting a payment
type ConfirmPaymentRequest struct {
	Method        string  `json:"method" binding:"required"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// ConfirmPayment handles POST /api/v1/portal/orders/:id/payments/confirm.
// During pending_consultation_payment it takes the 20% consultation share
// and moves the order on; otherwise it tops the paid amount up to the full
// service cost.
func ConfirmPayment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	order, ok := ownedOrder(c, profile)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
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

	switch req.Method {
	case models.PaymentMethodBit, models.PaymentMethodPaybox, models.PaymentMethodCash, models.PaymentMethodLater:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Unknown payment method"},
		})
		return
	}

	txnID := req.TransactionID
	if req.Method == models.PaymentMethodCash {
		ref := fmt.Sprintf("CASH-%d", time.Now().Unix())
		txnID = &ref
	}

	db := config.GetDB()

	if order.Status == models.StatusPendingConsultationPayment {
		// The consultation only starts once its share is actually paid
		if req.Method == models.PaymentMethodLater {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "VALIDATION_ERROR", "message": "The consultation payment cannot be deferred"},
			})
			return
		}

		amount := pricing.ConsultationPayment(order.Offer.ServiceCost)
		order.PaidAmount += amount
		order.PaymentMethod = &req.Method
		order.TransactionID = txnID
		order.Status = models.StatusPendingPartsUpload

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(order).Error; err != nil {
				return err
			}
			return tx.Create(&models.Payment{
				OrderID:       order.ID,
				Amount:        amount,
				Method:        req.Method,
				TransactionID: txnID,
			}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to record payment"},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
		return
	}

	if order.PaidAmount >= order.Offer.ServiceCost {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "ALREADY_PAID", "message": "This order is fully paid"},
		})
		return
	}

	// Pay-on-site defers collection to the home build itself; the admin
	// records the cash at delivery
	if req.Method == models.PaymentMethodLater {
		if order.Offer.DeliveryType != models.DeliveryBuildAtHome {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Paying on site is only available for home builds"},
			})
			return
		}

		order.PaymentMethod = &req.Method
		if err := db.Save(order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to record payment method"},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
		return
	}

	amount := order.Offer.ServiceCost - order.PaidAmount
	order.PaidAmount = order.Offer.ServiceCost
	order.PaymentMethod = &req.Method
	order.TransactionID = txnID

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.Payment{
			OrderID:       order.ID,
			Amount:        amount,
			Method:        req.Method,
			TransactionID: txnID,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to record payment"},
		})
		return
	}

	logger.L().Sugar().Infow("payment recorded", "order_id", order.ID, "amount", order.PaidAmount, "method", req.Method)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}
