package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/partslist"
	"github.com/manivpc/manivpc-api/pricing"
	"github.com/manivpc/manivpc-api/services"
	"github.com/manivpc/manivpc-api/statemachine"
	"github.com/manivpc/manivpc-api/utils"
)

// AdminListOrders handles GET /api/v1/admin/orders - pending offers merged
// with authenticated orders, filterable by email, name, service type and
// status
func AdminListOrders(c *gin.Context) {
	db := config.GetDB()

	offerQuery := db.Model(&models.Offer{}).Where("status = ?", models.OfferStatusPending)
	orderQuery := db.Preload("Offer").
		Joins("JOIN offers ON offers.id = authenticated_orders.offer_id")

	if email := c.Query("email"); email != "" {
		offerQuery = offerQuery.Where("email LIKE ?", "%"+utils.NormalizeEmail(email)+"%")
		orderQuery = orderQuery.Where("offers.email LIKE ?", "%"+utils.NormalizeEmail(email)+"%")
	}
	if name := c.Query("name"); name != "" {
		offerQuery = offerQuery.Where("full_name LIKE ?", "%"+name+"%")
		orderQuery = orderQuery.Where("offers.full_name LIKE ?", "%"+name+"%")
	}
	if st := c.Query("service_type"); st != "" {
		offerQuery = offerQuery.Where("service_type = ?", st)
		orderQuery = orderQuery.Where("offers.service_type = ?", st)
	}
	if status := c.Query("status"); status != "" {
		orderQuery = orderQuery.Where("authenticated_orders.status = ?", status)
	}

	var offers []models.Offer
	if err := offerQuery.Order("created_at DESC").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load offers"},
		})
		return
	}

	var orders []models.Order
	if err := orderQuery.Order("authenticated_orders.created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load orders"},
		})
		return
	}

	// Group by workflow section so the back-office can render its boards
	sections := map[string][]models.Order{
		"consultation": {},
		"payments":     {},
		"scheduling":   {},
		"workshop":     {},
		"cancellation": {},
		"done":         {},
	}
	for _, o := range orders {
		switch o.Status {
		case models.StatusPendingInitialList:
			sections["consultation"] = append(sections["consultation"], o)
		case models.StatusPendingConsultationPayment:
			sections["payments"] = append(sections["payments"], o)
		case models.StatusPendingPartsUpload, models.StatusPendingSchedule, models.StatusSchedulePendingApproval:
			sections["scheduling"] = append(sections["scheduling"], o)
		case models.StatusBuilding, models.StatusReady:
			sections["workshop"] = append(sections["workshop"], o)
		case models.StatusCancellationPending:
			sections["cancellation"] = append(sections["cancellation"], o)
		default:
			sections["done"] = append(sections["done"], o)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"pending_offers": offers,
			"sections":       sections,
		},
	})
}

// UpdateStatusRequest represents the request body for moving an order
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// AdminUpdateOrderStatus handles PUT /api/v1/admin/orders/:id/status. Every
// move is checked against the transition table.
func AdminUpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
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

	if !statemachine.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": fmt.Sprintf("unknown order status %q", req.Status)},
		})
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

	// Admins may drive both their own moves and the payment-driven ones
	if err := statemachine.CanTransition(order.Status, req.Status, statemachine.ActorAdmin); err != nil {
		if sysErr := statemachine.CanTransition(order.Status, req.Status, statemachine.ActorSystem); sysErr != nil {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
			})
			return
		}
	}

	order.Status = req.Status
	if req.Status == models.StatusCancelled {
		now := time.Now()
		order.CancelledAt = &now
	}
	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to update order"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// AdminApproveOffer handles POST /api/v1/admin/offers/:id/approve. It
// converts a pending offer into an order. The :id is an offer ID; offers
// and orders number independently.
func AdminApproveOffer(c *gin.Context) {
	db := config.GetDB()

	var offer models.Offer
	if err := db.First(&offer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "OFFER_NOT_FOUND", "message": "Offer not found"},
		})
		return
	}

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		var userID *uint
		if err := tx.Where("email = ?", offer.Email).First(&profile).Error; err == nil {
			userID = &profile.ID
		}

		var txErr error
		order, txErr = approveOfferTx(tx, &offer, userID)
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

// UploadPartsRequest represents the request body for attaching a parts list
type UploadPartsRequest struct {
	Items   []models.PartItem `json:"items" binding:"required"`
	Initial bool              `json:"initial"`
}

// AdminUploadParts handles POST /api/v1/admin/orders/:id/parts. The initial
// shortlist moves the order to consultation payment; the full list moves it
// to scheduling.
func AdminUploadParts(c *gin.Context) {
	var req UploadPartsRequest
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

	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}

	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = uuid.NewString()
		}
	}

	target := models.StatusPendingSchedule
	if req.Initial {
		target = models.StatusPendingConsultationPayment
	}
	if err := statemachine.CanTransition(order.Status, target, statemachine.ActorAdmin); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
		return
	}

	if req.Initial {
		if err := partslist.ValidateInitialList(req.Items); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_PARTS_LIST", "message": err.Error()},
			})
			return
		}
	} else {
		if err := partslist.ValidateFullList(req.Items); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_PARTS_LIST", "message": err.Error()},
			})
			return
		}
		if err := partslist.WithinBudgets(req.Items, order.Offer.Budget, order.Offer.PeripheralsBudget); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "OVER_BUDGET", "message": err.Error()},
			})
			return
		}
	}

	if order.PartsList == nil {
		order.PartsList = &models.PartsList{}
	}
	if req.Initial {
		order.PartsList.InitialList = req.Items
	} else {
		order.PartsList.FullList = req.Items
	}
	order.PartsList.UploadDate = time.Now()
	order.Status = target

	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to save parts list"},
		})
		return
	}

	var missing []string
	if !req.Initial && order.Offer.Preferences != nil {
		missing = partslist.MissingPeripherals(req.Items, order.Offer.Preferences.ExistingHardware)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":               order,
			"missing_peripherals": missing,
		},
	})
}

// VerifyPaymentRequest represents the request body for recording a payment
// the admin has confirmed out of band
type VerifyPaymentRequest struct {
	Method    string  `json:"method" binding:"required"`
	Reference *string `json:"reference,omitempty"`
}

// AdminVerifyPayment handles POST /api/v1/admin/orders/:id/payments/verify
func AdminVerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
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

	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}

	reference := req.Reference
	if req.Method == models.PaymentMethodCash || req.Method == models.PaymentMethodLater {
		ref := fmt.Sprintf("CASH-%d", time.Now().Unix())
		reference = &ref
	}

	var amount int
	switch {
	case order.Status == models.StatusPendingConsultationPayment:
		amount = pricing.ConsultationPayment(order.Offer.ServiceCost)
		order.Status = models.StatusPendingPartsUpload
	case order.PaidAmount < order.Offer.ServiceCost:
		amount = order.Offer.ServiceCost - order.PaidAmount
	default:
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "ALREADY_PAID", "message": "This order is fully paid"},
		})
		return
	}

	order.PaidAmount += amount
	order.PaymentMethod = &req.Method
	order.TransactionID = reference

	// Cash collected at the home build wraps up the order
	if req.Method == models.PaymentMethodLater && order.Status == models.StatusReady &&
		order.Offer.DeliveryType == models.DeliveryBuildAtHome {
		order.Status = models.StatusDelivered
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.Payment{
			OrderID:       order.ID,
			Amount:        amount,
			Method:        req.Method,
			TransactionID: reference,
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
}

// ScheduleDecisionRequest represents the request body for ruling on a
// proposed build slot
type ScheduleDecisionRequest struct {
	Approved bool `json:"approved"`
}

// AdminScheduleDecision handles POST /api/v1/admin/orders/:id/schedule/decision
func AdminScheduleDecision(c *gin.Context) {
	var req ScheduleDecisionRequest
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

	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}

	target := models.StatusBuilding
	if !req.Approved {
		target = models.StatusPendingSchedule
	}

	if err := statemachine.CanTransition(order.Status, target, statemachine.ActorAdmin); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
		return
	}

	order.Status = target
	if !req.Approved {
		order.BuildDate = nil
		order.ProposedBy = ""
	}

	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to update order"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// CancellationDecisionRequest represents the request body for ruling on a
// cancellation request
type CancellationDecisionRequest struct {
	Allow bool `json:"allow"`
}

// AdminCancellationDecision handles POST /api/v1/admin/orders/:id/cancellation
func AdminCancellationDecision(c *gin.Context) {
	var req CancellationDecisionRequest
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

	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}

	if order.Status != models.StatusCancellationPending {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": "No cancellation is pending on this order"},
		})
		return
	}

	if req.Allow {
		now := time.Now()
		order.Status = models.StatusCancelled
		order.CancelledAt = &now
		order.PreviousStatus = nil

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&order).Error; err != nil {
				return err
			}
			return tx.Model(&models.Offer{}).Where("id = ?", order.OfferID).
				Updates(map[string]interface{}{"status": models.OfferStatusCancelled, "cancelled_at": now}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to cancel order"},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
		return
	}

	if order.PreviousStatus == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": "Order has no recorded previous status"},
		})
		return
	}

	restored, err := statemachine.PreviousStatus(*order.PreviousStatus)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": err.Error()},
		})
		return
	}

	order.Status = restored
	order.PreviousStatus = nil
	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to update order"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// reminderSteps maps each waiting status to what the customer should do next
var reminderSteps = map[models.OrderStatus]string{
	models.StatusPendingConsultationPayment: "Your consultation payment is waiting",
	models.StatusPendingSchedule:            "Pick a build date in your portal",
	models.StatusReady:                      "Your build is ready for pickup",
}

// AdminSendReminder handles POST /api/v1/admin/orders/:id/reminder
func AdminSendReminder(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Offer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
		return
	}

	step, ok := reminderSteps[order.Status]
	if !ok {
		step = "Check your portal for the next step"
	}

	cfg := config.GetConfig()
	err := services.GetEmailService().Send(c.Request.Context(), cfg.EmailReminderTemplateID, map[string]string{
		"to_email":   order.Offer.Email,
		"to_name":    order.Offer.FullName,
		"status":     string(order.Status),
		"next_step":  step,
		"portal_url": cfg.SiteBaseURL + "/portal",
	})
	if err != nil {
		logger.L().Sugar().Errorw("reminder email failed", "order_id", order.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   gin.H{"code": "EMAIL_ERROR", "message": "Failed to send reminder"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"sent": true}})
}

// AdminListReferrals handles GET /api/v1/admin/referrals - unused codes
// first, newest first within each group
func AdminListReferrals(c *gin.Context) {
	var referrals []models.Referral
	if err := config.GetDB().Order("used ASC, created_at DESC").Find(&referrals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load referrals"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": referrals})
}

// DiscountRequest represents the request body for adjusting a referral discount
type DiscountRequest struct {
	DiscountPercentage *int `json:"discount_percentage" binding:"required"`
}

// AdminSetReferralDiscount handles PUT /api/v1/admin/referrals/:code/discount.
// Only unused codes whose customer has not yet submitted an offer can change.
func AdminSetReferralDiscount(c *gin.Context) {
	var req DiscountRequest
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

	pct := *req.DiscountPercentage
	if pct < 0 || pct > 50 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "Discount must be between 0 and 50 percent"},
		})
		return
	}

	db := config.GetDB()

	var referral models.Referral
	code := utils.NormalizeReferralCode(c.Param("code"))
	if err := db.Where("code = ?", code).First(&referral).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "REFERRAL_NOT_FOUND", "message": "Referral code not found"},
		})
		return
	}

	if referral.Used {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "REFERRAL_USED", "message": "Used codes cannot change"},
		})
		return
	}

	var offerCount int64
	db.Model(&models.Offer{}).Where("email = ?", utils.NormalizeEmail(referral.NewCustomerEmail)).Count(&offerCount)
	if offerCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "REFERRAL_IN_PLAY", "message": "This customer already has offers on file"},
		})
		return
	}

	referral.DiscountPercentage = pct
	if err := db.Save(&referral).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to update referral"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": referral})
}

// incomeBucket is one bar of the income chart
type incomeBucket struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

// AdminIncomeMetrics handles GET /api/v1/admin/metrics/income.
// period=daily buckets one day by hour, monthly one month by day, yearly
// one year by month. All sums come from recorded payments.
func AdminIncomeMetrics(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	ref := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	refDay, err := time.ParseInLocation("2006-01-02", ref, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "date must be YYYY-MM-DD"},
		})
		return
	}

	var from, to time.Time
	var bucketCount int
	switch period {
	case "daily":
		from = time.Date(refDay.Year(), refDay.Month(), refDay.Day(), 0, 0, 0, 0, time.Local)
		to = from.AddDate(0, 0, 1)
		bucketCount = 24
	case "monthly":
		from = time.Date(refDay.Year(), refDay.Month(), 1, 0, 0, 0, 0, time.Local)
		to = from.AddDate(0, 1, 0)
		bucketCount = to.AddDate(0, 0, -1).Day()
	case "yearly":
		from = time.Date(refDay.Year(), 1, 1, 0, 0, 0, 0, time.Local)
		to = from.AddDate(1, 0, 0)
		bucketCount = 12
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": "period must be daily, monthly or yearly"},
		})
		return
	}

	var payments []models.Payment
	if err := config.GetDB().Where("created_at >= ? AND created_at < ?", from, to).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Failed to load payments"},
		})
		return
	}

	buckets := make([]incomeBucket, bucketCount)
	for i := range buckets {
		switch period {
		case "daily":
			buckets[i].Label = fmt.Sprintf("%02d:00", i)
		case "monthly":
			buckets[i].Label = fmt.Sprintf("%02d", i+1)
		case "yearly":
			buckets[i].Label = time.Month(i + 1).String()
		}
	}

	total := 0
	for _, p := range payments {
		t := p.CreatedAt.In(time.Local)
		var idx int
		switch period {
		case "daily":
			idx = t.Hour()
		case "monthly":
			idx = t.Day() - 1
		case "yearly":
			idx = int(t.Month()) - 1
		}
		if idx >= 0 && idx < bucketCount {
			buckets[idx].Total += p.Amount
			total += p.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"period":  period,
			"from":    from.Format("2006-01-02"),
			"buckets": buckets,
			"total":   total,
		},
	})
}

// AdminLoginAlert handles POST /api/v1/admin/alerts/admin-login - notify
// the owner that an admin account signed in
func AdminLoginAlert(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	cfg := config.GetConfig()
	err := services.GetEmailService().Send(c.Request.Context(), cfg.EmailAdminAlertTemplate, map[string]string{
		"admin_name":  profile.FullName,
		"admin_email": profile.Email,
		"signed_in":   time.Now().Format(time.RFC1123),
		"client_ip":   c.ClientIP(),
	})
	if err != nil {
		logger.L().Sugar().Errorw("admin login alert failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   gin.H{"code": "EMAIL_ERROR", "message": "Failed to send alert"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"sent": true}})
}
