package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/services"
	"github.com/manivpc/manivpc-api/utils"
)

type AdminControllerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	email  *services.MockEmailService
	router *gin.Engine
	admin  *models.Profile
}

func (s *AdminControllerTestSuite) SetupTest() {
	s.db, s.email, _ = setupTestEnv(s.T())
	s.admin = createTestProfile(s.T(), s.db, "auth0|boss", "Maniv Owner", "owner@manivpc.com", models.RoleAdmin)

	s.router = gin.New()
	admin := s.router.Group("/admin", mockAuth("auth0|boss"))
	{
		admin.GET("/orders", AdminListOrders)
		admin.POST("/offers/:id/approve", AdminApproveOffer)
		admin.PUT("/orders/:id/status", AdminUpdateOrderStatus)
		admin.POST("/orders/:id/parts", AdminUploadParts)
		admin.POST("/orders/:id/payments/verify", AdminVerifyPayment)
		admin.POST("/orders/:id/schedule/decision", AdminScheduleDecision)
		admin.POST("/orders/:id/cancellation", AdminCancellationDecision)
		admin.POST("/orders/:id/reminder", AdminSendReminder)
		admin.GET("/referrals", AdminListReferrals)
		admin.PUT("/referrals/:code/discount", AdminSetReferralDiscount)
		admin.GET("/metrics/income", AdminIncomeMetrics)
		admin.POST("/alerts/admin-login", AdminLoginAlert)
	}
}

func (s *AdminControllerTestSuite) fullPartsList() []models.PartItem {
	return []models.PartItem{
		{Name: "RTX 4070", Price: 2400, Type: "gpu"},
		{Name: "Ryzen 7 7700X", Price: 1300, Type: "Processor"},
		{Name: "B650 Tomahawk", Price: 800, Type: "motherboard"},
		{Name: "32GB DDR5", Price: 500, Type: "RAM"},
		{Name: "RM850e", Price: 450, Type: "Power Supply"},
		{Name: "2TB NVMe", Price: 400, Type: "SSD"},
	}
}

func (s *AdminControllerTestSuite) TestListOrdersSections() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	createTestOrder(s.T(), s.db, offer, nil, models.StatusBuilding)
	pending := createTestOffer(s.T(), s.db, "noa@example.com", 500, models.ServiceConsultationOnly)
	_ = pending

	w, resp := doJSON(s.T(), s.router, http.MethodGet, "/admin/orders", nil)
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Len(data["pending_offers"], 2)
	sections := data["sections"].(map[string]interface{})
	s.Len(sections["workshop"], 1)
	s.Len(sections["consultation"], 0)
}

func (s *AdminControllerTestSuite) TestUpdateOrderStatus() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusBuilding)
	path := fmt.Sprintf("/admin/orders/%d/status", order.ID)

	w, resp := doJSON(s.T(), s.router, http.MethodPut, path, map[string]interface{}{"status": "ready"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ready", resp["data"].(map[string]interface{})["status"])

	// skipping back to building is not a modelled move
	w, _ = doJSON(s.T(), s.router, http.MethodPut, path, map[string]interface{}{"status": "pending_schedule"})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = doJSON(s.T(), s.router, http.MethodPut, path, map[string]interface{}{"status": "teleported"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AdminControllerTestSuite) TestApprovePendingOfferCreatesOrder() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/offers/%d/approve", offer.ID), nil)
	s.Equal(http.StatusCreated, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal("pending_initial_list", data["status"])

	var stored models.Offer
	s.NoError(s.db.First(&stored, offer.ID).Error)
	s.Equal(models.OfferStatusConfirmed, stored.Status)
}

func (s *AdminControllerTestSuite) TestApproveOfferWithCollidingOrderID() {
	// Offers and orders number independently, so an order can share the
	// numeric ID of a still-pending offer from someone else
	alice := createTestOffer(s.T(), s.db, "alice@example.com", 800, models.ServiceBuildOnly)
	bob := createTestOffer(s.T(), s.db, "bob@example.com", 900, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, bob, nil, models.StatusPendingPartsUpload)
	s.Equal(alice.ID, order.ID)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/offers/%d/approve", alice.ID), nil)
	s.Equal(http.StatusCreated, w.Code)
	s.Equal(float64(alice.ID), resp["data"].(map[string]interface{})["offer_id"])

	var stored models.Offer
	s.NoError(s.db.First(&stored, alice.ID).Error)
	s.Equal(models.OfferStatusConfirmed, stored.Status)

	// the colliding order is untouched
	var unrelated models.Order
	s.NoError(s.db.First(&unrelated, order.ID).Error)
	s.Equal(models.StatusPendingPartsUpload, unrelated.Status)
}

func (s *AdminControllerTestSuite) TestUpdateStatusUnknownOrder() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)

	// the status route only addresses orders; an offer ID without an order
	// behind it is a 404, never a fallthrough
	w, resp := doJSON(s.T(), s.router, http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", offer.ID),
		map[string]interface{}{"status": "approved"})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("ORDER_NOT_FOUND", resp["error"].(map[string]interface{})["code"])
}

func (s *AdminControllerTestSuite) TestUploadInitialParts() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingInitialList)
	path := fmt.Sprintf("/admin/orders/%d/parts", order.ID)

	// the shortlist is exactly three options
	w, _ := doJSON(s.T(), s.router, http.MethodPost, path, map[string]interface{}{
		"initial": true,
		"items": []models.PartItem{
			{Name: "Budget build", Price: 6500},
			{Name: "Balanced build", Price: 7800},
		},
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, path, map[string]interface{}{
		"initial": true,
		"items": []models.PartItem{
			{Name: "Budget build", Price: 6500},
			{Name: "Balanced build", Price: 7800},
			{Name: "Performance build", Price: 8200},
		},
	})
	s.Equal(http.StatusOK, w.Code)

	orderData := resp["data"].(map[string]interface{})["order"].(map[string]interface{})
	s.Equal("pending_consultation_payment", orderData["status"])

	var stored models.Order
	s.NoError(s.db.First(&stored, order.ID).Error)
	s.Len(stored.PartsList.InitialList, 3)
	s.NotEmpty(stored.PartsList.InitialList[0].ID)
}

func (s *AdminControllerTestSuite) TestUploadFullParts() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingPartsUpload)
	path := fmt.Sprintf("/admin/orders/%d/parts", order.ID)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, path, map[string]interface{}{
		"items": s.fullPartsList(),
	})
	s.Equal(http.StatusOK, w.Code)

	orderData := resp["data"].(map[string]interface{})["order"].(map[string]interface{})
	s.Equal("pending_schedule", orderData["status"])
}

func (s *AdminControllerTestSuite) TestUploadFullPartsMissingCategory() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingPartsUpload)

	items := s.fullPartsList()[:5] // no storage
	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/parts", order.ID),
		map[string]interface{}{"items": items})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(resp["error"].(map[string]interface{})["message"], "storage")
}

func (s *AdminControllerTestSuite) TestUploadFullPartsOverBudget() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingPartsUpload)

	items := s.fullPartsList()
	items[0].Price = 9000 // blows past 8000 * 1.03
	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/parts", order.ID),
		map[string]interface{}{"items": items})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("OVER_BUDGET", resp["error"].(map[string]interface{})["code"])
}

func (s *AdminControllerTestSuite) TestUploadFullPartsReportsMissingPeripherals() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	offer.Preferences = &models.PreferencesData{
		ExistingHardware: []models.PeripheralItem{{ID: "keyboard"}, {ID: "mouse"}},
	}
	s.NoError(s.db.Save(offer).Error)
	s.NoError(s.db.Model(offer).Update("peripherals_budget", 500).Error)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingPartsUpload)

	items := append(s.fullPartsList(),
		models.PartItem{Name: "K70", Price: 300, Type: "peripheral", PeripheralType: "keyboard"})
	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/parts", order.ID),
		map[string]interface{}{"items": items})
	s.Equal(http.StatusOK, w.Code)

	missing := resp["data"].(map[string]interface{})["missing_peripherals"].([]interface{})
	s.Equal([]interface{}{"mouse"}, missing)
}

func (s *AdminControllerTestSuite) TestVerifyConsultationPayment() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingConsultationPayment)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/payments/verify", order.ID),
		map[string]interface{}{"method": "paybox", "reference": "PB-42"})
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal(float64(160), data["paid_amount"])
	s.Equal("pending_parts_upload", data["status"])

	var payment models.Payment
	s.NoError(s.db.Where("order_id = ?", order.ID).First(&payment).Error)
	s.Equal(160, payment.Amount)
}

func (s *AdminControllerTestSuite) TestVerifyCashAtHomeBuildDelivers() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	s.NoError(s.db.Model(offer).Update("delivery_type", models.DeliveryBuildAtHome).Error)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusReady)
	s.NoError(s.db.Model(order).Update("paid_amount", 160).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/payments/verify", order.ID),
		map[string]interface{}{"method": "later"})
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal("delivered", data["status"])
	s.Equal(float64(800), data["paid_amount"])
	s.Contains(data["transaction_id"], "CASH-")
}

func (s *AdminControllerTestSuite) TestVerifyPaymentFullyPaidConflicts() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusReady)
	s.NoError(s.db.Model(order).Update("paid_amount", 800).Error)

	w, _ := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/payments/verify", order.ID),
		map[string]interface{}{"method": "bit"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *AdminControllerTestSuite) TestScheduleDecision() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	buildDate := time.Now().AddDate(0, 0, 5)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusSchedulePendingApproval)
	s.NoError(s.db.Model(order).Updates(map[string]interface{}{"build_date": buildDate, "proposed_by": "customer"}).Error)

	// rejection clears the slot and sends the customer back to pick another
	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/schedule/decision", order.ID),
		map[string]interface{}{"approved": false})
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal("pending_schedule", data["status"])
	s.Nil(data["build_date"])

	s.NoError(s.db.Model(order).Updates(map[string]interface{}{
		"status": models.StatusSchedulePendingApproval, "build_date": buildDate,
	}).Error)

	w, resp = doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/schedule/decision", order.ID),
		map[string]interface{}{"approved": true})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("building", resp["data"].(map[string]interface{})["status"])
}

func (s *AdminControllerTestSuite) TestCancellationAllowed() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	s.NoError(s.db.Model(offer).Update("status", models.OfferStatusConfirmed).Error)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusCancellationPending)
	prev := models.StatusPendingSchedule
	s.NoError(s.db.Model(order).Update("previous_status", prev).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancellation", order.ID),
		map[string]interface{}{"allow": true})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("cancelled", resp["data"].(map[string]interface{})["status"])

	var storedOffer models.Offer
	s.NoError(s.db.First(&storedOffer, offer.ID).Error)
	s.Equal(models.OfferStatusCancelled, storedOffer.Status)
	s.NotNil(storedOffer.CancelledAt)
}

func (s *AdminControllerTestSuite) TestCancellationDeniedRestoresStatus() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusCancellationPending)
	prev := models.StatusPendingSchedule
	s.NoError(s.db.Model(order).Update("previous_status", prev).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancellation", order.ID),
		map[string]interface{}{"allow": false})
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal("pending_schedule", data["status"])
	s.Nil(data["previous_status"])
}

func (s *AdminControllerTestSuite) TestSendReminder() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceConsultationAndBuild)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusPendingConsultationPayment)

	w, _ := doJSON(s.T(), s.router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/reminder", order.ID), nil)
	s.Equal(http.StatusOK, w.Code)

	sent := s.email.Sent()
	s.Len(sent, 1)
	s.Equal("reminder_template", sent[0].TemplateID)
	s.Equal("dana@example.com", sent[0].Params["to_email"])
	s.Contains(sent[0].Params["next_step"], "consultation payment")
}

func (s *AdminControllerTestSuite) TestListReferralsUnusedFirst() {
	now := time.Now()
	used := models.Referral{
		ReferrerID: s.admin.ID, Code: utils.GenerateReferralCode(),
		NewCustomerName: "Old Friend", NewCustomerEmail: "old@example.com",
		Used: true, CreatedAt: now,
	}
	fresh := models.Referral{
		ReferrerID: s.admin.ID, Code: utils.GenerateReferralCode(),
		NewCustomerName: "New Friend", NewCustomerEmail: "new@example.com",
		CreatedAt: now.Add(-time.Hour),
	}
	s.NoError(s.db.Create(&used).Error)
	s.NoError(s.db.Create(&fresh).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodGet, "/admin/referrals", nil)
	s.Equal(http.StatusOK, w.Code)

	list := resp["data"].([]interface{})
	s.Len(list, 2)
	s.Equal("New Friend", list[0].(map[string]interface{})["new_customer_name"])
}

func (s *AdminControllerTestSuite) TestSetReferralDiscount() {
	ref := models.Referral{
		ReferrerID: s.admin.ID, Code: "ABC123",
		NewCustomerName: "Noa Katz", NewCustomerEmail: "noa@example.com",
	}
	s.NoError(s.db.Create(&ref).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodPut, "/admin/referrals/abc123/discount",
		map[string]interface{}{"discount_percentage": 35})
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(35), resp["data"].(map[string]interface{})["discount_percentage"])

	w, _ = doJSON(s.T(), s.router, http.MethodPut, "/admin/referrals/ABC123/discount",
		map[string]interface{}{"discount_percentage": 80})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AdminControllerTestSuite) TestSetReferralDiscountGuards() {
	used := models.Referral{
		ReferrerID: s.admin.ID, Code: "USED01", Used: true,
		NewCustomerName: "Noa Katz", NewCustomerEmail: "noa@example.com",
	}
	s.NoError(s.db.Create(&used).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodPut, "/admin/referrals/USED01/discount",
		map[string]interface{}{"discount_percentage": 10})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("REFERRAL_USED", resp["error"].(map[string]interface{})["code"])

	inPlay := models.Referral{
		ReferrerID: s.admin.ID, Code: "PLAY01",
		NewCustomerName: "Dana Levi", NewCustomerEmail: "dana@example.com",
	}
	s.NoError(s.db.Create(&inPlay).Error)
	createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)

	w, resp = doJSON(s.T(), s.router, http.MethodPut, "/admin/referrals/PLAY01/discount",
		map[string]interface{}{"discount_percentage": 10})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("REFERRAL_IN_PLAY", resp["error"].(map[string]interface{})["code"])
}

func (s *AdminControllerTestSuite) TestIncomeMetricsDaily() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusDelivered)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	s.NoError(s.db.Create(&models.Payment{OrderID: order.ID, Amount: 160, Method: "bit", CreatedAt: day.Add(10 * time.Hour)}).Error)
	s.NoError(s.db.Create(&models.Payment{OrderID: order.ID, Amount: 640, Method: "bit", CreatedAt: day.Add(14 * time.Hour)}).Error)
	// outside the window
	s.NoError(s.db.Create(&models.Payment{OrderID: order.ID, Amount: 999, Method: "bit", CreatedAt: day.AddDate(0, 0, 1)}).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodGet, "/admin/metrics/income?period=daily&date=2026-03-10", nil)
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	s.Equal(float64(800), data["total"])

	buckets := data["buckets"].([]interface{})
	s.Len(buckets, 24)
	s.Equal(float64(160), buckets[10].(map[string]interface{})["total"])
	s.Equal(float64(640), buckets[14].(map[string]interface{})["total"])
}

func (s *AdminControllerTestSuite) TestIncomeMetricsYearly() {
	offer := createTestOffer(s.T(), s.db, "dana@example.com", 800, models.ServiceBuildOnly)
	order := createTestOrder(s.T(), s.db, offer, nil, models.StatusDelivered)

	march := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	july := time.Date(2026, 7, 2, 9, 0, 0, 0, time.Local)
	s.NoError(s.db.Create(&models.Payment{OrderID: order.ID, Amount: 500, Method: "bit", CreatedAt: march}).Error)
	s.NoError(s.db.Create(&models.Payment{OrderID: order.ID, Amount: 300, Method: "cash", CreatedAt: july}).Error)

	w, resp := doJSON(s.T(), s.router, http.MethodGet, "/admin/metrics/income?period=yearly&date=2026-01-01", nil)
	s.Equal(http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	buckets := data["buckets"].([]interface{})
	s.Len(buckets, 12)
	s.Equal(float64(500), buckets[2].(map[string]interface{})["total"])
	s.Equal(float64(300), buckets[6].(map[string]interface{})["total"])
	s.Equal(float64(800), data["total"])
}

func (s *AdminControllerTestSuite) TestIncomeMetricsBadPeriod() {
	w, _ := doJSON(s.T(), s.router, http.MethodGet, "/admin/metrics/income?period=weekly", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AdminControllerTestSuite) TestAdminLoginAlert() {
	w, _ := doJSON(s.T(), s.router, http.MethodPost, "/admin/alerts/admin-login", nil)
	s.Equal(http.StatusOK, w.Code)

	sent := s.email.Sent()
	s.Len(sent, 1)
	s.Equal("admin_alert_template", sent[0].TemplateID)
	s.Equal("owner@manivpc.com", sent[0].Params["admin_email"])
}

func TestAdminControllerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminControllerTestSuite))
}
