package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/models"
	"github.com/manivpc/manivpc-api/services"
)

// setupTestEnv wires an in-memory database, test config and mock external
// services for handler tests
func setupTestEnv(t *testing.T) (*gorm.DB, *services.MockEmailService, *services.MockLocationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Offer{},
		&models.Order{},
		&models.Profile{},
		&models.Referral{},
		&models.Payment{},
	))
	config.SetDB(db)

	config.SetConfig(&config.Config{
		GoEnv:                   "test",
		EmailOfferTemplateID:    "offer_template",
		EmailReminderTemplateID: "reminder_template",
		EmailAdminAlertTemplate: "admin_alert_template",
		SiteBaseURL:             "https://example.test",
	})

	email := services.NewMockEmailService()
	email.SetAsMockForTesting()

	location := services.NewMockLocationService()
	location.SetAsMockForTesting()

	return db, email, location
}

// mockAuth simulates a validated JWT for the given user
func mockAuth(auth0ID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", "mock-token")
		c.Next()
	}
}

// doJSON performs a JSON request against the router and decodes the
// envelope
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func createTestProfile(t *testing.T, db *gorm.DB, auth0ID, name, email, role string) *models.Profile {
	t.Helper()
	profile := &models.Profile{Auth0ID: auth0ID, FullName: name, Email: email, Role: role}
	assert.NoError(t, db.Create(profile).Error)
	return profile
}

func createTestOffer(t *testing.T, db *gorm.DB, email string, cost int, serviceType models.ServiceType) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		FullName:    "Dana Levi",
		Email:       email,
		Phone:       "052-1234567",
		Budget:      8000,
		ServiceCost: cost,
		ServiceType: serviceType,
		Status:      models.OfferStatusPending,
	}
	assert.NoError(t, db.Create(offer).Error)
	return offer
}

func createTestOrder(t *testing.T, db *gorm.DB, offer *models.Offer, userID *uint, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{OfferID: offer.ID, UserID: userID, Status: status}
	assert.NoError(t, db.Create(order).Error)
	order.Offer = *offer
	return order
}
