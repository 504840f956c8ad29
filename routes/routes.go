package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/controllers"
	"github.com/manivpc/manivpc-api/middleware"
	"github.com/manivpc/manivpc-api/models"
)

// SetupRoutes registers every API route group on the router
func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	offerLimiter := middleware.NewRateLimiter(rate.Limit(0.2), 3)

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/offers", offerLimiter.Middleware(), controllers.CreateOffer)
		public.POST("/offers/preview", controllers.PreviewOffer)
		public.POST("/referrals/validate", controllers.ValidateReferral)

		public.GET("/locations/cities", controllers.ListCities)
		public.GET("/locations/streets", controllers.ListStreets)
		public.GET("/locations/geocode", controllers.GeocodeAddress)
	}

	// Customer portal routes
	portal := r.Group("/api/v1/portal")
	portal.Use(middleware.EnsureValidToken(cfg))
	{
		portal.POST("/profile", controllers.BootstrapProfile)
		portal.GET("/profile", controllers.GetProfile)
		portal.PUT("/profile/preferences", controllers.UpdatePreferences)

		portal.GET("/orders", controllers.ListMyOrders)
		portal.POST("/offers/:id/approve", controllers.ApproveOffer)
		portal.POST("/offers/:id/cancel", controllers.CancelPendingOffer)
		portal.POST("/orders/:id/cancel", controllers.RequestCancellation)
		portal.POST("/orders/:id/schedule", controllers.ProposeSchedule)
		portal.PUT("/orders/:id/payment-method", controllers.SetPaymentMethod)
		portal.PUT("/orders/:id/terms", controllers.AcceptTerms)
		portal.POST("/orders/:id/payments/confirm", controllers.ConfirmPayment)

		portal.GET("/referrals", controllers.ListMyReferrals)
		portal.POST("/referrals", controllers.CreateReferral)
	}

	// Back-office routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/orders", controllers.AdminListOrders)
		admin.POST("/offers/:id/approve", controllers.AdminApproveOffer)
		admin.PUT("/orders/:id/status", controllers.AdminUpdateOrderStatus)
		admin.POST("/orders/:id/parts", controllers.AdminUploadParts)
		admin.POST("/orders/:id/payments/verify", controllers.AdminVerifyPayment)
		admin.POST("/orders/:id/schedule/decision", controllers.AdminScheduleDecision)
		admin.POST("/orders/:id/cancellation", controllers.AdminCancellationDecision)
		admin.POST("/orders/:id/reminder", controllers.AdminSendReminder)

		admin.GET("/referrals", controllers.AdminListReferrals)
		admin.PUT("/referrals/:code/discount", controllers.AdminSetReferralDiscount)

		admin.GET("/metrics/income", controllers.AdminIncomeMetrics)
		admin.POST("/alerts/admin-login", controllers.AdminLoginAlert)
	}
}
