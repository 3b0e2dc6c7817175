package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"istishara/handlers"
	"istishara/middleware"
	"istishara/utils"
)

// RegisterCatalogueRoutes registers the public catalogue endpoints:
// offerings, their open slots, and their public feedback.
func RegisterCatalogueRoutes(r *gin.Engine) {
	api := r.Group("/api/offerings")
	{
		api.GET("", handlers.ListOfferingsHandler)
		api.GET("/:id", handlers.GetOfferingHandler)
		api.GET("/:id/slots", handlers.ListAvailableSlotsHandler)
		api.GET("/:id/feedback", handlers.ListOfferingFeedbackHandler)
	}
}

// RegisterBookingRoutes registers the requester-facing booking endpoints.
func RegisterBookingRoutes(r *gin.Engine) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthUserMiddleware())
		api.POST("", handlers.CreateBookingHandler)
		api.GET("", handlers.ListMyBookingsHandler)
		api.GET("/:id", handlers.GetBookingHandler)
		api.POST("/:id/cancel", handlers.CancelBookingHandler)
		api.POST("/:id/feedback", handlers.CreateFeedbackHandler)
	}
}

// RegisterAdminRoutes registers the operations surface: catalogue and
// schedule management, booking lifecycle control, moderation, audit.
func RegisterAdminRoutes(r *gin.Engine) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthAdminMiddleware())

		api.POST("/offerings", handlers.CreateOfferingHandler)
		api.PUT("/offerings/:id", handlers.UpdateOfferingHandler)
		api.PATCH("/offerings/:id/active", handlers.SetOfferingActiveHandler)
		api.GET("/offerings/:id/slots", handlers.ListOfferingSlotsHandler)

		api.POST("/slots", handlers.CreateSlotHandler)
		api.DELETE("/slots/:id", handlers.DeleteSlotHandler)

		api.GET("/bookings", handlers.AdminListBookingsHandler)
		api.GET("/bookings/:id", handlers.AdminGetBookingHandler)
		api.POST("/bookings/:id/transition", handlers.AdminTransitionBookingHandler)
		api.POST("/bookings/:id/reconcile-payment", handlers.AdminReconcilePaymentHandler)
		api.POST("/bookings/sweep-payments", handlers.AdminSweepPaymentsHandler)

		api.PATCH("/feedback/:id/visibility", handlers.SetFeedbackVisibilityHandler)
		api.DELETE("/feedback/:id", handlers.DeleteFeedbackHandler)

		api.GET("/audit/:entityType/:entityId", handlers.AdminAuditTrailHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCatalogueRoutes(r)
	RegisterBookingRoutes(r)
	RegisterAdminRoutes(r)
}
