package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"

	"istishara/config"
	"istishara/cron"
	"istishara/database"
	auditRepoPkg "istishara/database/repository/audit"
	bookingRepoPkg "istishara/database/repository/booking"
	feedbackRepoPkg "istishara/database/repository/feedback"
	offeringRepoPkg "istishara/database/repository/offering"
	timeslotRepoPkg "istishara/database/repository/timeslot"
	userRepoPkg "istishara/database/repository/user"
	"istishara/handlers"
	"istishara/middleware"
	"istishara/routes"
	"istishara/services/audit"
	"istishara/services/booking"
	"istishara/services/feedback"
	"istishara/services/notification"
	"istishara/services/offering"
	"istishara/services/schedule"
	"istishara/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	timeslotRepo := timeslotRepoPkg.NewMongoTimeSlotRepo()
	offeringRepo := offeringRepoPkg.NewMongoOfferingRepo()
	feedbackRepo := feedbackRepoPkg.NewMongoFeedbackRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	if err := timeslotRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure timeslot indexes: %v", err)
	}

	// services.
	auditRecorder := audit.NewRecorder(auditRepo, logger)

	notificationService, err := notification.NewDefaultNotificationService(userRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	expiryScheduler := cron.NewExpiryScheduler()
	defer expiryScheduler.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:              bookingRepo,
		SlotRepo:          timeslotRepo,
		OfferingRepo:      offeringRepo,
		UserRepo:          userRepo,
		Gateway:           booking.NewStripeGateway(logger),
		Notifier:          notificationService,
		Audit:             auditRecorder,
		Expiry:            expiryScheduler,
		PaymentGrace:      time.Duration(config.AppConfig.PaymentGraceMinutes) * time.Minute,
		PaymentMaxRetries: config.AppConfig.PaymentMaxRetries,
	}

	handlers.BookingService = bookingService
	handlers.ScheduleService = &schedule.DefaultScheduleService{
		Repo:  timeslotRepo,
		Audit: auditRecorder,
	}
	handlers.OfferingService = &offering.DefaultOfferingService{
		Repo:  offeringRepo,
		Audit: auditRecorder,
	}
	handlers.FeedbackService = &feedback.DefaultFeedbackService{
		Repo:        feedbackRepo,
		BookingRepo: bookingRepo,
		Audit:       auditRecorder,
	}
	handlers.AuditRepo = auditRepo

	// Background payment-expiry worker.
	cron.InitExpiryWorker(bookingService)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
