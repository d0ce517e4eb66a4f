package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tesseract-integrations/tesseract-api/config"
	"github.com/tesseract-integrations/tesseract-api/internal/handlers"
	"github.com/tesseract-integrations/tesseract-api/internal/mailer"
	"github.com/tesseract-integrations/tesseract-api/internal/middleware"
	"github.com/tesseract-integrations/tesseract-api/internal/ratelimit"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/internal/wizard"
	"github.com/tesseract-integrations/tesseract-api/pkg/airtable"
	"github.com/tesseract-integrations/tesseract-api/pkg/httpclient"
	"github.com/tesseract-integrations/tesseract-api/pkg/jwt"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"github.com/tesseract-integrations/tesseract-api/pkg/profiling"
	"github.com/tesseract-integrations/tesseract-api/pkg/tracing"
	"github.com/tesseract-integrations/tesseract-api/pkg/webhook"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerAPIRoutes registers the public API routes
func registerAPIRoutes(
	router *gin.Engine,
	generalRateLimiter, contactRateLimiter, chatRateLimiter *middleware.RateLimiter,
	contactHandler *handlers.ContactHandler,
	bookingHandler *handlers.BookingHandler,
	chatHandler *handlers.ChatHandler,
) {
	v1 := router.Group("/api/v1")

	v1.POST("/contact", contactRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), contactHandler.SubmitContactForm)
	v1.POST("/chat", chatRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), chatHandler.RelayMessage)

	booking := v1.Group("/booking")
	booking.Use(generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024))
	booking.POST("/availability", bookingHandler.CheckAvailability)
	booking.POST("/create", bookingHandler.CreateBooking)
	booking.POST("/followup", bookingHandler.TriggerFollowup)
}

// registerWizardRoutes registers the server-side booking wizard session routes
func registerWizardRoutes(
	router *gin.Engine,
	generalRateLimiter *middleware.RateLimiter,
	wizardHandler *handlers.WizardHandler,
) {
	wiz := router.Group("/api/v1/booking/wizard")
	wiz.Use(generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024))
	wiz.POST("", wizardHandler.CreateSession)
	wiz.GET("/:id", wizardHandler.GetSession)
	wiz.POST("/:id/action", wizardHandler.ApplyAction)
}

// registerAuthRoutes registers the Google sign-in and session routes
func registerAuthRoutes(
	router *gin.Engine,
	authRateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
) {
	auth := router.Group("/api/v1/auth")
	auth.GET("/google/login", authRateLimiter.Middleware(), authHandler.SignIn)
	auth.GET("/google/callback", authRateLimiter.Middleware(), authHandler.Callback)
	auth.GET("/session", authHandler.Me)
	auth.POST("/logout", authHandler.SignOut)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Tesseract API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(profiling.Config{
		Enabled:               cfg.Profiling.Enabled,
		Endpoint:              cfg.Profiling.Endpoint,
		AppName:               cfg.Profiling.AppName,
		SampleTypes:           cfg.Profiling.SampleTypes,
		UploadIntervalSeconds: cfg.Profiling.UploadIntervalSeconds,
	}, cfg.Observability.ServiceName, cfg.Observability.ServiceVersion, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize the customer store client
	customerStore, err := airtable.NewClient(
		cfg.CustomerStore.APIKey,
		cfg.CustomerStore.BaseID,
		cfg.CustomerStore.TableName,
		cfg.CustomerStore.WorkOffline,
	)
	if err != nil {
		logger.Fatal("Failed to initialize customer store client", zap.Error(err))
	}

	// Initialize HTTP client and webhook forwarder for external calls
	httpClient := httpclient.NewStandardClient()
	forwarder := webhook.NewForwarder(httpClient)

	// Contact email queue: one drain goroutine at a time, FIFO order
	emailSender := mailer.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.ToAddress)
	emailQueue := mailer.NewQueue(emailSender)

	// Contact form fixed-window limiter (separate from the token-bucket
	// limiters applied per route below)
	contactWindow := ratelimit.NewFixedWindow(
		cfg.ContactLimit.MaxRequests,
		time.Duration(cfg.ContactLimit.WindowMinutes)*time.Minute,
	)

	// Initialize services
	bookingService := services.NewBookingService(forwarder, cfg.Webhooks)
	contactService := services.NewContactService(contactWindow, emailQueue)
	chatService := services.NewChatService(forwarder, cfg.Webhooks.ChatURL)
	tokenManager := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TTLHours)
	authService := services.NewAuthService(cfg.GoogleOAuth, customerStore, tokenManager)

	// Wizard session store, backed by the booking service as its gateway
	wizardTTL := time.Duration(cfg.Wizard.SessionTTLMinutes) * time.Minute
	wizardStore := wizard.NewStore(bookingService, wizardTTL)

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(contactService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	wizardHandler := handlers.NewWizardHandler(wizardStore)
	chatHandler := handlers.NewChatHandler(chatService)
	authHandler := handlers.NewAuthHandler(authService, cfg.Session, cfg.Server.BaseURL)
	healthHandler := handlers.NewHealthHandler(emailQueue.Depth)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	// The contact and chat endpoints are POST-only; everything else on
	// those paths is a 405, not a 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	// Different limits for different endpoint types
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	contactRateLimiter := middleware.NewRateLimiter(5, 10)    // 5 req/sec, burst of 10 (prevent spam)
	chatRateLimiter := middleware.NewRateLimiter(10, 20)      // 10 req/sec, burst of 20
	authRateLimiter := middleware.NewRateLimiter(1, 5)        // 1 req/sec, burst of 5 (login abuse prevention)

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// Public API routes
	registerAPIRoutes(router, generalRateLimiter, contactRateLimiter, chatRateLimiter,
		contactHandler, bookingHandler, chatHandler)

	// Wizard session and auth routes
	registerWizardRoutes(router, generalRateLimiter, wizardHandler)
	registerAuthRoutes(router, authRateLimiter, authHandler)

	// Create HTTP server
	// SECURITY: Bind to all interfaces for Docker Compose networking
	// Network isolation is enforced by Docker Compose (backend has no public ports)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let queued contact emails finish before exiting
	emailQueue.Wait()

	logger.Info("Server exited")
}
