package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rdioscaio/pane-a-tavola/cache"
	"github.com/rdioscaio/pane-a-tavola/config"
	"github.com/rdioscaio/pane-a-tavola/database"
	"github.com/rdioscaio/pane-a-tavola/handlers"
	"github.com/rdioscaio/pane-a-tavola/kafka"
	"github.com/rdioscaio/pane-a-tavola/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if cfg.AdminPassword == "" || cfg.AdminSessionToken == "" {
		logger.Warn("ADMIN_PASSWORD or ADMIN_SESSION_TOKEN not set; admin endpoints will report misconfiguration")
	}

	// Initialize database
	db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := cache.InitRedis(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize Kafka consumer for storefront event ingest
	consumer, err := kafka.InitConsumer(logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	go func() {
		if err := kafka.StartConsumer(consumer, db, logger); err != nil {
			logger.Error("Kafka consumer error", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("pane-admin-api")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("pane-admin-api"))
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Public storefront endpoints
	loginHandler := handlers.NewLoginHandler(cfg, logger)
	router.POST("/api/admin/login", loginHandler.Login)
	router.OPTIONS("/api/admin/login", loginHandler.Preflight)

	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, producer, logger)
	router.POST("/api/checkout", checkoutHandler.Checkout)

	trackHandler := handlers.NewTrackHandler(db, logger)
	router.POST("/api/track", trackHandler.Track)

	// Admin endpoints behind the session cookie
	salesHandler := handlers.NewSalesHandler(db, redisClient, producer, cfg.OrderRowLimit, logger)
	ordersHandler := handlers.NewOrdersHandler(db, producer, cfg.OrderRowLimit, logger)

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg, logger))
	{
		admin.GET("/sales", salesHandler.ListSales)
		admin.POST("/sales", salesHandler.CreateSale)
		admin.GET("/orders", ordersHandler.ListOrders)
		admin.POST("/orders", ordersHandler.UpdateStatus)
		admin.GET("/orders/export", ordersHandler.ExportCSV)
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Pane a Tavola admin API started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
