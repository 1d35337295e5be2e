package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhinoeg/rhino-backend/config"
	"github.com/rhinoeg/rhino-backend/internal/app/controller"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	"github.com/rhinoeg/rhino-backend/internal/db"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
	"github.com/rhinoeg/rhino-backend/internal/router"
	"github.com/rhinoeg/rhino-backend/internal/scheduler"
	"github.com/rhinoeg/rhino-backend/internal/storage"
	ws "github.com/rhinoeg/rhino-backend/internal/websocket"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/rhinoeg/rhino-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting RHINO.EG backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs logout. Without it tokens stay valid until they expire.
	var (
		revoker    service.TokenRevoker
		revocation middleware.RevocationChecker
	)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
		tokenStore := redis.NewTokenStore(redis.GetClient())
		revoker = tokenStore
		revocation = tokenStore
	}

	var uploader service.DesignUploader
	s3Storage, err := storage.NewS3Storage(ctx, &cfg.S3)
	if err != nil {
		logger.Warn("S3 unavailable, design uploads disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		uploader = s3Storage
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	cartRepo := repository.NewCartRepository(database)
	promoRepo := repository.NewPromoCodeRepository(database)
	designRepo := repository.NewDesignRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	wishlistRepo := repository.NewWishlistRepository(database)

	// Initialize services
	authService := service.NewAuthService(userRepo, revoker, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	productService := service.NewProductService(productRepo)
	reviewService := service.NewReviewService(database, reviewRepo, productRepo)
	cartService := service.NewCartService(database, cartRepo, productRepo, promoRepo, cfg.Cart.MaxRetries)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	designService := service.NewDesignService(designRepo, cartService, uploader)
	orderService := service.NewOrderService(database, orderRepo, cartRepo, promoRepo, hub, cfg.Cart.MaxRetries)
	exportService := service.NewOrderExportService(orderRepo)
	promoService := service.NewPromoCodeService(database, promoRepo, cartRepo)

	// Initialize controllers
	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewProductController(productService),
		controller.NewReviewController(reviewService),
		controller.NewCartController(cartService),
		controller.NewWishlistController(wishlistService),
		controller.NewDesignController(designService),
		controller.NewOrderController(orderService, exportService),
		controller.NewPromoCodeController(promoService),
		controller.NewWebSocketController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, revocation),
		cfg,
	)

	promoScheduler := scheduler.NewPromoExpiryScheduler(cfg.Promo.ExpirySweepSchedule, promoService)
	if err := promoScheduler.Start(); err != nil {
		logger.Fatal("Failed to start promo expiry scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	promoScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}
