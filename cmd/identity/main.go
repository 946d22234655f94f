package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/magcentre/object-identity/internal/bucket"
	"github.com/magcentre/object-identity/internal/config"
	"github.com/magcentre/object-identity/internal/database"
	"github.com/magcentre/object-identity/internal/handlers"
	"github.com/magcentre/object-identity/internal/hash"
	"github.com/magcentre/object-identity/internal/middleware"
	"github.com/magcentre/object-identity/internal/repository"
	"github.com/magcentre/object-identity/internal/routes"
	"github.com/magcentre/object-identity/internal/services"
	"github.com/magcentre/object-identity/internal/token"
	"github.com/magcentre/object-identity/internal/twilio"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.App.Env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()
	sugar.Infof("Starting object-identity in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	sms := twilio.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
	if !sms.IsConfigured() {
		sugar.Warn("Twilio client not fully configured. SMS dispatch will be skipped.")
	}
	buckets := bucket.NewClient(
		cfg.Bucket.BaseURL,
		time.Duration(cfg.Bucket.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Bucket.RetryMaxElapsedSeconds)*time.Second,
	)

	hasher := hash.New(cfg.Security.PasswordHashCost)
	tokenMgr := token.NewManager(cfg.App.JWT.Secret, cfg.App.JWT.AccessTTLMinutes, cfg.App.JWT.RefreshTTLDays)

	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.UserCollection)
	tokenRepo := repository.NewMongoTokenRepo(db, cfg.Mongo.TokenCollection)

	authSvc := services.NewAuthService(userRepo, tokenRepo, hasher, tokenMgr, sms, buckets, cfg.Security.OtpTTLMinutes, logger)
	userSvc := services.NewUserService(userRepo, hasher, logger)
	h := handlers.NewHandler(authSvc, userSvc, sugar)

	otpLimiter := middleware.NewRateLimiter(rdb, "otp_rl", cfg.Security.OtpRateLimitPerMobilePerHour, time.Hour)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(sugar))

	routes.Setup(app, h, tokenMgr, otpLimiter)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutCtx); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(shutCtx); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		sugar.Errorf("Redis client close error: %v", err)
	}
	sugar.Info("Graceful shutdown complete.")
}
