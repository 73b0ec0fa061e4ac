package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-backend/internal/api/routes"
	"marketplace-backend/internal/cart"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/seed"
	"marketplace-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "marketplace-backend/docs" // This is needed for swag
)

//	@title			Marketplace Backend API
//	@version		1.0
//	@description	Multi-tenant marketplace API: catalog, AI-assisted product search, carts and checkout.

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file in development
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(cfg.DatabaseURL, nil)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}

	if err := bootstrap(ctx, db, cfg); err != nil {
		logrus.Fatal("Failed to seed bootstrap data: ", err)
	}

	carts, redisClient := setupCartStore(ctx, cfg)
	translator := service.NewTranslator(cfg.GeminiAPIURL, cfg.GeminiAPIKey)
	if _, ok := translator.(service.NoopTranslator); ok {
		logrus.Warn("GEMINI_API_KEY not set, natural-language search will use the lexical fallback")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := routes.SetupRoutes(db, cfg, carts, translator, redisClient)
	if err != nil {
		logrus.Fatal("Failed to set up routes: ", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

// bootstrap creates the administrator and, when SEED_FILE is set, the catalog it describes
func bootstrap(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	seeder := seed.NewSeeder(
		repository.NewOrganizationRepository(db),
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
	)

	if _, err := seeder.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	if cfg.SeedFile == "" {
		return nil
	}
	catalog, err := seed.LoadCatalog(cfg.SeedFile)
	if err != nil {
		return err
	}
	_, err = seeder.Apply(ctx, catalog)
	return err
}

// setupCartStore returns the Redis-backed store when REDIS_URL answers and the
// in-memory store otherwise. The client is nil unless Redis is in use.
func setupCartStore(ctx context.Context, cfg *config.Config) (cart.Store, *redis.Client) {
	client, err := cart.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Warn("Invalid REDIS_URL, using in-memory carts")
		return cart.NewMemoryStore(cfg.CartTTL()), nil
	}

	store := cart.NewStore(ctx, client, cfg.CartTTL())
	if _, ok := store.(*cart.RedisStore); ok {
		logrus.Info("Using Redis cart store")
		return store, client
	}

	if client != nil {
		logrus.Warn("Redis unreachable, using in-memory carts")
		_ = client.Close()
	}
	return store, nil
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
