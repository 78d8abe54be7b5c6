package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/digital-menu/config"
	"github.com/yeremiapane/digital-menu/database"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/router"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	if err := utils.ConfigureLoggers(cfg.LogLevel, cfg.LogFormat); err != nil {
		utils.ErrorLogger.Fatalf("Invalid logging configuration: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	esewa := services.NewEsewaService(services.EsewaConfig{
		ProductCode: cfg.EsewaProductCode,
		SecretKey:   cfg.EsewaSecretKey,
		BaseURL:     cfg.EsewaBaseURL,
		SuccessURL:  cfg.EsewaSuccessURL,
		FailureURL:  cfg.EsewaFailureURL,
	})
	if err := esewa.ValidateConfig(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid eSewa configuration: %v", err)
	}

	r := router.SetupRouter(router.Dependencies{
		DB:             db,
		JWT:            utils.NewJWTManager(cfg.JWTSecret),
		Verifier:       esewa,
		Blobs:          services.NewLocalBlobStore(cfg.UploadDir, cfg.PublicBaseURL),
		QRGenerator:    services.DefaultQRGenerator{},
		Cache:          newStatsCache(cfg),
		Hub:            hub.New(),
		UploadDir:      cfg.UploadDir,
		FrontendURL:    cfg.FrontendURL,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

// newStatsCache uses Redis when REDIS_ADDR is set. An unreachable Redis is
// logged and the dashboard runs uncached.
func newStatsCache(cfg *config.Config) services.Cache {
	if cfg.RedisAddr == "" {
		return services.NoopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Printf("Redis at %s unavailable, dashboard cache disabled: %v", cfg.RedisAddr, err)
		client.Close()
		return services.NoopCache{}
	}

	utils.InfoLogger.Printf("Dashboard cache enabled (redis %s, ttl %s)", cfg.RedisAddr, cfg.StatsCacheTTL)
	return services.NewRedisCache(client, cfg.StatsCacheTTL)
}
