package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	GinMode string

	LogLevel  string
	LogFormat string

	DBDSN          string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTSecret string

	EsewaProductCode string
	EsewaSecretKey   string
	EsewaBaseURL     string
	EsewaSuccessURL  string
	EsewaFailureURL  string

	UploadDir     string
	PublicBaseURL string
	FrontendURL   string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	CORSAllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using process environment")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DBDSN:          os.Getenv("DB_DSN"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret: os.Getenv("JWT_SECRET"),

		// sandbox values from the eSewa developer docs
		EsewaProductCode: getEnv("ESEWA_PRODUCT_CODE", "EPAYTEST"),
		EsewaSecretKey:   getEnv("ESEWA_SECRET_KEY", "8gBm/:&EnhH.1/q"),
		EsewaBaseURL:     getEnv("ESEWA_BASE_URL", "https://rc-epay.esewa.com.np"),
		EsewaSuccessURL:  getEnv("ESEWA_SUCCESS_URL", "http://localhost:3000/payment/success"),
		EsewaFailureURL:  getEnv("ESEWA_FAILURE_URL", "http://localhost:3000/payment/failure"),

		UploadDir:     getEnv("UPLOAD_DIR", "public/uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StatsCacheTTL: getEnvDuration("STATS_CACHE_TTL", 30*time.Second),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is not set")
	}
	// timestamps are scanned into time.Time
	if !strings.Contains(c.DBDSN, "parseTime=true") {
		return fmt.Errorf("DB_DSN must include parseTime=true")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.EsewaProductCode == "" || c.EsewaSecretKey == "" {
		return fmt.Errorf("ESEWA_PRODUCT_CODE and ESEWA_SECRET_KEY must be set")
	}
	return nil
}

// InitDB opens the MySQL pool. The handle is passed explicitly to every
// component; nothing keeps it in a package variable.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
