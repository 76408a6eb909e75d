package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SetupEnvFile loads .env into the process environment. A missing file is not fatal.
func SetupEnvFile() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No %s file loaded: %v", envFile, err)
	}
}

// Config returns the environment value for key, or fallback when unset.
func Config(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

type AppConfig struct {
	Env     string
	Port    string
	BaseURL string
	LogDir  string
	ViewDir string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	MongoURI      string
	MongoDatabase string

	RedisAddr string
	RedisPass string
	LockTTL   time.Duration

	JWTSecret     string
	NotifySecret  string
	AdminUsername string
	AdminPassword string

	DraftTTL          time.Duration
	DraftSweepSpec    string
	StrictConsistency bool
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Env:     Config("APP_ENV", "development"),
		Port:    Config("PORT", "8069"),
		BaseURL: Config("BASE_URL", ""),
		LogDir:  Config("LOG_DIR", "../logs"),
		ViewDir: Config("VIEWS_DIR", "./views"),

		DBHost:     Config("DB_HOST", "localhost"),
		DBUser:     Config("DB_USER", ""),
		DBPassword: Config("DB_PASSWORD", ""),
		DBName:     Config("DB_NAME", ""),
		DBPort:     Config("DB_PORT", "5432"),
		DBSSLMode:  Config("DB_SSLMODE", "disable"),

		MongoURI:      Config("MONGODB_URI", ""),
		MongoDatabase: Config("MONGODB_DATABASE", "epayco"),

		RedisAddr: Config("REDIS_ADDR", ""),
		RedisPass: Config("REDIS_PASS", ""),

		JWTSecret:      Config("JWT_SECRET", ""),
		NotifySecret:   Config("NOTIFY_SECRET", ""),
		AdminUsername:  Config("ADMIN_USERNAME", ""),
		AdminPassword:  Config("ADMIN_PASSWORD", ""),
		DraftSweepSpec: Config("DRAFT_SWEEP_SPEC", "*/15 * * * *"),
	}

	var err error
	if cfg.LockTTL, err = time.ParseDuration(Config("LOCK_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	if cfg.DraftTTL, err = time.ParseDuration(Config("DRAFT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid DRAFT_TTL: %w", err)
	}
	if cfg.StrictConsistency, err = strconv.ParseBool(Config("STRICT_CONSISTENCY", "true")); err != nil {
		return nil, fmt.Errorf("invalid STRICT_CONSISTENCY: %w", err)
	}

	if cfg.BaseURL == "" || cfg.DBUser == "" || cfg.DBName == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables (BASE_URL, DB_USER, DB_NAME, JWT_SECRET)")
	}

	return cfg, nil
}

// DSN builds the postgres data source name.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
