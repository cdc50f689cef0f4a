// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ShiLuis/KapePOS/internal/repository"
	"github.com/joho/godotenv"
)

const (
	CatalogRemote             = "remote"
	CatalogStatic             = "static"
	CatalogRemoteWithFallback = "remote-with-fallback"

	OrderStoreMongo    = "mongo"
	OrderStorePostgres = "postgres"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	RateLimitRPS       float64
	RateLimitBurst     int

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	// KafkaBrokers is empty when events are disabled.
	KafkaBrokers  []string
	ConsumerGroup string

	OrderStore string
	Postgres   repository.Credentials

	TaxRate     float64
	Location    *time.Location
	CatalogMode string
	LogLevel    string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:        getEnv("MONGO_DB_NAME", "kapepos"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "kapepos-stock"),
		OrderStore:         strings.ToLower(getEnv("ORDER_STORE", OrderStoreMongo)),
		CatalogMode:        strings.ToLower(getEnv("CATALOG_MODE", CatalogRemoteWithFallback)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Postgres: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			User:              getEnv("DB_USER", "kapepos"),
			Password:          getEnv("DB_PASSWORD", "kapepos"),
			DBName:            getEnv("DB_NAME", "kapepos"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		},
	}

	var err error
	if cfg.Postgres.Port, err = strconv.Atoi(getEnv("DB_PORT", "5432")); err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "50"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "100")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.TaxRate, err = strconv.ParseFloat(getEnv("TAX_RATE", "0.12"), 64); err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1), got %v", cfg.TaxRate)
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Asia/Manila")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	switch cfg.CatalogMode {
	case CatalogRemote, CatalogStatic, CatalogRemoteWithFallback:
	default:
		return nil, fmt.Errorf("CATALOG_MODE must be one of %s, %s, %s; got %q",
			CatalogRemote, CatalogStatic, CatalogRemoteWithFallback, cfg.CatalogMode)
	}
	switch cfg.OrderStore {
	case OrderStoreMongo, OrderStorePostgres:
	default:
		return nil, fmt.Errorf("ORDER_STORE must be %s or %s; got %q", OrderStoreMongo, OrderStorePostgres, cfg.OrderStore)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
