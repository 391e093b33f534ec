package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Environment         string
	HTTPAddr            string
	StoreDriver         string
	DBDSN               string
	MigrationsAuto      bool
	CORSOrigins         string
	RequestTimeout      time.Duration
	StatusSweepInterval time.Duration
	Location            *time.Location
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Environment: get("ENV", "development"),
		HTTPAddr:    get("HTTP_ADDR", ":8080"),
		StoreDriver: strings.ToLower(get("STORE_DRIVER", DriverPostgres)),
		DBDSN:       get("DB_DSN", ""),
		CORSOrigins: get("CORS_ORIGINS", "*"),
	}

	var err error
	if cfg.MigrationsAuto, err = strconv.ParseBool(get("MIGRATIONS_AUTO", "true")); err != nil {
		return nil, fmt.Errorf("MIGRATIONS_AUTO: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.StatusSweepInterval, err = time.ParseDuration(get("STATUS_SWEEP_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("STATUS_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(get("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	// Проверяем обязательные поля
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}

	if cfg.RequestTimeout < 0 || cfg.StatusSweepInterval < 0 {
		return nil, fmt.Errorf("durations must not be negative")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
